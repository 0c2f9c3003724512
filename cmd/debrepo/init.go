package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mietzen/debrepo/pkg/config"
)

// newInitCmd creates the init subcommand
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a packages.yml",
		Long: `Write a commented starter packages.yml into the given directory
(default: the current directory). Fails if the file already exists.

Examples:
  debrepo init             # packages.yml in the current directory
  debrepo init ./my-repo   # packages.yml in ./my-repo`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

func runInit(_ *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path := filepath.Join(dir, config.DefaultFileName)
	if err := config.WriteScaffold(path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Edit the packages list, then run: debrepo generate")

	return nil
}
