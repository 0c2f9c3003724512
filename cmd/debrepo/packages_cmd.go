package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mietzen/debrepo/pkg/config"
)

// newPackagesCmd creates the packages subcommand
func newPackagesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List configured packages",
		Long:  `List the upstream repositories, versions and asset filters configured in packages.yml.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPackages(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to packages.yml")

	return cmd
}

// runPackages lists the configured packages.
func runPackages(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d packages:\n\n", len(cfg.Packages))

	for _, pkg := range cfg.Packages {
		fmt.Printf("  - %s @ %s", pkg.Repo, pkg.Version)
		if pkg.AssetRegex != "" {
			fmt.Printf(" (assets: %s)", pkg.AssetRegex)
		}
		fmt.Println()
	}

	return nil
}
