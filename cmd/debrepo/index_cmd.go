package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mietzen/debrepo/pkg/repo"
)

// newIndexCmd creates the index subcommand
func newIndexCmd() *cobra.Command {
	var exclude []string
	var includeDot bool

	cmd := &cobra.Command{
		Use:   "index [directory]",
		Short: "Generate index.html directory listings",
		Long: `Write an index.html listing into every directory of the repository
tree so static hosts without directory listings (such as GitHub Pages)
stay browsable. Run it after generate, before publishing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "public"
			if len(args) > 0 {
				dir = args[0]
			}
			return runIndex(dir, exclude, includeDot)
		},
	}

	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob pattern to leave out of the listings (repeatable)")
	cmd.Flags().BoolVar(&includeDot, "include-dot", false, "List entries starting with a dot")

	return cmd
}

// runIndex writes the listings for one tree.
func runIndex(dir string, exclude []string, includeDot bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot index %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot index %s: not a directory", dir)
	}

	err = repo.WriteListings(dir, repo.ListingOptions{
		Exclude:    exclude,
		IncludeDot: includeDot,
	})
	if err != nil {
		return fmt.Errorf("failed to write listings: %w", err)
	}

	fmt.Printf("Directory listings written under: %s\n", dir)
	return nil
}
