package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mietzen/debrepo/pkg/builder"
	"github.com/mietzen/debrepo/pkg/config"
)

// newGenerateCmd creates the generate subcommand
func newGenerateCmd() *cobra.Command {
	var configPath, outputDir, token string
	var concurrency int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the APT repository from packages.yml",
		Long: `Resolve every configured GitHub release, download the matching .deb
assets, and write the repository tree (pool/ and dists/) into the
output directory. Re-running regenerates the tree; pool files that are
already current are not downloaded again.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate(configPath, outputDir, token, concurrency, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to packages.yml")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "public", "Output directory for the repository tree")
	cmd.Flags().StringVar(&token, "token", "", "GitHub API token (defaults to $GITHUB_TOKEN)")
	cmd.Flags().IntVar(&concurrency, "concurrency", builder.DefaultConcurrency, "Parallel asset downloads")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runGenerate runs the full assembly pipeline.
func runGenerate(configPath, outputDir, token string, concurrency int, verbose bool) error {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	b := builder.New(cfg, builder.Options{
		OutputDir:   outputDir,
		Token:       token,
		Concurrency: concurrency,
		Logger:      logger,
	})

	result, err := b.Run(cmdContext())
	if err != nil {
		return fmt.Errorf("failed to build repository: %w", err)
	}

	for _, warning := range result.Warnings {
		fmt.Printf("[WARNING] %s\n", warning)
	}

	fmt.Println("\nRepository summary:")
	fmt.Printf("  Packages:      %d indexed\n", result.Indexed)
	fmt.Printf("  Architectures: %v\n", result.Architectures)
	if result.Reused > 0 {
		fmt.Printf("  Reused:        %d pool files\n", result.Reused)
	}
	if result.Duplicates > 0 {
		fmt.Printf("  Duplicates:    %d skipped\n", result.Duplicates)
	}
	fmt.Printf("\nRepository written to: %s\n", outputDir)

	return nil
}
