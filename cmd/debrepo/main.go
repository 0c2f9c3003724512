// Package main provides the debrepo CLI tool for assembling a static
// APT repository from .deb assets published in GitHub releases.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set via -ldflags during build
var version = "dev"

func main() {
	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for debrepo
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "debrepo",
		Short: "Static APT repository generator",
		Long: `debrepo assembles a static Debian APT repository from .deb assets
published in GitHub releases, ready to serve from GitHub Pages or any
static file host.

It reads a packages.yml naming upstream repositories and release
versions, downloads the matching .deb assets into a pool, extracts
their control metadata, and writes the dists/ tree with per-
architecture Packages indices and a checksummed Release file.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newIndexCmd(),
		newValidateCmd(),
		newPackagesCmd(),
		newInitCmd(),
	)

	return rootCmd
}

// cmdContext returns a context cancelled on SIGINT/SIGTERM so an
// interrupted run cleans up its staging files.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
