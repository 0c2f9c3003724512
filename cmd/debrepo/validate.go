package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mietzen/debrepo/pkg/config"
	"github.com/mietzen/debrepo/pkg/validation"
)

// newValidateCmd creates the validate subcommand
func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate packages.yml",
		Long:  `Check packages.yml for errors without touching the network or the output directory.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidate(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to packages.yml")

	return cmd
}

// runValidate validates the configuration file and prints every issue.
func runValidate(configPath string) error {
	result := validation.ValidateFile(configPath)

	for _, issue := range result.Issues {
		prefix := "WARNING"
		if issue.Severity == validation.SeverityError {
			prefix = "ERROR"
		}

		if issue.Field != "" {
			fmt.Printf("[%s] %s: %s (%s)\n", prefix, issue.File, issue.Message, issue.Field)
		} else {
			fmt.Printf("[%s] %s: %s\n", prefix, issue.File, issue.Message)
		}
	}

	if result.HasErrors() {
		return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount())
	}

	if len(result.Issues) == 0 {
		fmt.Println("Configuration is valid.")
	} else {
		fmt.Printf("\nValidation passed with %d warning(s).\n", result.WarningCount())
	}

	return nil
}
