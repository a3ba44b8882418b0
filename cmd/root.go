// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for empbridge. The serve command
// hosts the employee method channel; the client commands invoke it remotely or
// against an in-process dispatcher. Connection management commands keep the
// database DSN in the OS keychain.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"empbridge/cli/internal/config"
	"empbridge/cli/internal/logging"
)

var (
	showVersion bool
	logLevel    string
	logFormat   string

	cfg    config.Config
	logger *pterm.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "empbridge",
	Short: "Employee bridge between a UI method channel and SQL Server",
	Long: `empbridge answers fetchEmployees, addEmployee and updateEmployee calls from a UI
process by running one SQL statement per call against the employees table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		c, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		if logFormat != "" {
			c.LogFormat = logFormat
		}
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
		cfg = c
		logger = logging.New(c.LogLevel, c.LogFormat, os.Stderr)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("empbridge %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}
