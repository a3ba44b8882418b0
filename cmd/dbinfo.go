// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"empbridge/cli/internal/config"
	"empbridge/cli/internal/store"
)

// dbinfoCmd displays the active DSN with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the currently configured database connection string (DSN)
with the password masked, along with the statements the bridge will issue.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source, err := resolveDSN()
		if err != nil {
			if errors.Is(err, config.ErrNoDSN) {
				pterm.Println("⚠️  No database connection configured")
				pterm.Println("   Please run: empbridge connect")
				return nil
			}
			return err
		}

		switch source {
		case config.SourceEnv:
			pterm.Println("Using DSN from " + config.EnvDSN + " environment variable")
		case config.SourceURL:
			pterm.Println("Using DSN from " + config.EnvDatabaseURL + " environment variable")
		default:
			pterm.Println("Using DSN from OS keychain")
		}
		pterm.Println()

		conn, err := store.NewConnector(raw)
		if err != nil {
			pterm.Println("❌ " + err.Error())
			return err
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithTopPadding(1).
			WithBottomPadding(1).
			WithLeftPadding(1).
			WithRightPadding(1).
			Println(maskPassword(conn.DSN()))
		pterm.Println()

		stmts := store.StatementsFor(conn.DBType())
		_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
			{"Operation", "Statement"},
			{"fetchEmployees", stmts.SelectAll},
			{"addEmployee", stmts.Insert},
			{"updateEmployee", stmts.Update},
		}).Render()
		pterm.Println()
		pterm.Println("Dialect: " + string(conn.DBType()) + " (driver " + conn.DBType().DriverName() + ")")
		pterm.Println("To update this connection, run: empbridge connect")
		pterm.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}

// maskPassword replaces the password in a URL-form DSN with asterisks.
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskPasswordSimple(raw)
	}
	if u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return u.String()
}

// maskPasswordSimple performs string-based masking for DSNs that don't parse as URLs.
func maskPasswordSimple(raw string) string {
	atIndex := strings.LastIndex(raw, "@")
	if atIndex == -1 {
		return raw
	}
	protocolEnd := strings.Index(raw, "://")
	start := 0
	if protocolEnd != -1 {
		start = protocolEnd + 3
	}
	colonIndex := strings.Index(raw[start:atIndex], ":")
	if colonIndex == -1 {
		return raw
	}
	colonIndex += start
	return raw[:colonIndex+1] + "***" + raw[atIndex:]
}

