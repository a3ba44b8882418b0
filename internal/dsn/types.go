// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses, validates and normalizes database connection strings for the
// stores the bridge can talk to. Normalized strings are what the drivers receive.
package dsn

import "fmt"

// DBType represents the type of database
type DBType string

const (
	DBTypeSQLServer  DBType = "sqlserver"
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeUnknown    DBType = "unknown"
)

// DriverName returns the database/sql driver registered for t.
func (t DBType) DriverName() string {
	switch t {
	case DBTypeSQLServer:
		return "sqlserver"
	case DBTypePostgreSQL:
		return "pgx"
	default:
		return ""
	}
}

// DSNInfo contains parsed information from a DSN string
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	Instance string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the original DSN string
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver is an interface for database-specific DSN resolution
type Resolver interface {
	// Parse parses a DSN string and returns DSN info
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info to a properly formatted connection string
	Normalize(info *DSNInfo) (string, error)

	// Validate checks if the DSN is valid for the database type
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
