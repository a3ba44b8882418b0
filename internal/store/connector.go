// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"database/sql"

	"empbridge/cli/internal/dsn"

	// database/sql drivers for the supported dialects.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
)

// Connector opens a fresh database handle for a single operation.
// The caller owns the handle and must close it.
type Connector interface {
	Connect(ctx context.Context) (*sql.DB, error)
	DBType() dsn.DBType
}

// DSNConnector opens connections from a normalized DSN.
type DSNConnector struct {
	dbType     dsn.DBType
	normalized string
}

// NewConnector parses and normalizes rawDSN and returns a connector for it.
func NewConnector(rawDSN string) (*DSNConnector, error) {
	info, err := dsn.ParseInfo(rawDSN)
	if err != nil {
		return nil, err
	}
	normalized, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}
	return &DSNConnector{dbType: info.Type, normalized: normalized}, nil
}

// DBType reports the dialect of the target store.
func (c *DSNConnector) DBType() dsn.DBType { return c.dbType }

// DSN returns the normalized connection string. It contains credentials.
func (c *DSNConnector) DSN() string { return c.normalized }

// Connect opens a handle limited to one physical connection and verifies it with a ping.
func (c *DSNConnector) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(c.dbType.DriverName(), c.normalized)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
