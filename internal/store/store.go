// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store is the data access handler of the bridge. Each operation opens its own
// connection through a Connector, executes exactly one statement against the employees
// table and releases the rows and the connection before returning, on every path.
//
// Errors returned by the store are *errors.E values classified as connection_unavailable,
// constraint_violation, timeout or unknown. They carry the driver error for logging;
// callers decide what to surface.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pterm/pterm"

	"empbridge/cli/internal/employee"
	apperrors "empbridge/cli/internal/errors"
	"empbridge/cli/internal/logging"
	"empbridge/cli/internal/metrics"
)

// Store executes the bridge statements.
type Store struct {
	connector Connector
	stmts     Statements
	logger    *pterm.Logger
	metrics   *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics instruments connection usage.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store over connector. A nil logger discards output.
func New(connector Connector, logger *pterm.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Store{
		connector: connector,
		stmts:     StatementsFor(connector.DBType()),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Statements returns the statements issued by s.
func (s *Store) Statements() Statements { return s.stmts }

// open acquires a connection and returns its release function.
func (s *Store) open(ctx context.Context) (*sql.DB, func(), error) {
	s.logger.Debug("Attempting to connect to the database")
	db, err := s.connector.Connect(ctx)
	if err != nil {
		s.logger.Error("Error connecting to the database",
			s.logger.Args("error", logging.Mask(err.Error())))
		return nil, nil, apperrors.Wrap(apperrors.ConnectionUnavailable, "open connection",
			fmt.Errorf("%w: %w", apperrors.ErrNoConnection, err))
	}
	s.metrics.ConnectionOpened()
	s.logger.Debug("Connected to the database")

	release := func() {
		if err := db.Close(); err != nil {
			s.logger.Error("Error closing resources", s.logger.Args("error", logging.Mask(err.Error())))
		}
		s.metrics.ConnectionClosed()
		s.logger.Debug("Database resources closed")
	}
	return db, release, nil
}

// FetchAll returns every row of the employees table in store order.
// Column names come from the result metadata.
func (s *Store) FetchAll(ctx context.Context) ([]employee.Record, error) {
	db, release, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	s.logger.Debug("Executing query", s.logger.Args("query", s.stmts.SelectAll))
	rows, err := db.QueryContext(ctx, s.stmts.SelectAll)
	if err != nil {
		return nil, classify("select employees", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify("read columns", err)
	}

	records := []employee.Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify("scan employee row", err)
		}

		rec := make(employee.Record, 0, len(cols))
		for i, col := range cols {
			if text, ok := textValue(vals[i]); ok {
				rec = append(rec, employee.Field{Column: col, Value: text})
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate employee rows", err)
	}

	return records, nil
}

// Add inserts e. Identifier collisions are left to the store's constraints.
func (s *Store) Add(ctx context.Context, e employee.Employee) error {
	db, release, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.logger.Debug("Executing statement", s.logger.Args("statement", s.stmts.Insert))
	if _, err := db.ExecContext(ctx, s.stmts.Insert, e.InsertArgs()...); err != nil {
		return classify("insert employee", err)
	}
	return nil
}

// Update rewrites the five non-identifier fields of the row keyed by e.EmployeeID and
// reports the affected row count. Zero rows is not an error.
func (s *Store) Update(ctx context.Context, e employee.Employee) (int64, error) {
	db, release, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	s.logger.Debug("Executing statement", s.logger.Args("statement", s.stmts.Update))
	res, err := db.ExecContext(ctx, s.stmts.Update, e.UpdateArgs()...)
	if err != nil {
		return 0, classify("update employee", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report a count; the update itself succeeded.
		return -1, nil
	}
	return n, nil
}
