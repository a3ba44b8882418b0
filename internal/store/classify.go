// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"

	apperrors "empbridge/cli/internal/errors"
)

// SQL Server error numbers for key, foreign key and NOT NULL violations.
var mssqlConstraintNumbers = map[int32]struct{}{
	2627: {}, // unique constraint
	2601: {}, // unique index
	547:  {}, // foreign key / check
	515:  {}, // NULL into NOT NULL column
}

// classify wraps an execution error with the kind the bridge reports.
func classify(msg string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.Timeout, msg, err)
	case isConstraintViolation(err):
		return apperrors.Wrap(apperrors.ConstraintViolation, msg, err)
	case isConnectionLoss(err):
		return apperrors.Wrap(apperrors.ConnectionUnavailable, msg, err)
	default:
		return apperrors.Wrap(apperrors.Unknown, msg, err)
	}
}

func isConstraintViolation(err error) bool {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		_, ok := mssqlConstraintNumbers[msErr.Number]
		return ok
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

func isConnectionLoss(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
