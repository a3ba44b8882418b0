// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empbridge/cli/internal/dsn"
	"empbridge/cli/internal/employee"
	apperrors "empbridge/cli/internal/errors"
	"empbridge/cli/internal/metrics"
)

var errDB = errors.New("DB error")

type stubConnector struct {
	db     *sql.DB
	err    error
	dbType dsn.DBType
	calls  int
}

func (c *stubConnector) Connect(context.Context) (*sql.DB, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.db, nil
}

func (c *stubConnector) DBType() dsn.DBType { return c.dbType }

func newMockStore(t *testing.T, dbType dsn.DBType) (*Store, sqlmock.Sqlmock, *metrics.Metrics) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	s := New(&stubConnector{db: db, dbType: dbType}, nil, WithMetrics(m))

	return s, mock, m
}

func sampleEmployee() employee.Employee {
	return employee.Employee{
		EmployeeID: "E1", FirstName: "Ann", LastName: "Lee",
		DepartmentID: "D1", Salary: "50000", HireDate: "2024-01-01",
	}
}

func TestStore_FetchAll(t *testing.T) {
	s, mock, m := newMockStore(t, dsn.DBTypeSQLServer)

	rows := sqlmock.NewRows([]string{"EmployeeID", "FirstName", "LastName", "DepartmentID", "Salary", "HireDate"}).
		AddRow("E1", "Ann", "Lee", "D1", []byte("50000.00"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
		AddRow("E2", "Bo", nil, int64(7), 61000.5, "2023-05-05")
	mock.ExpectQuery("SELECT * FROM employees").WillReturnRows(rows)
	mock.ExpectClose()

	records, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, employee.Record{
		{Column: "EmployeeID", Value: "E1"},
		{Column: "FirstName", Value: "Ann"},
		{Column: "LastName", Value: "Lee"},
		{Column: "DepartmentID", Value: "D1"},
		{Column: "Salary", Value: "50000.00"},
		{Column: "HireDate", Value: "2024-01-01"},
	}, records[0])

	assert.Equal(t, []string{"EmployeeID", "FirstName", "DepartmentID", "Salary", "HireDate"}, records[1].Columns())
	dept, _ := records[1].Get("DepartmentID")
	assert.Equal(t, "7", dept)
	salary, _ := records[1].Get("Salary")
	assert.Equal(t, "61000.5", salary)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}

func TestStore_FetchAll_DynamicColumns(t *testing.T) {
	s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectQuery("SELECT * FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("1", "a@example.com"))
	mock.ExpectClose()

	records, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []employee.Record{{{Column: "id", Value: "1"}, {Column: "email", Value: "a@example.com"}}}, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchAll_EmptyTable(t *testing.T) {
	s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectQuery("SELECT * FROM employees").WillReturnRows(sqlmock.NewRows([]string{"EmployeeID"}))
	mock.ExpectClose()

	records, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchAll_QueryErrorClosesConnection(t *testing.T) {
	s, mock, m := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectQuery("SELECT * FROM employees").WillReturnError(errDB)
	mock.ExpectClose()

	_, err := s.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.Unknown, apperrors.KindOf(err))
	assert.ErrorIs(t, err, errDB)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}

func TestStore_FetchAll_RowErrorClosesConnection(t *testing.T) {
	s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

	rows := sqlmock.NewRows([]string{"EmployeeID"}).AddRow("E1").AddRow("E2").RowError(1, errDB)
	mock.ExpectQuery("SELECT * FROM employees").WillReturnRows(rows)
	mock.ExpectClose()

	_, err := s.FetchAll(context.Background())
	require.ErrorIs(t, err, errDB)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ConnectionFailure(t *testing.T) {
	connErr := errors.New("dial tcp 10.0.0.5:1433: connect: connection refused")
	m := metrics.New(prometheus.NewRegistry())
	conn := &stubConnector{err: connErr, dbType: dsn.DBTypeSQLServer}
	s := New(conn, nil, WithMetrics(m))

	_, err := s.FetchAll(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ConnectionUnavailable))

	err = s.Add(context.Background(), sampleEmployee())
	assert.True(t, apperrors.Is(err, apperrors.ConnectionUnavailable))

	_, err = s.Update(context.Background(), sampleEmployee())
	assert.True(t, apperrors.Is(err, apperrors.ConnectionUnavailable))
	assert.ErrorIs(t, err, connErr)
	assert.ErrorIs(t, err, apperrors.ErrNoConnection)

	assert.Equal(t, 3, conn.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}

func TestStore_Add(t *testing.T) {
	s, mock, m := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectExec("INSERT INTO employees (EmployeeID, FirstName, LastName, DepartmentID, Salary, HireDate) VALUES (@p1, @p2, @p3, @p4, @p5, @p6)").
		WithArgs("E1", "Ann", "Lee", "D1", "50000", "2024-01-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	require.NoError(t, s.Add(context.Background(), sampleEmployee()))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}

func TestStore_Add_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "sql server duplicate key", err: mssql.Error{Number: 2627, Message: "Violation of PRIMARY KEY constraint"}, want: apperrors.ConstraintViolation},
		{name: "sql server syntax", err: mssql.Error{Number: 102, Message: "Incorrect syntax"}, want: apperrors.Unknown},
		{name: "postgres unique", err: &pgconn.PgError{Code: "23505"}, want: apperrors.ConstraintViolation},
		{name: "deadline", err: context.DeadlineExceeded, want: apperrors.Timeout},
		{name: "other", err: errDB, want: apperrors.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

			mock.ExpectExec(s.Statements().Insert).WillReturnError(tt.err)
			mock.ExpectClose()

			err := s.Add(context.Background(), sampleEmployee())
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Update(t *testing.T) {
	s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectExec("UPDATE employees SET FirstName = @p1, LastName = @p2, DepartmentID = @p3, Salary = @p4, HireDate = @p5 WHERE EmployeeID = @p6").
		WithArgs("Ann", "Lee2", "D1", "55000", "2024-01-01", "E1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	e := sampleEmployee()
	e.LastName = "Lee2"
	e.Salary = "55000"

	n, err := s.Update(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_MissingRowIsNotAnError(t *testing.T) {
	s, mock, _ := newMockStore(t, dsn.DBTypeSQLServer)

	mock.ExpectExec(s.Statements().Update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	e := sampleEmployee()
	e.EmployeeID = "E404"

	n, err := s.Update(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_ExecErrorClosesConnection(t *testing.T) {
	s, mock, m := newMockStore(t, dsn.DBTypePostgreSQL)

	mock.ExpectExec("UPDATE employees SET FirstName = $1, LastName = $2, DepartmentID = $3, Salary = $4, HireDate = $5 WHERE EmployeeID = $6").
		WillReturnError(errDB)
	mock.ExpectClose()

	_, err := s.Update(context.Background(), sampleEmployee())
	require.ErrorIs(t, err, errDB)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}
