// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"fmt"
	"strings"

	"empbridge/cli/internal/dsn"
)

// Table is the only table the bridge touches.
const Table = "employees"

// Statements holds the three statements issued by the bridge.
type Statements struct {
	SelectAll string
	Insert    string
	Update    string
}

// StatementsFor renders the statements with the placeholder style of t.
// SQL Server takes @p1..@pN, PostgreSQL takes $1..$N.
func StatementsFor(t dsn.DBType) Statements {
	ph := func(n int) string { return fmt.Sprintf("@p%d", n) }
	if t == dsn.DBTypePostgreSQL {
		ph = func(n int) string { return fmt.Sprintf("$%d", n) }
	}

	values := make([]string, 6)
	for i := range values {
		values[i] = ph(i + 1)
	}

	return Statements{
		SelectAll: "SELECT * FROM " + Table,
		Insert: "INSERT INTO " + Table + " (EmployeeID, FirstName, LastName, DepartmentID, Salary, HireDate) VALUES (" +
			strings.Join(values, ", ") + ")",
		Update: fmt.Sprintf("UPDATE %s SET FirstName = %s, LastName = %s, DepartmentID = %s, Salary = %s, HireDate = %s WHERE EmployeeID = %s",
			Table, ph(1), ph(2), ph(3), ph(4), ph(5), ph(6)),
	}
}
