// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package employee defines the employee payloads exchanged over the method channel.
// Every field is text: no numeric or date typing is applied at this layer, the
// relational store decides how to coerce the values it receives.
package employee

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	apperrors "empbridge/cli/internal/errors"
)

// Wire keys of an employee payload, in statement binding order.
const (
	KeyEmployeeID   = "EmployeeID"
	KeyFirstName    = "FirstName"
	KeyLastName     = "LastName"
	KeyDepartmentID = "DepartmentID"
	KeySalary       = "Salary"
	KeyHireDate     = "HireDate"
)

// Keys lists every required wire key in binding order.
var Keys = []string{KeyEmployeeID, KeyFirstName, KeyLastName, KeyDepartmentID, KeySalary, KeyHireDate}

// Employee is the typed form of an addEmployee/updateEmployee argument bundle.
type Employee struct {
	EmployeeID   string `mapstructure:"EmployeeID" json:"EmployeeID"`
	FirstName    string `mapstructure:"FirstName" json:"FirstName"`
	LastName     string `mapstructure:"LastName" json:"LastName"`
	DepartmentID string `mapstructure:"DepartmentID" json:"DepartmentID"`
	Salary       string `mapstructure:"Salary" json:"Salary"`
	HireDate     string `mapstructure:"HireDate" json:"HireDate"`
}

// Map returns the argument bundle form of e.
func (e Employee) Map() map[string]any {
	return map[string]any{
		KeyEmployeeID:   e.EmployeeID,
		KeyFirstName:    e.FirstName,
		KeyLastName:     e.LastName,
		KeyDepartmentID: e.DepartmentID,
		KeySalary:       e.Salary,
		KeyHireDate:     e.HireDate,
	}
}

// InsertArgs returns the values bound by the insert statement.
func (e Employee) InsertArgs() []any {
	return []any{e.EmployeeID, e.FirstName, e.LastName, e.DepartmentID, e.Salary, e.HireDate}
}

// UpdateArgs returns the values bound by the update statement: the five
// non-identifier fields followed by the identifier.
func (e Employee) UpdateArgs() []any {
	return []any{e.FirstName, e.LastName, e.DepartmentID, e.Salary, e.HireDate, e.EmployeeID}
}

// InvalidFieldsError lists the wire keys that are missing or not text.
type InvalidFieldsError struct {
	Fields []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("invalid employee fields: %s", strings.Join(e.Fields, ", "))
}

// Decode converts a heterogeneous argument bundle into an Employee.
// Every key in Keys must be present with a string value; extra keys are ignored.
func Decode(args any) (Employee, error) {
	var emp Employee

	bundle, ok := asMap(args)
	if !ok {
		return emp, apperrors.Wrap(apperrors.InvalidInput, "arguments are not a key/value bundle",
			&InvalidFieldsError{Fields: append([]string(nil), Keys...)})
	}

	// mapstructure reports type errors as plain strings and accepts nil for a
	// present key, so offending keys are collected here first.
	var bad []string
	for _, key := range Keys {
		v, present := bundle[key]
		if !present || v == nil {
			bad = append(bad, key)
			continue
		}
		if _, isText := v.(string); !isText {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		return emp, apperrors.Wrap(apperrors.InvalidInput, "decode employee", &InvalidFieldsError{Fields: bad})
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &emp,
		WeaklyTypedInput: false,
		ErrorUnset:       true,
	})
	if err != nil {
		return emp, err
	}
	if err := dec.Decode(bundle); err != nil {
		return emp, apperrors.Wrap(apperrors.InvalidInput, "decode employee", err)
	}
	return emp, nil
}

func asMap(args any) (map[string]any, bool) {
	switch m := args.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}
