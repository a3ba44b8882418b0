// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecords_PreservesColumnOrder(t *testing.T) {
	records := []Record{
		{{Column: "EmployeeID", Value: "E1"}, {Column: "FirstName", Value: "Ann"}, {Column: "Salary", Value: "50000"}},
		{{Column: "EmployeeID", Value: "E2"}, {Column: "FirstName", Value: "Bo \"B\""}},
	}

	got, err := EncodeRecords(records)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"EmployeeID":"E1","FirstName":"Ann","Salary":"50000"},{"EmployeeID":"E2","FirstName":"Bo \"B\""}]`,
		got)
}

func TestEncodeRecords_Empty(t *testing.T) {
	got, err := EncodeRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = EncodeRecords([]Record{})
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(`[{"Salary":"1","EmployeeID":"E1","HireDate":null,"Active":true}]`)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, []string{"Salary", "EmployeeID", "Active"}, records[0].Columns())

	v, ok := records[0].Get("Active")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = records[0].Get("HireDate")
	assert.False(t, ok)
}

func TestParseRecords_Empty(t *testing.T) {
	records, err := ParseRecords("[]")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestParseRecords_Invalid(t *testing.T) {
	_, err := ParseRecords(`[1]`)
	assert.Error(t, err)
}
