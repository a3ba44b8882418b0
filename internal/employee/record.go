// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package employee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one column of a fetched row.
type Field struct {
	Column string
	Value  string
}

// Record is one fetched row. Columns keep the order reported by the store and
// NULL columns are absent.
type Record []Field

// Get returns the value of column, if present.
func (r Record) Get(column string) (string, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return "", false
}

// Columns returns the column names of r in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// MarshalJSON writes r as a JSON object preserving column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into r preserving key order. Null values are dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	out := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// Non-string scalars are kept in their JSON text form.
			s = strings.TrimSpace(string(raw))
		}
		out = append(out, Field{Column: key, Value: s})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// EncodeRecords serializes records as a JSON array. An empty or nil slice yields "[]".
func EncodeRecords(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseRecords decodes a fetchEmployees payload.
func ParseRecords(payload string) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
