// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var rePort = regexp.MustCompile(`^\d+$`)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "sqlserver://"),
		strings.HasPrefix(lower, "mssql://"),
		strings.HasPrefix(lower, "jdbc:sqlserver://"),
		strings.HasPrefix(lower, "jdbc:jtds:sqlserver://"):
		return DBTypeSQLServer
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	}

	return DBTypeUnknown
}

func resolverFor(dsn string) (Resolver, error) {
	switch DetectDBType(dsn) {
	case DBTypeSQLServer:
		return NewSQLServerResolver(), nil
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	default:
		return nil, NewParseError(dsn, "unknown database type", "use sqlserver:// or postgres://")
	}
}

// Parse parses a DSN string and returns normalized connection string
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	if dsn == "" {
		return "", NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}

	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	if dsn == "" {
		return NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}

	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}

	return resolver.Parse(dsn)
}

// splitUserInfo splits "user[:password]" at the first colon.
func splitUserInfo(auth string) (user, password string) {
	if i := strings.Index(auth, ":"); i >= 0 {
		return auth[:i], auth[i+1:]
	}
	return auth, ""
}

// splitHostPort splits "host[:port]" without requiring a port.
func splitHostPort(hostPart string) (host, port string) {
	if i := strings.LastIndex(hostPart, ":"); i >= 0 {
		return hostPart[:i], hostPart[i+1:]
	}
	return hostPart, ""
}

// parseQuery parses "k=v&k2=v2" leniently, keeping raw values when unescaping fails.
func parseQuery(raw string, into map[string]string) {
	for _, param := range strings.Split(raw, "&") {
		kv := strings.SplitN(param, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		v, err := url.QueryUnescape(kv[1])
		if err != nil {
			v = kv[1]
		}
		into[kv[0]] = v
	}
}

// encodeParams renders params sorted by key.
func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func validPort(port string) bool {
	return port == "" || rePort.MatchString(port)
}
