package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoDSN is returned when no database DSN is configured anywhere.
var ErrNoDSN = errors.New("no database configured: run 'empbridge connect' or set " + EnvDSN)

// DSN sources reported by ResolveDSN.
const (
	SourceEnv      = "env:" + EnvDSN
	SourceURL      = "env:" + EnvDatabaseURL
	SourceKeychain = "keychain"
)

// DSNLoader reads a stored DSN. *keychain.Manager implements it.
type DSNLoader interface {
	LoadDBDSN() (string, error)
}

// ResolveDSN returns the DSN and where it came from: EMPBRIDGE_DSN, then
// DATABASE_URL, then the keychain. A nil loader skips the keychain.
func ResolveDSN(loader DSNLoader) (string, string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvDSN)); v != "" {
		return v, SourceEnv, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		return v, SourceURL, nil
	}
	if loader != nil {
		if v, err := loader.LoadDBDSN(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), SourceKeychain, nil
		}
	}
	return "", "", ErrNoDSN
}
