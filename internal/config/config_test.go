package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	for _, k := range []string{EnvLogLevel, EnvChannelAddr, EnvDSN, EnvDatabaseURL} {
		t.Setenv(k, "")
	}
	t.Setenv(EnvMetricsAddr, "")
	os.Unsetenv(EnvMetricsAddr)
	return filepath.Join(base, "empbridge", "config.json")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
	assert.Equal(t, "127.0.0.1:50051", c.Channel.Address)
	assert.Equal(t, "127.0.0.1:9464", c.Metrics.Address)
	assert.False(t, c.StrictUpdate)
	assert.False(t, c.ErrorDetails)

	d, err := c.Timeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestSaveAndLoad(t *testing.T) {
	p := isolate(t)

	c := Defaults()
	c.StrictUpdate = true
	c.OperationTimeout = "15s"
	require.NoError(t, Save(c))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.True(t, got.StrictUpdate)
	d, err := got.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := isolate(t)
	require.NoError(t, os.WriteFile(p, []byte(`{"log_level":"debug"}`), 0o600))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "127.0.0.1:50051", c.Channel.Address)
}

func TestLoad_InvalidFile(t *testing.T) {
	p := isolate(t)
	require.NoError(t, os.WriteFile(p, []byte(`{`), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvChannelAddr, "0.0.0.0:6000")
	t.Setenv(EnvMetricsAddr, "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "0.0.0.0:6000", c.Channel.Address)
	assert.Empty(t, c.Metrics.Address)
}

func TestTimeout_Invalid(t *testing.T) {
	for _, v := range []string{"soon", "-1s"} {
		_, err := Config{OperationTimeout: v}.Timeout()
		assert.Error(t, err, v)
	}
}

type stubLoader struct {
	dsn string
	err error
}

func (s stubLoader) LoadDBDSN() (string, error) { return s.dsn, s.err }

func TestResolveDSN(t *testing.T) {
	isolate(t)
	keychain := stubLoader{dsn: "sqlserver://k:k@kc:1433?database=hr"}

	_, _, err := ResolveDSN(nil)
	assert.ErrorIs(t, err, ErrNoDSN)

	_, _, err = ResolveDSN(stubLoader{err: errors.New("key not found")})
	assert.ErrorIs(t, err, ErrNoDSN)

	v, src, err := ResolveDSN(keychain)
	require.NoError(t, err)
	assert.Equal(t, SourceKeychain, src)
	assert.Equal(t, keychain.dsn, v)

	t.Setenv(EnvDatabaseURL, "postgres://u:p@db/hr")
	v, src, err = ResolveDSN(keychain)
	require.NoError(t, err)
	assert.Equal(t, SourceURL, src)
	assert.Equal(t, "postgres://u:p@db/hr", v)

	t.Setenv(EnvDSN, " sqlserver://e:e@env:1433?database=hr ")
	v, src, err = ResolveDSN(keychain)
	require.NoError(t, err)
	assert.Equal(t, SourceEnv, src)
	assert.Equal(t, "sqlserver://e:e@env:1433?database=hr", v)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, LoadDotEnv())

	t.Setenv(EnvChannelAddr, "")
	os.Unsetenv(EnvChannelAddr)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvChannelAddr+"=10.1.1.1:7000\n"), 0o600))
	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "10.1.1.1:7000", os.Getenv(EnvChannelAddr))
}
