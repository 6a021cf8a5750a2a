package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	v.Set(TicketTokenKey, testKey)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Minute, cfg.OperatorScopeTTL)
	assert.Equal(t, time.Duration(0), cfg.MaxTokenAge)
	assert.Len(t, cfg.TokenKey, 32)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("TICKET_TOKEN_KEY", testKey)
	t.Setenv("TICKET_MAX_TOKEN_AGE", "72h")

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 72*time.Hour, cfg.MaxTokenAge)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"7000\"\nscan:\n  idle_timeout: 2m\nticket:\n  token_key: " + testKey + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v, err := New(path)
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.ScanIdleTimeout)
}

func TestLoad_RejectsBadKeys(t *testing.T) {
	cases := map[string]string{
		"missing":    "",
		"not base64": "%%%",
		"short":      base64.StdEncoding.EncodeToString([]byte("short")),
	}

	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			v, err := New("")
			require.NoError(t, err)
			v.Set(TicketTokenKey, key)

			_, err = Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	v.Set(TicketTokenKey, testKey)
	v.Set(DBDriver, "mongo")

	_, err = Load(v)
	assert.Error(t, err)
}

func TestLoad_BootstrapAdminsFromEnvironment(t *testing.T) {
	t.Setenv("TICKET_TOKEN_KEY", testKey)
	t.Setenv("OPERATORS_BOOTSTRAP_ADMINS", "a3bb189e-8bf9-3888-9912-ace4e6543002 7c9e6679-7425-40de-944b-e07fc1f90ae7")

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a3bb189e-8bf9-3888-9912-ace4e6543002",
		"7c9e6679-7425-40de-944b-e07fc1f90ae7",
	}, cfg.BootstrapAdmins)
}
