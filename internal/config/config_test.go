package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Store.TxTimeout)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=eventregistration sslmode=disable", cfg.Database.DSN())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
store:
  driver: memory
  tx_timeout: 3s
  lock_timeout: 1s
redis:
  addr: localhost:6379
`), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("LOCK_TIMEOUT", "500ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTP.Port, "env overrides file")
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 3*time.Second, cfg.Store.TxTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.LockTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "registrations", cfg.Redis.Channel, "unset keys keep defaults")
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TX_TIMEOUT", "soon")
		_, err := Load("")
		require.ErrorContains(t, err, "TX_TIMEOUT")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		_, err := Load("")
		require.ErrorContains(t, err, "unknown driver")
	})
}

func TestValidate_LockTimeoutBoundedByTxTimeout(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Store.LockTimeout = cfg.Store.TxTimeout + time.Second
	require.ErrorContains(t, cfg.Validate(), "lock_timeout")

	cfg = Default()
	cfg.Store.TxTimeout = 0
	require.ErrorContains(t, cfg.Validate(), "tx_timeout")
}
