package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, 2*time.Hour, cfg.Booking.CancelLeadTime.Std())
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tripshare.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = ":9090"

[booking]
cancel_lead_time = "30m"
sweep_interval = "15s"
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.Equal(t, 30*time.Minute, cfg.Booking.CancelLeadTime.Std())
		assert.Equal(t, 15*time.Second, cfg.Booking.SweepInterval.Std())
		assert.Equal(t, 3*time.Second, cfg.Booking.LockTimeout.Std())
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("JWT_SECRET", "from-env")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	})

	t.Run("bad duration fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[booking]
cancel_lead_time = "soon"
`), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
