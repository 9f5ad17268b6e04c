package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
)

func TestSetupLoggerHonoursConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	logger := SetupLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json handler expected: %q", out)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINTRACK_TEST_VALUE=from-dotenv\n"), 0o644))
	t.Setenv("FINTRACK_TEST_VALUE", "")
	os.Unsetenv("FINTRACK_TEST_VALUE")

	LoadEnvFile(path)
	assert.Equal(t, "from-dotenv", os.Getenv("FINTRACK_TEST_VALUE"))

	// Missing files are ignored.
	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_BACKEND", "nosql")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid data backend")
}

func TestInitBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "finance_app.db")

	res, err := InitBackend(context.Background(), SetupLogger(cfg, &bytes.Buffer{}), cfg)
	require.NoError(t, err)
	defer res.Cleanup()

	_, err = res.Service.Accounts.Register(context.Background(), "alice", "pw")
	assert.NoError(t, err)
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), SetupLogger(nil, &bytes.Buffer{}))
	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
