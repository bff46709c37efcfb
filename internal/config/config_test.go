package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 9, cfg.Rules.OpeningHour)
	assert.Equal(t, 17, cfg.Rules.ClosingHour)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, cfg.Rules.OperatingDays)
	assert.Equal(t, 0.5, cfg.Rules.MinDurationHours)
	assert.Equal(t, 4.0, cfg.Rules.MaxDurationHours)

	require.Len(t, cfg.Equipment, 6)
	assert.Equal(t, "ceramic_printer", cfg.Equipment[0].ID)
	assert.Equal(t, 8.0, cfg.Equipment[3].MaxDurationHours)

	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, "carl@creativespark.ie", cfg.Email.FacilitiesManagerEmail)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
server:
  addr: ":9090"
storage:
  driver: file
  path: /tmp/bookings.json
rules:
  closinghour: 18
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/bookings.json", cfg.Storage.Path)
	assert.Equal(t, 18, cfg.Rules.ClosingHour)
	// Untouched keys keep their defaults.
	assert.Equal(t, 9, cfg.Rules.OpeningHour)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("FABLAB_SERVER_ADDR", ":7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
