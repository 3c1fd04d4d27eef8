package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Db struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"db"`
	Tiny struct {
		User    string `json:"user"`
		DateDay int    `json:"date_day"`
	} `json:"tiny"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json5")

	err := os.WriteFile(path, []byte(`{
		// bearer token source
		db: { host: "10.0.0.4", port: 5432 },
		tiny: { user: "ops@example.com", date_day: 10 },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.4", cfg.Db.Host)
	require.Equal(t, 5432, cfg.Db.Port)
	require.Equal(t, "ops@example.com", cfg.Tiny.User)
	require.Equal(t, 10, cfg.Tiny.DateDay)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "credentials.json5"), []byte(`{
		db: { host: "10.0.0.4", port: 5432 },
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "credentials.local.json5"), []byte(`{
		db: { host: "localhost" },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "credentials.json5"))
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.Db.Host)
	require.Equal(t, 5432, cfg.Db.Port)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "credentials.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json5")
	err := os.WriteFile(path, []byte(`{ db: `), 0600)
	require.NoError(t, err)

	_, err = ReadConfig[testConfig](path)
	require.Error(t, err)
}
