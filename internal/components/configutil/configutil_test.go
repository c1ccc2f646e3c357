package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Retries int      `json:"retries"`
	Tags    []string `json:"tags"`
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "config.local.json5"), LocalPath(filepath.Join("conf", "config.json5")))
	require.Equal(t, "telemetry.local.json5", LocalPath("telemetry.json5"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = os.WriteFile(path, []byte(`{
		// defaults
		name: "base",
		retries: 10,
		tags: ["a", "b"],
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "base", Retries: 10, Tags: []string{"a", "b"}}, cfg)

	err = os.WriteFile(LocalPath(path), []byte(`{ retries: 3 }`), 0600)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "base", Retries: 3, Tags: []string{"a", "b"}}, cfg)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(LocalPath(path), []byte(`{ name: "local" }`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{ name: `), 0600)
	require.NoError(t, err)

	_, err = ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}
