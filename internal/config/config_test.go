package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func TestLoadConfigWithDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:3000/api/prompt-builder/chat", cfg.Backend.URL)
	assert.Equal(t, TransportHTTP, cfg.Backend.Transport)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, "data: ", cfg.Framing.Marker)
	assert.Equal(t, "[DONE]", cfg.Framing.Sentinel)
	assert.Equal(t, "gpt-4o-mini", cfg.Session.ModelName)
	assert.Equal(t, "prompt.yaml", cfg.Document.Path)
	assert.False(t, cfg.UI.Plain)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := inTempDir(t)

	content := `
backend:
  url: https://prompts.example.com/api/prompt-builder/chat
  transport: websocket
  timeout: 90s
  headers:
    Authorization: Bearer abc
framing:
  marker: "event: "
session:
  model_name: gpt-4o
document:
  path: drafts/haiku.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "promptbuilder.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://prompts.example.com/api/prompt-builder/chat", cfg.Backend.URL)
	assert.Equal(t, TransportWebSocket, cfg.Backend.Transport)
	assert.Equal(t, 90*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "Bearer abc", cfg.Backend.Headers["authorization"])
	assert.Equal(t, "event: ", cfg.Framing.Marker)
	assert.Equal(t, "[DONE]", cfg.Framing.Sentinel)
	assert.Equal(t, "gpt-4o", cfg.Session.ModelName)
	assert.Equal(t, "drafts/haiku.yaml", cfg.Document.Path)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  url: http://file\n"), 0o644))

	t.Setenv("PROMPTBUILDER_BACKEND_URL", "http://env")
	t.Setenv("PROMPTBUILDER_UI_PLAIN", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env", cfg.Backend.URL)
	assert.True(t, cfg.UI.Plain)
}

func TestLoadConfigAppliesBinders(t *testing.T) {
	inTempDir(t)

	cfg, err := LoadConfig("", func(v *viper.Viper) error {
		v.Set("session.failure_message", "Try again later.")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Try again later.", cfg.Session.FailureMessage)
}

func TestLoadConfigFailsOnMissingExplicitFile(t *testing.T) {
	dir := inTempDir(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownTransport(t *testing.T) {
	inTempDir(t)
	t.Setenv("PROMPTBUILDER_BACKEND_TRANSPORT", "carrier-pigeon")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.transport")
}
