package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CODEASSIST_HOME", home)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".codeassist", "config.yaml"), cfg.Path())
	assert.FileExists(t, cfg.Path())
	assert.Equal(t, BackendAsk, cfg.Backend)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel())
	assert.False(t, cfg.IsValid())
}

func TestLoadFrom_FillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: openai
debounce: 50ms
profiles:
  work:
    api_key: sk-test
    model: gpt-4o
active_profile: work
`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultPendingCap, cfg.PendingCap)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsValid())
	assert.Equal(t, "sk-test", cfg.GetAPIKey())
	assert.Equal(t, "gpt-4o", cfg.GetModel())
}

func TestLoadFrom_UnknownActiveProfileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  only:
    model: m
active_profile: missing
`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "only", cfg.ActiveProfile)
	assert.Equal(t, "m", cfg.GetModel())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "backend: carrier-pigeon\n"},
		{"bad endpoint", "endpoint: not a url\n"},
		{"bad level", "log_level: loud\n"},
		{"not yaml", "backend: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Backend = BackendOpenAI
	cfg.Profiles["default"] = Profile{APIKey: "k", Model: "gpt-4o"}
	require.NoError(t, cfg.Save())

	again, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendOpenAI, again.Backend)
	assert.Equal(t, "k", again.GetAPIKey())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := LoadFrom(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { reloaded <- c }, zap.NewNop())
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("backend: ask\nlisten_addr: 127.0.0.1:9999\n"), 0600))

	select {
	case c := <-reloaded:
		assert.Equal(t, "127.0.0.1:9999", c.ListenAddr)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}
