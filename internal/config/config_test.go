package config

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APPPACK_PROJECT_DIR", "APPPACK_CONFIG_FILE", "APPPACK_PLATFORMS_DIR",
		"APPPACK_PLUGINS_DIR", "APPPACK_LOG_LEVEL", "APPPACK_LOG_FORMAT", "APPPACK_SPLASH_MAX_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ".", cfg.ProjectDir)
	assert.Equal(t, "config.xml", cfg.ConfigFile)
	assert.Equal(t, "platforms", cfg.PlatformsDir)
	assert.Equal(t, "plugins", cfg.PluginsDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, int64(200*1024), cfg.SplashMaxBytes)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APPPACK_PROJECT_DIR", "/work/app")
	t.Setenv("APPPACK_CONFIG_FILE", "")
	t.Setenv("APPPACK_PLATFORMS_DIR", "/build/platforms")
	t.Setenv("APPPACK_PLUGINS_DIR", "")
	t.Setenv("APPPACK_LOG_LEVEL", "DEBUG")
	t.Setenv("APPPACK_LOG_FORMAT", "Text")
	t.Setenv("APPPACK_SPLASH_MAX_BYTES", "1024")

	cfg := Load()

	assert.Equal(t, filepath.Join("/work/app", "config.xml"), cfg.ConfigFile)
	assert.Equal(t, "/build/platforms", cfg.PlatformsDir)
	assert.Equal(t, filepath.Join("/work/app", "plugins"), cfg.PluginsDir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, int64(1024), cfg.SplashMaxBytes)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("APPPACK_SPLASH_MAX_BYTES", "lots")
	assert.Equal(t, int64(200*1024), Load().SplashMaxBytes)
}

func TestWithProjectDir(t *testing.T) {
	t.Setenv("APPPACK_CONFIG_FILE", "")
	t.Setenv("APPPACK_PLUGINS_DIR", "")
	t.Setenv("APPPACK_PLATFORMS_DIR", "/fixed")

	cfg := Load().WithProjectDir("/other")

	assert.Equal(t, "/other", cfg.ProjectDir)
	assert.Equal(t, filepath.Join("/other", "config.xml"), cfg.ConfigFile)
	assert.Equal(t, filepath.Join("/other", "plugins"), cfg.PluginsDir)
	assert.Equal(t, "/fixed", cfg.PlatformsDir)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
