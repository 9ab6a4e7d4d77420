package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/d-buckner/apppack/internal/resources"
)

// Config holds the tool configuration
type Config struct {
	ProjectDir     string // Project root holding the descriptor, www/ and res/
	ConfigFile     string // Descriptor path (config.xml or app.yaml)
	PlatformsDir   string // Native projects, one directory per platform
	PluginsDir     string // Installed plugins, each with a plugin.xml
	LogLevel       slog.Level
	LogFormat      string // "json" or "text"
	SplashMaxBytes int64  // Size limit for Windows splash images
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	projectDir := getEnv("APPPACK_PROJECT_DIR", ".")

	return &Config{
		ProjectDir:     projectDir,
		ConfigFile:     getEnv("APPPACK_CONFIG_FILE", filepath.Join(projectDir, "config.xml")),
		PlatformsDir:   getEnv("APPPACK_PLATFORMS_DIR", filepath.Join(projectDir, "platforms")),
		PluginsDir:     getEnv("APPPACK_PLUGINS_DIR", filepath.Join(projectDir, "plugins")),
		LogLevel:       ParseLevel(getEnv("APPPACK_LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("APPPACK_LOG_FORMAT", "json")),
		SplashMaxBytes: int64(getEnvAsInt("APPPACK_SPLASH_MAX_BYTES", int(resources.DefaultMaxSplashBytes))),
	}
}

// WithProjectDir rebases the paths that were not set explicitly onto dir.
func (c *Config) WithProjectDir(dir string) *Config {
	out := *c
	out.ProjectDir = dir
	if os.Getenv("APPPACK_CONFIG_FILE") == "" {
		out.ConfigFile = filepath.Join(dir, "config.xml")
	}
	if os.Getenv("APPPACK_PLATFORMS_DIR") == "" {
		out.PlatformsDir = filepath.Join(dir, "platforms")
	}
	if os.Getenv("APPPACK_PLUGINS_DIR") == "" {
		out.PluginsDir = filepath.Join(dir, "plugins")
	}
	return &out
}

// NewLogger builds the process logger. Logs go to stderr so stdout stays
// usable for command output.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
