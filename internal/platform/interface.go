// Package platform defines the per-platform prepare/clean hooks and runs
// them over a project.
package platform

import (
	"context"
	"path/filepath"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/internal/plugin"
)

// Preparer brings one platform's native project in line with the app config.
// Both methods must be idempotent: running Prepare twice leaves the project
// as a single run would, and Clean removes exactly what Prepare created.
type Preparer interface {
	// Name returns the platform name (e.g. "ios", "windows")
	Name() string

	// Prepare applies the config to manifests and copies resources.
	Prepare(ctx context.Context, p *Project) error

	// Clean deletes the resources Prepare would copy.
	Clean(ctx context.Context, p *Project) error
}

// Project contains everything a Preparer needs.
type Project struct {
	// Root is the project directory holding the descriptor and www/
	Root string

	// PlatformsDir holds one native project per platform
	PlatformsDir string

	// Config is the parsed app descriptor
	Config *appconfig.AppConfig

	// Plugins are the installed plugins, in install order
	Plugins []*plugin.Plugin

	// Manifests caches parsed manifests across platforms in one run
	Manifests *manifest.Cache

	// MaxSplashBytes bounds Windows splash images; 0 uses the default
	MaxSplashBytes int64
}

// PlatformDir returns the native project directory for a platform.
func (p *Project) PlatformDir(name string) string {
	return filepath.Join(p.PlatformsDir, name)
}

// ConfigFilesFor returns app-level config-file blocks followed by plugin
// contributions for the platform.
func (p *Project) ConfigFilesFor(platform string) []appconfig.ConfigFile {
	out := p.Config.ConfigFilesFor(platform)
	return append(out, plugin.ConfigFiles(p.Plugins, platform)...)
}
