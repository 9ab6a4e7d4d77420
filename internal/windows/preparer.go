package windows

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/capability"
	"codeberg.org/d-buckner/apppack/internal/fileupdate"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/internal/platform"
	"codeberg.org/d-buckner/apppack/internal/resources"
)

// SharedManifest is the config-file target that applies to every manifest
// in the project.
const SharedManifest = "package.appxmanifest"

// Preparer implements platform.Preparer for Windows projects, which may
// carry one manifest per target (8.1, Phone 8.1, 10).
type Preparer struct {
	adapter *Adapter
	updater *fileupdate.Updater
	logger  *slog.Logger
}

var _ platform.Preparer = (*Preparer)(nil)

// NewPreparer creates the Windows preparer.
func NewPreparer(logger *slog.Logger) *Preparer {
	return &Preparer{
		adapter: NewAdapter(logger),
		updater: fileupdate.NewUpdater(logger),
		logger:  logger,
	}
}

// Name returns the platform name.
func (p *Preparer) Name() string {
	return Platform
}

// ManifestPaths lists the appxmanifest files of a Windows project, sorted.
func ManifestPaths(platformDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(platformDir, "package*.appxmanifest"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no appxmanifest found in %s", platformDir)
	}
	sort.Strings(paths)
	return paths, nil
}

// Prepare updates every manifest, copies images, and then writes each
// manifest once. Nothing is written if any manifest rejects the config.
func (p *Preparer) Prepare(ctx context.Context, proj *platform.Project) error {
	platformDir := proj.PlatformDir(Platform)
	paths, err := ManifestPaths(platformDir)
	if err != nil {
		return err
	}
	defer invalidate(proj.Manifests, paths)

	configFiles := proj.ConfigFilesFor(Platform)
	var manifests []*manifest.Manifest
	for _, path := range paths {
		m, err := proj.Manifests.Get(path)
		if err != nil {
			return err
		}
		add, _ := capability.ParseFragments(capabilityFragments(configFiles, path), p.logger)
		if _, err := p.adapter.Apply(proj.Config, m, Capabilities{Add: add}); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		manifests = append(manifests, m)
	}

	r := p.mapResources(proj)
	if err := ctx.Err(); err != nil {
		return err
	}
	stats, err := p.updater.Apply(proj.Root, platformDir, r.Mapping)
	if err != nil {
		return fmt.Errorf("failed to copy resources: %w", err)
	}

	for _, m := range manifests {
		if err := m.Save(); err != nil {
			return fmt.Errorf("failed to write %s: %w", m.Path(), err)
		}
	}

	p.logger.Info("prepared platform",
		"platform", Platform,
		"manifests", len(manifests),
		"copied", stats.Copied,
		"unchanged", stats.Unchanged,
		"warnings", len(r.Warnings),
	)
	return nil
}

// Clean deletes the images Prepare would copy and removes contributed
// capabilities from every manifest.
func (p *Preparer) Clean(ctx context.Context, proj *platform.Project) error {
	platformDir := proj.PlatformDir(Platform)

	r := p.mapResources(proj)
	stats, err := p.updater.Apply(proj.Root, platformDir, r.Mapping.Clean())
	if err != nil {
		return fmt.Errorf("failed to delete resources: %w", err)
	}

	paths, err := ManifestPaths(platformDir)
	if err != nil {
		return err
	}
	defer invalidate(proj.Manifests, paths)

	configFiles := proj.ConfigFilesFor(Platform)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := proj.Manifests.Get(path)
		if err != nil {
			return err
		}
		remove, _ := capability.ParseFragments(capabilityFragments(configFiles, path), p.logger)
		if len(remove) == 0 {
			continue
		}
		if _, err := p.adapter.applyCapabilities(m.XML, m.Format, Capabilities{Remove: remove}); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return fmt.Errorf("failed to write %s: %w", m.Path(), err)
		}
	}

	p.logger.Info("cleaned platform", "platform", Platform, "deleted", stats.Deleted)
	return nil
}

func (p *Preparer) mapResources(proj *platform.Project) resources.Result {
	cfg := proj.Config
	mapper := resources.NewMapper(resources.OSIndex{Root: proj.Root}, proj.MaxSplashBytes, p.logger)

	r := mapper.WindowsIcons(cfg.IconsFor(Platform))
	r.Merge(mapper.WindowsSplash(cfg.SplashScreensFor(Platform)))
	return r
}

// capabilityFragments selects the config-file fragments aimed at the
// <Capabilities> element of the manifest at path.
func capabilityFragments(files []appconfig.ConfigFile, path string) []string {
	base := filepath.Base(path)
	var out []string
	for _, cf := range files {
		if !strings.EqualFold(strings.TrimSuffix(cf.Parent, "/"), pathCapabilities) {
			continue
		}
		if !strings.EqualFold(cf.Target, SharedManifest) && !strings.EqualFold(cf.Target, base) {
			continue
		}
		out = append(out, cf.Fragments...)
	}
	return out
}

func invalidate(cache *manifest.Cache, paths []string) {
	for _, path := range paths {
		cache.Invalidate(path)
	}
}
