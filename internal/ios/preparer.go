package ios

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/fileupdate"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/internal/platform"
	"codeberg.org/d-buckner/apppack/internal/resources"
	"codeberg.org/d-buckner/apppack/pkg/plistutil"
)

const contentsFile = "Contents.json"

// Preparer implements platform.Preparer for Xcode projects.
type Preparer struct {
	adapter *Adapter
	updater *fileupdate.Updater
	logger  *slog.Logger
}

var _ platform.Preparer = (*Preparer)(nil)

// NewPreparer creates the iOS preparer.
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

// Layout locates the files of an Xcode project inside platforms/ios.
type Layout struct {
	// Dir is the app folder holding Info.plist and Images.xcassets
	Dir string
	// InfoPlist is <Dir>/<name>-Info.plist
	InfoPlist string
}

// Locate resolves the project layout. The project name comes from the
// .xcodeproj bundle, falling back to the app name.
func Locate(platformDir, appName string) Layout {
	name := appName
	if matches, _ := filepath.Glob(filepath.Join(platformDir, "*.xcodeproj")); len(matches) > 0 {
		name = strings.TrimSuffix(filepath.Base(matches[0]), ".xcodeproj")
	}
	dir := filepath.Join(platformDir, name)
	return Layout{
		Dir:       dir,
		InfoPlist: filepath.Join(dir, name+"-Info.plist"),
	}
}

// Prepare updates Info.plist and the asset catalogs. The plist is written
// once at the end, after every resource has been copied.
func (p *Preparer) Prepare(ctx context.Context, proj *platform.Project) error {
	cfg := proj.Config
	layout := Locate(proj.PlatformDir(Platform), cfg.Name)
	if _, err := os.Stat(layout.InfoPlist); err != nil {
		return fmt.Errorf("info plist not found: %w", err)
	}

	m, err := proj.Manifests.Get(layout.InfoPlist)
	if err != nil {
		return err
	}
	// The cached tree is mutated in place; drop it whatever happens.
	defer proj.Manifests.Invalidate(layout.InfoPlist)
	if m.Format != manifest.FormatPlist {
		return fmt.Errorf("%s: expected a plist, got %s", layout.InfoPlist, m.Format)
	}

	if err := p.adapter.Apply(cfg, m.Plist); err != nil {
		return err
	}
	p.mergeConfigFiles(proj.ConfigFilesFor(Platform), m.Plist)

	r, slots := p.mapResources(proj)
	if err := ctx.Err(); err != nil {
		return err
	}
	stats, err := p.updater.Apply(proj.Root, layout.Dir, r.Mapping)
	if err != nil {
		return fmt.Errorf("failed to copy resources: %w", err)
	}
	if err := writeContents(layout.Dir, slots); err != nil {
		return err
	}

	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to write Info.plist: %w", err)
	}

	p.logger.Info("prepared platform",
		"platform", Platform,
		"copied", stats.Copied,
		"unchanged", stats.Unchanged,
		"warnings", len(r.Warnings),
	)
	return nil
}

// Clean deletes every image Prepare would copy and resets the launch
// storyboard catalog to its unmatched slots.
func (p *Preparer) Clean(ctx context.Context, proj *platform.Project) error {
	layout := Locate(proj.PlatformDir(Platform), proj.Config.Name)

	r, slots := p.mapResources(proj)
	stats, err := p.updater.Apply(proj.Root, layout.Dir, r.Mapping.Clean())
	if err != nil {
		return fmt.Errorf("failed to delete resources: %w", err)
	}

	empty := make([]resources.LaunchSlot, len(slots))
	for i, s := range slots {
		empty[i] = resources.LaunchSlot{Idiom: s.Idiom, Scale: s.Scale, WidthClass: s.WidthClass, HeightClass: s.HeightClass}
	}
	if err := writeContents(layout.Dir, empty); err != nil {
		return err
	}

	p.logger.Info("cleaned platform", "platform", Platform, "deleted", stats.Deleted)
	return nil
}

func (p *Preparer) mapResources(proj *platform.Project) (resources.Result, []resources.LaunchSlot) {
	cfg := proj.Config
	mapper := resources.NewMapper(resources.OSIndex{Root: proj.Root}, proj.MaxSplashBytes, p.logger)

	r := mapper.IOSIcons(cfg.IconsFor(Platform))
	splash, slots := mapper.IOSSplash(cfg.SplashScreensFor(Platform))
	r.Merge(splash)
	return r, slots
}

func writeContents(dir string, slots []resources.LaunchSlot) error {
	data, err := resources.ContentsJSON(slots)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", contentsFile, err)
	}
	path := filepath.Join(dir, filepath.FromSlash(resources.IOSLaunchStoryboardDir), contentsFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// mergeConfigFiles applies <config-file target="*-Info.plist" parent="Key">
// blocks. A fragment that fails to parse is logged and skipped.
func (p *Preparer) mergeConfigFiles(files []appconfig.ConfigFile, doc *plistutil.Document) {
	for _, cf := range files {
		if !strings.HasSuffix(cf.Target, "Info.plist") || cf.Parent == "" {
			continue
		}
		for _, frag := range cf.Fragments {
			v, err := plistutil.ParseValue(frag)
			if err != nil {
				p.logger.Warn("skipping plist fragment", "key", cf.Parent, "error", err)
				continue
			}
			doc.Merge(cf.Parent, v)
		}
	}
}
