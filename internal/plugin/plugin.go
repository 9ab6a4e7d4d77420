// Package plugin reads the manifest contributions declared by installed
// plugins in their plugin.xml.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

// ManifestFile is the descriptor every plugin directory carries.
const ManifestFile = "plugin.xml"

// Plugin is an installed plugin and its config-file contributions.
type Plugin struct {
	ID      string
	Version string
	Name    string
	Path    string

	// keyed by lowercase platform name; "" holds the platform-independent blocks
	configFiles map[string][]appconfig.ConfigFile
}

// Load parses a plugin.xml file.
func Load(path string) (*Plugin, error) {
	tree, err := xmlutil.OpenExisting(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin: %w", err)
	}

	root := tree.Root()
	if root.Tag != "plugin" {
		return nil, fmt.Errorf("%s: unexpected root element <%s>, want <plugin>", path, root.Tag)
	}
	id := root.SelectAttrValue("id", "")
	if id == "" {
		return nil, fmt.Errorf("%s: plugin id is required", path)
	}

	p := &Plugin{
		ID:          id,
		Version:     root.SelectAttrValue("version", ""),
		Path:        path,
		configFiles: make(map[string][]appconfig.ConfigFile),
	}
	if name := xmlutil.FirstChild(root, "name"); name != nil {
		p.Name = strings.TrimSpace(name.Text())
	}

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "config-file":
			if err := p.addConfigFile("", el); err != nil {
				return nil, err
			}
		case "platform":
			platform := strings.ToLower(el.SelectAttrValue("name", ""))
			if platform == "" {
				continue
			}
			for _, cf := range xmlutil.ChildrenByLocal(el, "config-file") {
				if err := p.addConfigFile(platform, cf); err != nil {
					return nil, err
				}
			}
		}
	}
	return p, nil
}

func (p *Plugin) addConfigFile(platform string, el *etree.Element) error {
	cf, err := appconfig.ReadConfigFile(el)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", p.ID, err)
	}
	p.configFiles[platform] = append(p.configFiles[platform], cf)
	return nil
}

// ConfigFilesFor returns the platform-independent blocks followed by the
// blocks declared for platform.
func (p *Plugin) ConfigFilesFor(platform string) []appconfig.ConfigFile {
	out := append([]appconfig.ConfigFile(nil), p.configFiles[""]...)
	return append(out, p.configFiles[strings.ToLower(platform)]...)
}

// LoadDir loads every <dir>/<plugin>/plugin.xml in directory order. A plugin
// that fails to parse is logged and skipped so one broken plugin does not
// hide the others. A missing dir yields no plugins.
func LoadDir(dir string, logger *slog.Logger) ([]*Plugin, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plugins dir: %w", err)
	}

	var plugins []*Plugin
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), ManifestFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		p, err := Load(path)
		if err != nil {
			logger.Warn("skipping plugin", "path", path, "error", err)
			continue
		}
		logger.Debug("loaded plugin", "id", p.ID, "version", p.Version)
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// ConfigFiles gathers the contributions of all plugins for platform, in
// plugin order.
func ConfigFiles(plugins []*Plugin, platform string) []appconfig.ConfigFile {
	var out []appconfig.ConfigFile
	for _, p := range plugins {
		out = append(out, p.ConfigFilesFor(platform)...)
	}
	return out
}
