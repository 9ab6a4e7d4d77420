package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

// Read loads a descriptor file and validates its identity fields.
// The parser is chosen by file extension.
func Read(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var cfg *AppConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		cfg, err = ParseXML(data)
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// ParseXML parses a widget config.xml document.
func ParseXML(data []byte) (*AppConfig, error) {
	tree, err := xmlutil.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := tree.Root()
	if root.Tag != "widget" {
		return nil, fmt.Errorf("unexpected root element <%s>, want <widget>", root.Tag)
	}

	cfg := &AppConfig{
		PackageID: root.SelectAttrValue("id", ""),
		Version:   root.SelectAttrValue("version", ""),
		Platforms: make(map[string]*PlatformSection),
	}

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "name":
			cfg.Name = strings.TrimSpace(el.Text())
		case "description":
			cfg.Description = strings.TrimSpace(el.Text())
		case "author":
			cfg.Author = strings.TrimSpace(el.Text())
		case "content":
			cfg.StartPage = el.SelectAttrValue("src", "")
		case "access":
			flags, err := parseRuleFlags(el)
			if err != nil {
				return nil, err
			}
			cfg.AccessRules = append(cfg.AccessRules, AccessRule{
				Origin:    el.SelectAttrValue("origin", ""),
				RuleFlags: flags,
			})
		case "allow-navigation":
			flags, err := parseRuleFlags(el)
			if err != nil {
				return nil, err
			}
			cfg.NavigationRules = append(cfg.NavigationRules, NavigationRule{
				Href:      el.SelectAttrValue("href", ""),
				RuleFlags: flags,
			})
		case "platform":
			name := strings.ToLower(el.SelectAttrValue("name", ""))
			if name == "" {
				continue
			}
			section := cfg.Platforms[name]
			if section == nil {
				section = &PlatformSection{}
				cfg.Platforms[name] = section
			}
			if err := readSection(el, section); err != nil {
				return nil, fmt.Errorf("platform %s: %w", name, err)
			}
		}
	}

	global := PlatformSection{}
	if err := readSection(root, &global); err != nil {
		return nil, err
	}
	cfg.Preferences = global.Preferences
	cfg.Icons = global.Icons
	cfg.SplashScreens = global.SplashScreens
	cfg.ConfigFiles = global.ConfigFiles

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readSection collects the entries that may appear both globally and inside
// a <platform> block.
func readSection(parent *etree.Element, section *PlatformSection) error {
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "preference":
			section.Preferences = append(section.Preferences, Preference{
				Name:  el.SelectAttrValue("name", ""),
				Value: el.SelectAttrValue("value", ""),
			})
		case "icon":
			section.Icons = append(section.Icons, readImage(el))
		case "splash":
			section.SplashScreens = append(section.SplashScreens, readImage(el))
		case "config-file":
			cf, err := ReadConfigFile(el)
			if err != nil {
				return err
			}
			section.ConfigFiles = append(section.ConfigFiles, cf)
		}
	}
	return nil
}

func readImage(el *etree.Element) ImageDescriptor {
	return ImageDescriptor{
		Src:         el.SelectAttrValue("src", ""),
		Target:      el.SelectAttrValue("target", ""),
		Width:       atoi(el.SelectAttrValue("width", "")),
		Height:      atoi(el.SelectAttrValue("height", "")),
		Idiom:       el.SelectAttrValue("idiom", ""),
		Scale:       el.SelectAttrValue("scale", ""),
		WidthClass:  el.SelectAttrValue("width-class", ""),
		HeightClass: el.SelectAttrValue("height-class", ""),
	}
}

// ReadConfigFile reads a <config-file> element, serializing each child as a
// standalone XML fragment.
func ReadConfigFile(el *etree.Element) (ConfigFile, error) {
	cf := ConfigFile{
		Target: el.SelectAttrValue("target", ""),
		Parent: el.SelectAttrValue("parent", ""),
	}
	for _, child := range el.ChildElements() {
		doc := etree.NewDocument()
		doc.SetRoot(child.Copy())
		s, err := doc.WriteToString()
		if err != nil {
			return ConfigFile{}, fmt.Errorf("failed to serialize config-file fragment: %w", err)
		}
		cf.Fragments = append(cf.Fragments, s)
	}
	return cf, nil
}

func parseRuleFlags(el *etree.Element) (RuleFlags, error) {
	var (
		flags RuleFlags
		err   error
	)
	if flags.AllowsArbitraryLoads, err = attrBool(el, "allows-arbitrary-loads"); err != nil {
		return flags, err
	}
	if flags.AllowsArbitraryLoadsInWebContent, err = attrBool(el, "allows-arbitrary-loads-in-web-content"); err != nil {
		return flags, err
	}
	if flags.AllowsArbitraryLoadsForMedia, err = attrBool(el, "allows-arbitrary-loads-for-media"); err != nil {
		return flags, err
	}
	if flags.AllowsLocalNetworking, err = attrBool(el, "allows-local-networking"); err != nil {
		return flags, err
	}
	if flags.AllowsInsecureHTTPLoads, err = attrOptBool(el, "allows-insecure-http-loads"); err != nil {
		return flags, err
	}
	if flags.RequiresForwardSecrecy, err = attrOptBool(el, "requires-forward-secrecy"); err != nil {
		return flags, err
	}
	if flags.RequiresCertificateTransparency, err = attrOptBool(el, "requires-certificate-transparency"); err != nil {
		return flags, err
	}
	flags.MinimumTLSVersion = el.SelectAttrValue("minimum-tls-version", "")
	return flags, nil
}

func attrBool(el *etree.Element, key string) (bool, error) {
	v, err := attrOptBool(el, key)
	if err != nil || v == nil {
		return false, err
	}
	return *v, nil
}

func attrOptBool(el *etree.Element, key string) (*bool, error) {
	raw, ok := xmlutil.Attr(el, key)
	if !ok {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q on <%s>", ErrInvalidPreference, key, raw, el.Tag)
	}
	return &b, nil
}

// atoi returns 0 for missing or malformed sizes; such images are reported
// by the resource mapper rather than failing the read.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
