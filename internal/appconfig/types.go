// Package appconfig reads platform-agnostic app descriptors (widget config.xml
// or app.yaml) into a normalized AppConfig.
package appconfig

import (
	"errors"
	"strings"
)

var (
	// ErrMissingName is returned when the descriptor has no app name.
	ErrMissingName = errors.New("app name is required")
	// ErrMissingPackageID is returned when the descriptor has no package id.
	ErrMissingPackageID = errors.New("package id is required")
	// ErrMalformedVersion is returned for version strings that cannot be mapped
	// onto a four-part platform version.
	ErrMalformedVersion = errors.New("malformed version")
	// ErrUnknownFormat is returned when the descriptor extension is not supported.
	ErrUnknownFormat = errors.New("unknown descriptor format")
	// ErrInvalidPreference is returned when a preference value cannot be parsed.
	ErrInvalidPreference = errors.New("invalid preference value")
)

// DefaultStartPage is used when the descriptor has no content element.
const DefaultStartPage = "index.html"

// Preference is a single named preference. Names compare case-insensitively.
type Preference struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// RuleFlags are the per-origin transport switches shared by access and
// navigation rules. Nil pointers and empty strings mean "unset": the platform
// default applies, which is different from an explicit false.
type RuleFlags struct {
	AllowsArbitraryLoads             bool   `yaml:"allowsArbitraryLoads,omitempty" json:"allowsArbitraryLoads,omitempty"`
	AllowsArbitraryLoadsInWebContent bool   `yaml:"allowsArbitraryLoadsInWebContent,omitempty" json:"allowsArbitraryLoadsInWebContent,omitempty"`
	AllowsArbitraryLoadsForMedia     bool   `yaml:"allowsArbitraryLoadsForMedia,omitempty" json:"allowsArbitraryLoadsForMedia,omitempty"`
	AllowsLocalNetworking            bool   `yaml:"allowsLocalNetworking,omitempty" json:"allowsLocalNetworking,omitempty"`
	AllowsInsecureHTTPLoads          *bool  `yaml:"allowsInsecureHTTPLoads,omitempty" json:"allowsInsecureHTTPLoads,omitempty"`
	MinimumTLSVersion                string `yaml:"minimumTLSVersion,omitempty" json:"minimumTLSVersion,omitempty"`
	RequiresForwardSecrecy           *bool  `yaml:"requiresForwardSecrecy,omitempty" json:"requiresForwardSecrecy,omitempty"`
	RequiresCertificateTransparency  *bool  `yaml:"requiresCertificateTransparency,omitempty" json:"requiresCertificateTransparency,omitempty"`
}

// AccessRule is an <access origin> entry.
type AccessRule struct {
	Origin    string `yaml:"origin" json:"origin"`
	RuleFlags `yaml:",inline"`
}

// NavigationRule is an <allow-navigation href> entry.
type NavigationRule struct {
	Href      string `yaml:"href" json:"href"`
	RuleFlags `yaml:",inline"`
}

// ImageDescriptor describes an icon or splash image. A descriptor resolves to a
// destination either through Target or through Width/Height.
type ImageDescriptor struct {
	Src         string `yaml:"src" json:"src"`
	Target      string `yaml:"target,omitempty" json:"target,omitempty"`
	Width       int    `yaml:"width,omitempty" json:"width,omitempty"`
	Height      int    `yaml:"height,omitempty" json:"height,omitempty"`
	Idiom       string `yaml:"idiom,omitempty" json:"idiom,omitempty"`
	Scale       string `yaml:"scale,omitempty" json:"scale,omitempty"`
	WidthClass  string `yaml:"widthClass,omitempty" json:"widthClass,omitempty"`
	HeightClass string `yaml:"heightClass,omitempty" json:"heightClass,omitempty"`
}

// HasSize reports whether both dimensions are present.
func (d ImageDescriptor) HasSize() bool {
	return d.Width > 0 && d.Height > 0
}

// ConfigFile is a raw manifest merge block: XML fragments to be placed under
// Parent in the manifest identified by Target.
type ConfigFile struct {
	Target    string   `yaml:"target" json:"target"`
	Parent    string   `yaml:"parent" json:"parent"`
	Fragments []string `yaml:"xml" json:"xml"`
}

// PlatformSection holds entries scoped to a single platform.
type PlatformSection struct {
	Preferences   []Preference      `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	Icons         []ImageDescriptor `yaml:"icons,omitempty" json:"icons,omitempty"`
	SplashScreens []ImageDescriptor `yaml:"splashes,omitempty" json:"splashes,omitempty"`
	ConfigFiles   []ConfigFile      `yaml:"configFiles,omitempty" json:"configFiles,omitempty"`
}

// AppConfig is the normalized descriptor. It is built once per prepare
// invocation and treated as read-only afterwards.
type AppConfig struct {
	Name            string                      `yaml:"name" json:"name"`
	PackageID       string                      `yaml:"id" json:"id"`
	Version         string                      `yaml:"version,omitempty" json:"version,omitempty"`
	Author          string                      `yaml:"author,omitempty" json:"author,omitempty"`
	Description     string                      `yaml:"description,omitempty" json:"description,omitempty"`
	StartPage       string                      `yaml:"content,omitempty" json:"content,omitempty"`
	Preferences     []Preference                `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	AccessRules     []AccessRule                `yaml:"access,omitempty" json:"access,omitempty"`
	NavigationRules []NavigationRule            `yaml:"allowNavigation,omitempty" json:"allowNavigation,omitempty"`
	Icons           []ImageDescriptor           `yaml:"icons,omitempty" json:"icons,omitempty"`
	SplashScreens   []ImageDescriptor           `yaml:"splashes,omitempty" json:"splashes,omitempty"`
	ConfigFiles     []ConfigFile                `yaml:"configFiles,omitempty" json:"configFiles,omitempty"`
	Platforms       map[string]*PlatformSection `yaml:"platforms,omitempty" json:"platforms,omitempty"`
}

// Validate checks the identity fields and the version string.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.PackageID) == "" {
		return ErrMissingPackageID
	}
	if c.Version != "" {
		if _, err := ParseVersion(c.Version); err != nil {
			return err
		}
	}
	return nil
}

// Start returns the start page, defaulting to index.html.
func (c *AppConfig) Start() string {
	if c.StartPage == "" {
		return DefaultStartPage
	}
	return c.StartPage
}

// Preference looks up a preference by name, case-insensitively. Global
// preferences are consulted before the platform's, and the last matching
// entry wins, so a platform value overrides a global one.
func (c *AppConfig) Preference(name, platform string) (string, bool) {
	var (
		value string
		found bool
	)
	scan := func(prefs []Preference) {
		for _, p := range prefs {
			if strings.EqualFold(p.Name, name) {
				value, found = p.Value, true
			}
		}
	}

	scan(c.Preferences)
	if s := c.platform(platform); s != nil {
		scan(s.Preferences)
	}
	return value, found
}

// PreferenceOr returns the preference value or def when it is unset or empty.
func (c *AppConfig) PreferenceOr(name, platform, def string) string {
	if v, ok := c.Preference(name, platform); ok && v != "" {
		return v
	}
	return def
}

// IconsFor returns global icons followed by the platform's icons.
func (c *AppConfig) IconsFor(platform string) []ImageDescriptor {
	out := append([]ImageDescriptor(nil), c.Icons...)
	if s := c.platform(platform); s != nil {
		out = append(out, s.Icons...)
	}
	return out
}

// SplashScreensFor returns global splash screens followed by the platform's.
func (c *AppConfig) SplashScreensFor(platform string) []ImageDescriptor {
	out := append([]ImageDescriptor(nil), c.SplashScreens...)
	if s := c.platform(platform); s != nil {
		out = append(out, s.SplashScreens...)
	}
	return out
}

// ConfigFilesFor returns global config-file blocks followed by the platform's.
func (c *AppConfig) ConfigFilesFor(platform string) []ConfigFile {
	out := append([]ConfigFile(nil), c.ConfigFiles...)
	if s := c.platform(platform); s != nil {
		out = append(out, s.ConfigFiles...)
	}
	return out
}

func (c *AppConfig) platform(name string) *PlatformSection {
	if name == "" || c.Platforms == nil {
		return nil
	}
	return c.Platforms[strings.ToLower(name)]
}
