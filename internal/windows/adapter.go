// Package windows applies an AppConfig to a Windows project: appxmanifest
// identity, visual elements, content URI rules, capabilities and images.
package windows

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/capability"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/internal/orientation"
	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

// Platform is the config platform name for Windows.
const Platform = "windows"

// Preferences read by the adapter.
const (
	PrefDefaultURIPrefix  = "WindowsDefaultUriPrefix"
	PrefStoreIdentityName = "WindowsStoreIdentityName"
	PrefBackgroundColor   = "BackgroundColor"
)

// Manifest paths, matched by local name.
const (
	pathIdentity       = "/Package/Identity"
	pathProperties     = "/Package/Properties"
	pathApplication    = "/Package/Applications/Application"
	pathVisualElements = "/Package/Applications/Application/VisualElements"
	pathCapabilities   = "/Package/Capabilities"
)

const (
	defaultURIPrefix = "ms-appx://"
	wwwDir           = "www/"
)

var (
	hexColor   = regexp.MustCompile(`^(?:#|0x|0X)?(?:[0-9A-Fa-f]{2})?([0-9A-Fa-f]{6})$`)
	namedColor = regexp.MustCompile(`^[A-Za-z]+$`)
)

// Capabilities are the declarations to merge into a manifest's
// <Capabilities> element.
type Capabilities struct {
	Add    []capability.Entry
	Remove []capability.Entry
}

// Adapter maps an AppConfig onto an appxmanifest tree.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter creates an appxmanifest adapter.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// settings are the config-derived values, validated before any mutation.
type settings struct {
	identityName string
	version      string
	startPage    string
	background   string
	rotations    []string
	hasRotations bool
	contentRules []string
}

func (a *Adapter) resolve(cfg *appconfig.AppConfig) (settings, error) {
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	s := settings{
		identityName: cfg.PreferenceOr(PrefStoreIdentityName, Platform, cfg.PackageID),
		startPage:    StartPage(cfg.PreferenceOr(PrefDefaultURIPrefix, Platform, defaultURIPrefix), cfg.Start()),
	}

	if cfg.Version != "" {
		v, err := appconfig.ParseVersion(cfg.Version)
		if err != nil {
			return settings{}, err
		}
		s.version = v.Windows()
	}

	if raw, ok := cfg.Preference(PrefBackgroundColor, Platform); ok && raw != "" {
		color, err := NormalizeColor(raw)
		if err != nil {
			return settings{}, err
		}
		s.background = color
	}

	pref, _ := cfg.Preference(orientation.Preference, Platform)
	s.rotations, s.hasRotations = orientation.Expand(pref)

	for _, r := range cfg.NavigationRules {
		if rule, ok := contentURIRule(r.Href); ok {
			s.contentRules = append(s.contentRules, rule)
		}
	}
	return s, nil
}

// Apply mutates the manifest toward the state described by cfg and merges
// caps into its capabilities. Running it again on its own output changes
// nothing. Configuration errors are returned before the tree is touched;
// capability declarations that cannot be read are returned as warnings.
func (a *Adapter) Apply(cfg *appconfig.AppConfig, m *manifest.Manifest, caps Capabilities) ([]capability.Warning, error) {
	if !m.Format.IsWindows() || m.XML == nil {
		return nil, fmt.Errorf("not an appx manifest (%s)", m.Format)
	}
	s, err := a.resolve(cfg)
	if err != nil {
		return nil, err
	}

	tree := m.XML
	if err := a.applyIdentity(tree, cfg, s); err != nil {
		return nil, err
	}

	app := tree.FindPath(pathApplication)
	if app == nil {
		return nil, fmt.Errorf("%s: no Application element", m.Path())
	}
	xmlutil.SetAttr(app, "StartPage", s.startPage)

	if ve := tree.FindPath(pathVisualElements); ve != nil {
		applyVisualElements(ve, cfg, s)
		applyRotation(ve, s)
	} else {
		a.logger.Warn("manifest has no VisualElements", "path", m.Path())
	}

	applyContentRules(app, m.Format, s.contentRules)

	warnings, err := a.applyCapabilities(tree, m.Format, caps)
	if err != nil {
		return warnings, err
	}

	a.logger.Debug("applied config to appxmanifest", "path", m.Path(), "format", m.Format)
	return warnings, nil
}

func (a *Adapter) applyIdentity(tree *xmlutil.Tree, cfg *appconfig.AppConfig, s settings) error {
	identity, err := tree.EnsurePath(pathIdentity)
	if err != nil {
		return err
	}
	xmlutil.SetAttr(identity, "Name", s.identityName)
	if s.version != "" {
		xmlutil.SetAttr(identity, "Version", s.version)
	}

	props, err := tree.EnsurePath(pathProperties)
	if err != nil {
		return err
	}
	xmlutil.SetChildText(props, "DisplayName", cfg.Name)
	if cfg.Author != "" {
		xmlutil.SetChildText(props, "PublisherDisplayName", cfg.Author)
	}
	return nil
}

func applyVisualElements(ve *etree.Element, cfg *appconfig.AppConfig, s settings) {
	xmlutil.SetAttr(ve, "DisplayName", cfg.Name)

	description := cfg.Description
	if description == "" {
		description = cfg.Name
	}
	xmlutil.SetAttr(ve, "Description", description)

	if s.background != "" {
		xmlutil.SetAttr(ve, "BackgroundColor", s.background)
	}
}

// applyRotation rewrites <InitialRotationPreference> in the namespace of its
// VisualElements parent, or removes it when no orientation is set.
func applyRotation(ve *etree.Element, s settings) {
	if !s.hasRotations {
		xmlutil.RemoveChildren(ve, "InitialRotationPreference")
		return
	}

	space := xmlutil.Of(ve).Space
	pref := xmlutil.FirstChild(ve, "InitialRotationPreference")
	if pref == nil {
		pref = xmlutil.NewElement(ve, xmlutil.Prefixed(space, "InitialRotationPreference"))
	}
	xmlutil.RemoveChildren(pref, "Rotation")
	for _, r := range s.rotations {
		rot := xmlutil.NewElement(pref, xmlutil.Prefixed(space, "Rotation"))
		xmlutil.SetAttr(rot, "Preference", r)
	}
}

// Rotations reads back the rotation preferences of a manifest, if any.
func Rotations(tree *xmlutil.Tree) ([]string, bool) {
	ve := tree.FindPath(pathVisualElements)
	if ve == nil {
		return nil, false
	}
	pref := xmlutil.FirstChild(ve, "InitialRotationPreference")
	if pref == nil {
		return nil, false
	}
	var out []string
	for _, rot := range xmlutil.ChildrenByLocal(pref, "Rotation") {
		v, _ := xmlutil.Attr(rot, "Preference")
		out = append(out, v)
	}
	return out, true
}

func applyContentRules(app *etree.Element, format manifest.Format, rules []string) {
	if len(rules) == 0 {
		xmlutil.RemoveChildren(app, "ApplicationContentUriRules")
		return
	}

	space := ""
	if format == manifest.FormatWindows10 {
		space = capability.RestrictedPrefix
	}
	el := xmlutil.FirstChild(app, "ApplicationContentUriRules")
	if el == nil {
		el = xmlutil.NewElement(app, xmlutil.Prefixed(space, "ApplicationContentUriRules"))
	}
	xmlutil.RemoveChildren(el, "Rule")
	for _, match := range rules {
		rule := xmlutil.NewElement(el, xmlutil.Prefixed(space, "Rule"))
		xmlutil.SetAttr(rule, "Match", match)
		xmlutil.SetAttr(rule, "Type", "include")
		if format == manifest.FormatWindows10 {
			xmlutil.SetAttr(rule, "WindowsRuntimeAccess", "all")
		}
	}
}

func (a *Adapter) applyCapabilities(tree *xmlutil.Tree, format manifest.Format, caps Capabilities) ([]capability.Warning, error) {
	parent := tree.FindPath(pathCapabilities)
	if parent == nil {
		if len(caps.Add) == 0 {
			return nil, nil
		}
		var err error
		if parent, err = tree.EnsurePath(pathCapabilities); err != nil {
			return nil, err
		}
	}

	existing, warnings := capability.FromElements(parent, a.logger)

	variant := capability.VariantStandard
	if format == manifest.FormatWindows10 {
		variant = capability.VariantWindows10
	}
	capability.WriteElements(parent, capability.Reconcile(existing, caps.Add, caps.Remove, variant))
	return warnings, nil
}

// StartPage builds the Application StartPage attribute. The default
// ms-appx:// scheme uses a package-relative path; any other prefix yields an
// absolute URI.
func StartPage(prefix, start string) string {
	start = strings.TrimPrefix(start, "/")
	if strings.Contains(start, "://") {
		return start
	}
	if prefix == "" || prefix == defaultURIPrefix {
		return wwwDir + start
	}
	return strings.TrimSuffix(prefix, "/") + "/" + wwwDir + start
}

// NormalizeColor validates a BackgroundColor preference. Hex values
// (#RRGGBB, 0xRRGGBB or 0xAARRGGBB) become #RRGGBB; color names pass
// through.
func NormalizeColor(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := hexColor.FindStringSubmatch(raw); m != nil {
		return "#" + strings.ToUpper(m[1]), nil
	}
	if namedColor.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("%w: %s=%q", appconfig.ErrInvalidPreference, PrefBackgroundColor, raw)
}

// contentURIRule turns an allow-navigation href into a content URI match.
// Only https origins can be granted content access.
func contentURIRule(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "*" {
		return "https://*", true
	}
	u, err := url.Parse(strings.Replace(href, "*", "wildcard", -1))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", false
	}
	return href, true
}
