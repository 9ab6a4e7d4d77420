// Package ios applies an AppConfig to an iOS project: Info.plist keys and
// asset catalog images.
package ios

import (
	"log/slog"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/orientation"
	"codeberg.org/d-buckner/apppack/pkg/plistutil"
)

// Platform is the config platform name for iOS.
const Platform = "ios"

// Info.plist keys written by the adapter.
const (
	keyBundleID             = "CFBundleIdentifier"
	keyDisplayName          = "CFBundleDisplayName"
	keyShortVersion         = "CFBundleShortVersionString"
	keyBundleVersion        = "CFBundleVersion"
	keyOrientations         = "UISupportedInterfaceOrientations"
	keyOrientationsIPad     = "UISupportedInterfaceOrientations~ipad"
	keyInitialOrientation   = "UIInterfaceOrientation"
	keyAppTransportSecurity = "NSAppTransportSecurity"
	bundleVersionPreference = "CFBundleVersion"
)

var rotationKeys = map[string]string{
	orientation.Portrait:         "UIInterfaceOrientationPortrait",
	orientation.PortraitFlipped:  "UIInterfaceOrientationPortraitUpsideDown",
	orientation.Landscape:        "UIInterfaceOrientationLandscapeLeft",
	orientation.LandscapeFlipped: "UIInterfaceOrientationLandscapeRight",
}

// Adapter maps an AppConfig onto an Info.plist.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter creates an Info.plist adapter.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Apply mutates doc toward the state described by cfg. Running it again on
// its own output changes nothing. Configuration errors are returned before
// the document is touched.
func (a *Adapter) Apply(cfg *appconfig.AppConfig, doc *plistutil.Document) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc.Set(keyBundleID, cfg.PackageID)
	doc.Set(keyDisplayName, cfg.Name)

	if version, err := appconfig.ParseVersion(cfg.Version); err == nil && cfg.Version != "" {
		doc.Set(keyShortVersion, version.Short())
		doc.Set(keyBundleVersion, cfg.PreferenceOr(bundleVersionPreference, Platform, bundleVersion(version)))
	}

	a.applyOrientation(cfg, doc)

	if ats := BuildATS(cfg.AccessRules, cfg.NavigationRules); len(ats) > 0 {
		doc.Set(keyAppTransportSecurity, ats)
	} else {
		doc.Delete(keyAppTransportSecurity)
	}

	a.logger.Debug("applied config to Info.plist", "path", doc.Path(), "id", cfg.PackageID)
	return nil
}

func bundleVersion(v appconfig.Version) string {
	if v.Build != 0 {
		return v.Windows()
	}
	return v.Short()
}

// applyOrientation writes the supported orientations, or removes every
// orientation key when the preference is unset.
func (a *Adapter) applyOrientation(cfg *appconfig.AppConfig, doc *plistutil.Document) {
	pref, _ := cfg.Preference(orientation.Preference, Platform)
	rotations, ok := orientation.Expand(pref)
	if !ok {
		doc.Delete(keyOrientations)
		doc.Delete(keyOrientationsIPad)
		doc.Delete(keyInitialOrientation)
		return
	}

	keys := make([]string, 0, len(rotations))
	for _, r := range rotations {
		if k, known := rotationKeys[r]; known {
			keys = append(keys, k)
			continue
		}
		a.logger.Debug("passing through unknown orientation", "value", r)
		keys = append(keys, r)
	}

	doc.SetStrings(keyOrientations, keys)
	doc.SetStrings(keyOrientationsIPad, keys)
	doc.SetStrings(keyInitialOrientation, keys[:1])
}

// SupportedOrientations reads back the orientation override, if any.
func SupportedOrientations(doc *plistutil.Document) ([]string, bool) {
	if _, ok := doc.Get(keyOrientations); !ok {
		return nil, false
	}
	return doc.GetStrings(keyOrientations), true
}
