// Package orientation expands the symbolic Orientation preference into
// concrete rotation tokens.
package orientation

import "strings"

// Rotation tokens understood by the manifest adapters.
const (
	Portrait         = "portrait"
	PortraitFlipped  = "portraitFlipped"
	Landscape        = "landscape"
	LandscapeFlipped = "landscapeFlipped"
)

// Preference is the name of the config preference driving orientation.
const Preference = "Orientation"

var table = map[string][]string{
	"default":   {Portrait, Landscape, LandscapeFlipped},
	"portrait":  {Portrait},
	"landscape": {Landscape, LandscapeFlipped},
}

// Expand maps a preference value to an ordered list of rotations.
// An empty value returns ok=false, which callers treat as "remove any
// override". Unknown values are split on commas and passed through
// verbatim; they are not checked against a platform vocabulary.
func Expand(pref string) (rotations []string, ok bool) {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return nil, false
	}

	if fixed, found := table[strings.ToLower(pref)]; found {
		return append([]string(nil), fixed...), true
	}

	for _, tok := range strings.Split(pref, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			rotations = append(rotations, tok)
		}
	}
	if len(rotations) == 0 {
		return nil, false
	}
	return rotations, true
}
