// Package capability reconciles appxmanifest capability declarations
// contributed by the app config and by plugins.
package capability

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/beevik/etree"

	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

// Element local names allowed under <Capabilities>.
const (
	ElementCapability       = "Capability"
	ElementDeviceCapability = "DeviceCapability"
)

// RestrictedPrefix is the namespace prefix Windows 10 requires for the
// capabilities in restricted.
const RestrictedPrefix = "uap"

// restricted lists capabilities that must carry the uap: prefix in a
// Windows 10 manifest.
var restricted = map[string]bool{
	"documentsLibrary":         true,
	"picturesLibrary":          true,
	"videosLibrary":            true,
	"musicLibrary":             true,
	"enterpriseAuthentication": true,
	"sharedUserCertificates":   true,
	"removableStorage":         true,
	"appointments":             true,
	"contacts":                 true,
	"userAccountInformation":   true,
	"phoneCall":                true,
	"blockedChatMessages":      true,
	"objects3D":                true,
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*$`)

// IsRestricted reports whether name needs the restricted namespace.
func IsRestricted(name string) bool {
	return restricted[name]
}

// Variant selects the namespace rules for a manifest.
type Variant int

const (
	// VariantStandard leaves prefixes as declared (Windows 8.1, Phone 8.1).
	VariantStandard Variant = iota
	// VariantWindows10 moves restricted capabilities into the uap namespace.
	VariantWindows10
)

// Entry is a single capability declaration.
type Entry struct {
	Element xmlutil.QName
	Name    string
}

// New builds an unprefixed <Capability> entry.
func New(name string) Entry {
	return Entry{Element: xmlutil.Name(ElementCapability), Name: name}
}

// Prefix returns the namespace prefix of the element, if any.
func (e Entry) Prefix() string {
	return e.Element.Space
}

func (e Entry) String() string {
	return e.Element.String() + "[" + e.Name + "]"
}

// Warning describes a declaration that was skipped.
type Warning struct {
	Fragment string
	Reason   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Fragment, w.Reason)
}

// ParseFragment parses a single raw XML declaration such as
// <uap:Capability Name="documentsLibrary"/>.
func ParseFragment(raw string) (Entry, error) {
	tree, err := xmlutil.Parse([]byte(raw))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid XML: %w", err)
	}
	return fromElement(tree.Root())
}

// ParseFragments parses every fragment, skipping the ones that fail. A bad
// fragment never prevents the rest from being processed.
func ParseFragments(fragments []string, logger *slog.Logger) ([]Entry, []Warning) {
	var (
		entries  []Entry
		warnings []Warning
	)
	for _, raw := range fragments {
		e, err := ParseFragment(raw)
		if err != nil {
			w := Warning{Fragment: raw, Reason: err.Error()}
			warnings = append(warnings, w)
			logger.Warn("skipping capability declaration", "fragment", raw, "reason", w.Reason)
			continue
		}
		entries = append(entries, e)
	}
	return entries, warnings
}

// FromElements reads the declarations currently under a <Capabilities>
// element. Unparseable children are reported and skipped.
func FromElements(parent *etree.Element, logger *slog.Logger) ([]Entry, []Warning) {
	var (
		entries  []Entry
		warnings []Warning
	)
	for _, el := range parent.ChildElements() {
		e, err := fromElement(el)
		if err != nil {
			w := Warning{Fragment: xmlutil.Of(el).String(), Reason: err.Error()}
			warnings = append(warnings, w)
			logger.Warn("skipping existing capability", "element", w.Fragment, "reason", w.Reason)
			continue
		}
		entries = append(entries, e)
	}
	return entries, warnings
}

func fromElement(el *etree.Element) (Entry, error) {
	if el.Tag != ElementCapability && el.Tag != ElementDeviceCapability {
		return Entry{}, fmt.Errorf("unexpected element <%s>", xmlutil.Of(el))
	}
	name, ok := xmlutil.Attr(el, "Name")
	if !ok {
		return Entry{}, fmt.Errorf("missing Name attribute")
	}
	if !namePattern.MatchString(name) {
		return Entry{}, fmt.Errorf("invalid capability name %q", name)
	}
	return Entry{Element: xmlutil.Of(el), Name: name}, nil
}

// Reconcile merges existing and added declarations, drops removed names and
// returns one entry per distinct name sorted by name.
//
// Duplicates are matched on Name alone. The first occurrence keeps its
// position; if a later duplicate carries a prefix and the kept one does not,
// the prefix is adopted. A removal purges every prefix variant of the name.
func Reconcile(existing, add, remove []Entry, variant Variant) []Entry {
	removed := make(map[string]bool, len(remove))
	for _, r := range remove {
		removed[r.Name] = true
	}

	index := make(map[string]int)
	var out []Entry
	for _, e := range append(append([]Entry(nil), existing...), add...) {
		if removed[e.Name] {
			continue
		}
		if variant == VariantWindows10 {
			e = qualify(e)
		}
		if i, seen := index[e.Name]; seen {
			if out[i].Element.Space == "" && e.Element.Space != "" {
				out[i].Element.Space = e.Element.Space
			}
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// qualify moves a restricted <Capability> into the uap namespace. Entries
// already carrying the prefix are returned unchanged.
func qualify(e Entry) Entry {
	if e.Element.Local != ElementCapability || !IsRestricted(e.Name) {
		return e
	}
	if e.Element.Space == RestrictedPrefix {
		return e
	}
	e.Element = xmlutil.Prefixed(RestrictedPrefix, ElementCapability)
	return e
}

// WriteElements replaces the children of a <Capabilities> element.
// The schema requires every Capability form before DeviceCapability, so
// the entries are written in two groups, each keeping the given order.
func WriteElements(parent *etree.Element, entries []Entry) {
	for _, c := range parent.ChildElements() {
		parent.RemoveChild(c)
	}

	write := func(device bool) {
		for _, e := range entries {
			if (e.Element.Local == ElementDeviceCapability) != device {
				continue
			}
			el := xmlutil.NewElement(parent, e.Element)
			xmlutil.SetAttr(el, "Name", e.Name)
		}
	}
	write(false)
	write(true)
}
