// Package manifest loads native manifests (appxmanifest XML, Info.plist)
// into mutable trees tagged with their schema format, and caches them.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/d-buckner/apppack/pkg/plistutil"
	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

// Format identifies a manifest schema variant.
type Format int

const (
	FormatUnknown Format = iota
	FormatWindows81
	FormatWindowsPhone81
	FormatWindows10
	FormatPlist
)

func (f Format) String() string {
	switch f {
	case FormatWindows81:
		return "windows81"
	case FormatWindowsPhone81:
		return "windowsphone81"
	case FormatWindows10:
		return "windows10"
	case FormatPlist:
		return "plist"
	default:
		return "unknown"
	}
}

// IsWindows reports whether the format is an appxmanifest variant.
func (f Format) IsWindows() bool {
	return f == FormatWindows81 || f == FormatWindowsPhone81 || f == FormatWindows10
}

// Manifest is a loaded manifest tree. Exactly one of XML and Plist is set.
type Manifest struct {
	Format Format
	XML    *xmlutil.Tree
	Plist  *plistutil.Document
}

// Path returns the file backing the manifest.
func (m *Manifest) Path() string {
	if m.Plist != nil {
		return m.Plist.Path()
	}
	return m.XML.Path()
}

// Save writes the manifest back to its file.
func (m *Manifest) Save() error {
	if m.Plist != nil {
		return m.Plist.Save()
	}
	return m.XML.Save()
}

// Load reads a manifest and resolves its format once.
func Load(path string) (*Manifest, error) {
	if strings.EqualFold(filepath.Ext(path), ".plist") {
		doc, err := plistutil.Open(path)
		if err != nil {
			return nil, err
		}
		return &Manifest{Format: FormatPlist, Plist: doc}, nil
	}

	tree, err := xmlutil.OpenExisting(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	format, err := DetectFormat(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Format: format, XML: tree}, nil
}

// DetectFormat picks the appxmanifest variant from the namespace
// declarations on the root element. It is the only place that sniffs
// namespaces; everything downstream switches on the returned Format.
func DetectFormat(tree *xmlutil.Tree) (Format, error) {
	root := tree.Root()
	if root == nil || root.Tag != "Package" {
		return FormatUnknown, fmt.Errorf("not an appx manifest")
	}

	switch {
	case xmlutil.DeclaresNamespace(root, "uap"):
		return FormatWindows10, nil
	case xmlutil.DeclaresNamespace(root, "m3"):
		return FormatWindowsPhone81, nil
	case xmlutil.DeclaresNamespace(root, "m2"):
		return FormatWindows81, nil
	default:
		return FormatUnknown, fmt.Errorf("unrecognized appx manifest schema")
	}
}
