// Package xmlutil provides an attributed-tree view over XML manifests
// (appxmanifest, config.xml, plugin.xml) backed by etree.
package xmlutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// QName is a namespace-qualified element name. Space holds the prefix as it
// appears in the document (e.g. "uap"), Local the unprefixed name.
type QName struct {
	Space string
	Local string
}

// Name builds an unprefixed QName.
func Name(local string) QName {
	return QName{Local: local}
}

// Prefixed builds a QName carrying a namespace prefix.
func Prefixed(space, local string) QName {
	return QName{Space: space, Local: local}
}

// String renders the qualified form for logs and comparisons.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return q.Space + ":" + q.Local
}

// Of returns the QName of an element.
func Of(el *etree.Element) QName {
	return QName{Space: el.Space, Local: el.Tag}
}

// Tree wraps an etree Document for manipulating an XML manifest.
type Tree struct {
	doc  *etree.Document
	path string
}

// Open reads an XML file from disk. If the file doesn't exist,
// it creates a new document with the specified root element name.
func Open(path, rootElement string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
		doc.CreateElement(rootElement)
		return &Tree{doc: doc, path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	t.path = path
	return t, nil
}

// OpenExisting reads an XML file from disk.
// Returns an error if the file doesn't exist.
func OpenExisting(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	t.path = path
	return t, nil
}

// Parse builds a tree from raw XML. The tree has no backing path until
// SetPath is called.
func Parse(data []byte) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("no root element")
	}
	return &Tree{doc: doc}, nil
}

// Path returns the file the tree was loaded from.
func (t *Tree) Path() string {
	return t.path
}

// SetPath changes where Save writes the tree.
func (t *Tree) SetPath(path string) {
	t.path = path
}

// Root returns the document element.
func (t *Tree) Root() *etree.Element {
	return t.doc.Root()
}

// FindPath resolves a slash-separated path of local names starting at the
// root, e.g. "/Package/Applications/Application". Namespace prefixes are
// ignored so the same path works for uap: and m3: variants.
func (t *Tree) FindPath(path string) *etree.Element {
	parts := splitPath(path)
	root := t.Root()
	if len(parts) == 0 || root == nil || root.Tag != parts[0] {
		return nil
	}
	el := root
	for _, part := range parts[1:] {
		el = FirstChild(el, part)
		if el == nil {
			return nil
		}
	}
	return el
}

// EnsurePath is like FindPath but creates missing unprefixed elements.
func (t *Tree) EnsurePath(path string) (*etree.Element, error) {
	parts := splitPath(path)
	root := t.Root()
	if len(parts) == 0 || root == nil || root.Tag != parts[0] {
		return nil, fmt.Errorf("path %q does not start at root element", path)
	}
	el := root
	for _, part := range parts[1:] {
		next := FirstChild(el, part)
		if next == nil {
			next = NewElement(el, Name(part))
		}
		el = next
	}
	return el, nil
}

// String serializes the tree with two-space indentation.
func (t *Tree) String() (string, error) {
	doc := t.doc.Copy()
	doc.Indent(2)
	return doc.WriteToString()
}

// Save writes the document back to disk with proper indentation.
func (t *Tree) Save() error {
	if t.path == "" {
		return fmt.Errorf("tree has no path")
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	t.doc.Indent(2)
	return t.doc.WriteToFile(t.path)
}

// Copy returns a deep copy detached from the original.
func (t *Tree) Copy() *Tree {
	return &Tree{doc: t.doc.Copy(), path: t.path}
}

// FirstChild returns the first child element with the given local name,
// whatever its prefix.
func FirstChild(parent *etree.Element, local string) *etree.Element {
	for _, c := range parent.ChildElements() {
		if c.Tag == local {
			return c
		}
	}
	return nil
}

// ChildrenByLocal returns all child elements with the given local name.
func ChildrenByLocal(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// NewElement appends a child with the qualified name to parent.
func NewElement(parent *etree.Element, name QName) *etree.Element {
	el := etree.NewElement(name.Local)
	el.Space = name.Space
	parent.AddChild(el)
	return el
}

// RemoveChildren removes every child element with the given local name.
// It returns the number of removed elements.
func RemoveChildren(parent *etree.Element, local string) int {
	removed := 0
	for _, c := range ChildrenByLocal(parent, local) {
		parent.RemoveChild(c)
		removed++
	}
	return removed
}

// Attr returns the value of an attribute and whether it is present.
func Attr(el *etree.Element, key string) (string, bool) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// SetAttr sets an attribute, replacing any existing value.
func SetAttr(el *etree.Element, key, value string) {
	el.CreateAttr(key, value)
}

// RemoveAttr removes an attribute if present.
func RemoveAttr(el *etree.Element, key string) {
	el.RemoveAttr(key)
}

// SetChildText sets the text of the first child with the given local name,
// creating an unprefixed child when none exists.
func SetChildText(parent *etree.Element, local, value string) {
	el := FirstChild(parent, local)
	if el == nil {
		el = NewElement(parent, Name(local))
	}
	el.SetText(value)
}

// DeclaresNamespace reports whether the element declares xmlns:<prefix>.
func DeclaresNamespace(el *etree.Element, prefix string) bool {
	for _, a := range el.Attr {
		if a.Space == "xmlns" && a.Key == prefix {
			return true
		}
	}
	return false
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
