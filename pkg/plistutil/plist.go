// Package plistutil provides a mutable dictionary view over property-list files.
package plistutil

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"howett.net/plist"
)

// Document is a top-level plist dictionary.
type Document struct {
	dict map[string]any
	path string
}

// New returns an empty document that will be written to path.
func New(path string) *Document {
	return &Document{dict: make(map[string]any), path: path}
}

// Open reads a plist from disk. A missing file yields an empty document.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	d.path = path
	return d, nil
}

// Parse decodes a plist in any format howett.net/plist understands.
func Parse(data []byte) (*Document, error) {
	dict := make(map[string]any)
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return &Document{dict: dict}, nil
}

// Path returns the file the document is bound to.
func (d *Document) Path() string {
	return d.path
}

// SetPath changes where Save writes the document.
func (d *Document) SetPath(path string) {
	d.path = path
}

// Get returns a top-level value.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.dict[key]
	return v, ok
}

// GetString returns a top-level string value or "".
func (d *Document) GetString(key string) string {
	s, _ := d.dict[key].(string)
	return s
}

// GetStrings returns a top-level array of strings. Non-string items are skipped.
func (d *Document) GetStrings(key string) []string {
	arr, ok := d.dict[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetDict returns a top-level dictionary value.
func (d *Document) GetDict(key string) (map[string]any, bool) {
	m, ok := d.dict[key].(map[string]any)
	return m, ok
}

// Set assigns a top-level value.
func (d *Document) Set(key string, value any) {
	d.dict[key] = value
}

// SetStrings assigns a top-level array of strings.
func (d *Document) SetStrings(key string, values []string) {
	arr := make([]any, len(values))
	for i, v := range values {
		arr[i] = v
	}
	d.dict[key] = arr
}

// Delete removes a top-level key. Deleting an absent key is a no-op.
func (d *Document) Delete(key string) {
	delete(d.dict, key)
}

// Len returns the number of top-level entries.
func (d *Document) Len() int {
	return len(d.dict)
}

// Bytes serializes the document as an XML plist with tab indentation.
func (d *Document) Bytes() ([]byte, error) {
	return plist.MarshalIndent(d.dict, plist.XMLFormat, "\t")
}

// Copy returns a deep copy of the document.
func (d *Document) Copy() (*Document, error) {
	data, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.path = d.path
	return c, nil
}

// Save writes the document to its path.
func (d *Document) Save() error {
	if d.path == "" {
		return fmt.Errorf("document has no path")
	}
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode plist: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(d.path, data, 0644)
}

// ParseValue decodes a single plist value fragment such as
// "<string>x</string>" or "<array>...</array>".
func ParseValue(fragment string) (any, error) {
	doc := `<?xml version="1.0" encoding="UTF-8"?><plist version="1.0">` + fragment + `</plist>`
	var v any
	if _, err := plist.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("failed to parse plist fragment: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("empty plist fragment")
	}
	return v, nil
}

// Merge sets key to value, except that an array merged into an existing
// array appends only the items not already present. Merging the same value
// twice leaves the document unchanged.
func (d *Document) Merge(key string, value any) {
	add, isArr := value.([]any)
	existing, hasArr := d.dict[key].([]any)
	if !isArr || !hasArr {
		d.dict[key] = value
		return
	}

	merged := append([]any(nil), existing...)
	for _, item := range add {
		if !containsValue(merged, item) {
			merged = append(merged, item)
		}
	}
	d.dict[key] = merged
}

func containsValue(items []any, v any) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}
