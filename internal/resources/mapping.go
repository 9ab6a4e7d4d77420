// Package resources computes icon and splash-screen file mappings for
// generated native projects. Mappers never touch the filesystem directly;
// sibling lookups and sizes come from a FileIndex.
package resources

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxSplashBytes is the size above which a splash image is skipped.
const DefaultMaxSplashBytes int64 = 200 * 1024

// Mapping maps destination paths, relative to a platform resource root, to
// source paths. An empty source marks the destination for deletion.
type Mapping map[string]string

// Keys returns the destinations in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clean returns a mapping with the same destinations and every source
// cleared, instructing the updater to delete what a build would create.
func (m Mapping) Clean() Mapping {
	out := make(Mapping, len(m))
	for k := range m {
		out[k] = ""
	}
	return out
}

// Merge copies other into m. Existing destinations are kept.
func (m Mapping) Merge(other Mapping) {
	for k, v := range other {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
}

// Warning describes an image that was skipped.
type Warning struct {
	Src    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Src, w.Reason)
}

// Result is the outcome of a mapping pass.
type Result struct {
	Mapping  Mapping
	Warnings []Warning
}

func newResult() Result {
	return Result{Mapping: make(Mapping)}
}

// Merge combines two results.
func (r *Result) Merge(other Result) {
	r.Mapping.Merge(other.Mapping)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// FileIndex answers questions about files in the source resource tree.
// Paths use forward slashes and are relative to the project root.
type FileIndex interface {
	// List returns the base names of the regular files in dir.
	List(dir string) ([]string, error)
	// Size returns the size of a file in bytes.
	Size(p string) (int64, error)
}

// OSIndex reads the real filesystem below Root.
type OSIndex struct {
	Root string
}

func (x OSIndex) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(x.Root, filepath.FromSlash(dir)))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (x OSIndex) Size(p string) (int64, error) {
	info, err := os.Stat(filepath.Join(x.Root, filepath.FromSlash(p)))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// MapIndex is an in-memory index of path to size.
type MapIndex map[string]int64

func (x MapIndex) List(dir string) ([]string, error) {
	dir = path.Clean(dir)
	var names []string
	for p := range x {
		if path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	if len(names) == 0 {
		return nil, os.ErrNotExist
	}
	sort.Strings(names)
	return names, nil
}

func (x MapIndex) Size(p string) (int64, error) {
	size, ok := x[path.Clean(p)]
	if !ok {
		return 0, os.ErrNotExist
	}
	return size, nil
}

// Mapper computes mappings for one prepare run.
type Mapper struct {
	index          FileIndex
	logger         *slog.Logger
	maxSplashBytes int64
}

// NewMapper creates a mapper. A non-positive maxSplashBytes selects
// DefaultMaxSplashBytes.
func NewMapper(index FileIndex, maxSplashBytes int64, logger *slog.Logger) *Mapper {
	if maxSplashBytes <= 0 {
		maxSplashBytes = DefaultMaxSplashBytes
	}
	return &Mapper{index: index, logger: logger, maxSplashBytes: maxSplashBytes}
}

func (m *Mapper) warn(r *Result, src, reason string) {
	r.Warnings = append(r.Warnings, Warning{Src: src, Reason: reason})
	m.logger.Warn("skipping image", "src", src, "reason", reason)
}

// sizeSlot is a destination file that requires an exact pixel size.
type sizeSlot struct {
	Dest   string
	Width  int
	Height int
}

// family copies every qualified variant of src (same base name and extension,
// optionally followed by ".qualifier" parts) to destDir/target<suffix>.
func (m *Mapper) family(r *Result, src, target, destDir string) {
	dir := path.Dir(src)
	ext := path.Ext(src)
	base := strings.TrimSuffix(path.Base(src), ext)

	names, err := m.index.List(dir)
	if err != nil {
		m.warn(r, src, fmt.Sprintf("cannot list %s: %v", dir, err))
		return
	}

	found := false
	for _, name := range names {
		if !strings.EqualFold(path.Ext(name), ext) {
			continue
		}
		stem := strings.TrimSuffix(name, path.Ext(name))
		if stem != base && !strings.HasPrefix(stem, base+".") {
			continue
		}
		suffix := name[len(base):]
		r.Mapping[path.Join(destDir, target+suffix)] = path.Join(dir, name)
		found = true
	}
	if !found {
		m.warn(r, src, "no files match target "+target)
	}
}
