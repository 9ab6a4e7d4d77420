// Package fileupdate executes resource mappings against a platform directory.
package fileupdate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"codeberg.org/d-buckner/apppack/internal/resources"
)

// Stats counts what an Apply call did.
type Stats struct {
	Copied    int
	Unchanged int
	Deleted   int
}

// Updater copies mapped sources into place and removes cleaned destinations.
type Updater struct {
	logger *slog.Logger
}

// NewUpdater creates an updater.
func NewUpdater(logger *slog.Logger) *Updater {
	return &Updater{logger: logger}
}

// Apply executes mapping. Destinations are resolved under destRoot and
// relative sources under srcRoot. An empty source deletes the destination;
// deleting a file that does not exist is not an error. A copy is skipped when
// the destination already has the same content.
func (u *Updater) Apply(srcRoot, destRoot string, mapping resources.Mapping) (Stats, error) {
	var stats Stats
	for _, dest := range mapping.Keys() {
		destPath := filepath.Join(destRoot, filepath.FromSlash(dest))
		src := mapping[dest]

		if src == "" {
			removed, err := remove(destPath)
			if err != nil {
				return stats, err
			}
			if removed {
				stats.Deleted++
				u.logger.Debug("deleted resource", "dest", dest)
			}
			continue
		}

		srcPath := filepath.FromSlash(src)
		if !filepath.IsAbs(srcPath) {
			srcPath = filepath.Join(srcRoot, srcPath)
		}

		same, err := sameContent(srcPath, destPath)
		if err != nil {
			return stats, err
		}
		if same {
			stats.Unchanged++
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return stats, err
		}
		stats.Copied++
		u.logger.Debug("copied resource", "src", src, "dest", dest)
	}
	return stats, nil
}

func remove(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return true, nil
}

// sameContent compares by size first, then by xxhash digest.
func sameContent(src, dest string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to stat source: %w", err)
	}
	destInfo, err := os.Stat(dest)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat destination: %w", err)
	}
	if srcInfo.Size() != destInfo.Size() {
		return false, nil
	}

	srcSum, err := Checksum(src)
	if err != nil {
		return false, err
	}
	destSum, err := Checksum(dest)
	if err != nil {
		return false, err
	}
	return srcSum == destSum, nil
}

// Checksum returns the xxhash digest of a file.
func Checksum(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return h.Sum64(), nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
