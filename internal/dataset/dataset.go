// Package dataset locates the three files of a Potree dataset on disk.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Discovery errors.
var (
	ErrDirectoryRequired = errors.New("path does not resolve to a directory")
	ErrFileNotFound      = errors.New("dataset file not found")
)

// Filename patterns per file role.
var (
	hierarchyPattern = regexp.MustCompile(`^hierarchy.*\.bin$`)
	octreePattern    = regexp.MustCompile(`^octree.*\.bin$`)
	metadataPattern  = regexp.MustCompile(`^metadata.*\.json$`)
)

// Files names the three files of a dataset. An empty field means the role
// is unresolved.
type Files struct {
	Hierarchy string `yaml:"hierarchy"`
	Octree    string `yaml:"octree"`
	Metadata  string `yaml:"metadata"`
}

// Find scans a dataset directory. A path to a regular file is resolved to
// its parent directory. Roles without a matching file are left empty.
func Find(path string) (Files, error) {
	dir := path
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		dir = filepath.Dir(path)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Files{}, fmt.Errorf("%w: %s", ErrDirectoryRequired, path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Files{}, fmt.Errorf("reading dataset directory: %w", err)
	}

	var files Files
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		full := filepath.Join(dir, name)

		switch {
		case hierarchyPattern.MatchString(name):
			files.Hierarchy = full
		case octreePattern.MatchString(name):
			files.Octree = full
		case metadataPattern.MatchString(name):
			files.Metadata = full
		}
	}
	return files, nil
}

// Merge returns f with every non-empty field of override applied.
func (f Files) Merge(override Files) Files {
	if override.Hierarchy != "" {
		f.Hierarchy = override.Hierarchy
	}
	if override.Octree != "" {
		f.Octree = override.Octree
	}
	if override.Metadata != "" {
		f.Metadata = override.Metadata
	}
	return f
}

// Validate reports unresolved roles.
func (f Files) Validate() error {
	var missing []string
	if f.Hierarchy == "" {
		missing = append(missing, "hierarchy")
	}
	if f.Octree == "" {
		missing = append(missing, "octree")
	}
	if f.Metadata == "" {
		missing = append(missing, "metadata")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// Resolve scans dir (when set), applies explicit paths on top and checks
// that every role is resolved.
func Resolve(dir string, explicit Files) (Files, error) {
	var files Files
	if dir != "" {
		found, err := Find(dir)
		if err != nil {
			return Files{}, err
		}
		files = found
	}

	files = files.Merge(explicit)
	if err := files.Validate(); err != nil {
		return Files{}, err
	}
	return files, nil
}
