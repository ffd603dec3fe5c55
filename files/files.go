// Package files lists source directories and writes generated output.
package files

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
)

// Entry is one file found directly inside a directory.
type Entry struct {
	Path string // dir joined with Name
	Name string
	Stem string // Name without its last extension
}

// ListFiles returns the regular files directly inside dir, sorted by name.
// Hidden entries (leading dot), subdirectories and files excluded by
// .ignore or .gitignore rules are skipped. Symlinks are followed.
func ListFiles(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}
	rules, err := loadIgnoreRules(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		mode := de.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to follow %s", path)
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			continue
		}
		if rules.ignored(name, false) {
			logger.ComponentLogger("files").Debugw("Skipping ignored file", logger.FieldPath, path)
			continue
		}

		entries = append(entries, Entry{
			Path: path,
			Name: name,
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}
	return entries, nil
}

// EnsureDestination creates the parent directory of path when createDirs
// is set.
func EnsureDestination(path string, createDirs bool) error {
	if !createDirs {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	return nil
}

// Write stores content at dest. With onlyIfChanged, a destination that
// already holds exactly content is left untouched so its modification time
// does not change. It reports whether the file was written.
func Write(dest string, content []byte, onlyIfChanged bool) (bool, error) {
	if onlyIfChanged {
		existing, err := os.ReadFile(dest)
		if err == nil && bytes.Equal(existing, content) {
			logger.ComponentLogger("files").Debugw("Skipped unchanged file", logger.FieldDest, dest)
			return false, nil
		}
	}

	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", dest)
	}
	return true, nil
}

// Status is the result of comparing generated output with a file on disk.
type Status int

const (
	UpToDate Status = iota
	OutOfDate
	Missing
)

func (s Status) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case OutOfDate:
		return "out of date"
	case Missing:
		return "missing"
	}
	return "unknown"
}

// Comparison describes how a destination differs from fresh output.
type Comparison struct {
	Dest   string
	Status Status
	// Line is the first differing line (1-based) when OutOfDate.
	Line int
}

// Compare checks dest against freshly generated content without writing.
func Compare(dest string, content []byte) (Comparison, error) {
	existing, err := os.ReadFile(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return Comparison{Dest: dest, Status: Missing}, nil
	}
	if err != nil {
		return Comparison{}, errors.Wrapf(err, "failed to read %s", dest)
	}
	if bytes.Equal(existing, content) {
		return Comparison{Dest: dest, Status: UpToDate}, nil
	}
	return Comparison{Dest: dest, Status: OutOfDate, Line: firstDifference(existing, content)}, nil
}

// firstDifference returns the 1-based number of the first line that
// differs between a and b.
func firstDifference(a, b []byte) int {
	sa := bufio.NewScanner(bytes.NewReader(a))
	sb := bufio.NewScanner(bytes.NewReader(b))
	sa.Buffer(nil, len(a)+1)
	sb.Buffer(nil, len(b)+1)

	line := 1
	for {
		okA, okB := sa.Scan(), sb.Scan()
		if !okA || !okB {
			return line
		}
		if sa.Text() != sb.Text() {
			return line
		}
		line++
	}
}
