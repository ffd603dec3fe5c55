package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/teranos/markgen/errors"
)

// Ignore files read while listing a directory. Within one directory
// .ignore wins over .gitignore. .gitignore and .git/info/exclude only
// apply inside a git work tree.
const (
	IgnoreFile    = ".ignore"
	GitIgnoreFile = ".gitignore"
)

// ignoreRules matches names inside one listed directory against the ignore
// files of that directory and its parents.
type ignoreRules struct {
	dir     []string // listed directory below the outermost directory read
	matcher gitignore.Matcher
}

// loadIgnoreRules collects patterns for dir. Parents are read up to the
// root of the enclosing git work tree, or up to the file system root when
// dir is not in one.
func loadIgnoreRules(dir string) (*ignoreRules, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", dir)
	}

	// Ancestors from dir upward.
	var chain []string
	repoRoot := ""
	for d := abs; ; d = filepath.Dir(d) {
		chain = append(chain, d)
		if isGitDir(filepath.Join(d, ".git")) {
			repoRoot = d
			break
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	base := chain[len(chain)-1]

	var patterns []gitignore.Pattern
	if repoRoot != "" {
		ps, err := readPatterns(filepath.Join(repoRoot, ".git", "info", "exclude"), nil)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, ps...)
	}

	// Outermost first, so deeper files take precedence.
	for i := len(chain) - 1; i >= 0; i-- {
		d := chain[i]
		domain := splitPath(base, d)
		ignoreFiles := []string{IgnoreFile}
		if repoRoot != "" {
			ignoreFiles = []string{GitIgnoreFile, IgnoreFile}
		}
		for _, name := range ignoreFiles {
			ps, err := readPatterns(filepath.Join(d, name), domain)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, ps...)
		}
	}

	if len(patterns) == 0 {
		return nil, nil
	}
	return &ignoreRules{dir: splitPath(base, abs), matcher: gitignore.NewMatcher(patterns)}, nil
}

// ignored reports whether the entry name of the listed directory is
// excluded. A nil set ignores nothing.
func (r *ignoreRules) ignored(name string, isDir bool) bool {
	if r == nil {
		return false
	}
	path := append(append([]string(nil), r.dir...), name)
	return r.matcher.Match(path, isDir)
}

// readPatterns parses one ignore file. A missing file has no patterns.
func readPatterns(path string, domain []string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return patterns, nil
}

func isGitDir(path string) bool {
	// A linked work tree or submodule has a .git file instead of a directory.
	_, err := os.Stat(path)
	return err == nil
}

// splitPath returns the components of path below base.
func splitPath(base, path string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
