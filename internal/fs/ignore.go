package fs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// defaultIgnorePatterns apply under every root before config and ignore file rules.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignoreRule is one parsed line of an ignore list.
//
//	*.tmp       any entry whose name matches, at any depth
//	cache/*.bin a path relative to the root (any '/' anchors the rule)
//	/notes.txt  anchored at the root
//	build/      directories only
type ignoreRule struct {
	glob     string
	anchored bool
	dirOnly  bool
}

func parseIgnoreRule(line string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var r ignoreRule
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if line == "" {
		return ignoreRule{}, false
	}
	if strings.Contains(line, "/") {
		r.anchored = true
	}
	// A glob that path.Match cannot compile would never match anything.
	if _, err := path.Match(line, ""); err != nil {
		return ignoreRule{}, false
	}
	r.glob = line
	return r, true
}

func (r ignoreRule) match(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	name := rel
	if !r.anchored {
		name = path.Base(rel)
	}
	ok, _ := path.Match(r.glob, name)
	return ok
}

// IgnoreMatcher decides which entries under a scanned root are skipped.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses raw ignore lines. Blank lines, '#' comments and
// malformed globs are dropped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		if r, ok := parseIgnoreRule(line); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// Match reports whether the entry at rel is ignored. rel is the
// slash-separated path relative to the root, as produced by Path.RelativeTo.
func (m *IgnoreMatcher) Match(rel string, isDir bool) bool {
	for _, r := range m.rules {
		if r.match(rel, isDir) {
			return true
		}
	}
	return false
}

// readIgnoreFile returns the lines of root's ignore file, or nil if it has none.
func readIgnoreFile(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", IgnoreFileName, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", IgnoreFileName, err)
	}
	return lines, nil
}
