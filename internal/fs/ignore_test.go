package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	m := NewIgnoreMatcher([]string{"", "  ", "# editor files", "*.swp", " cache/*.bin ", "build/", "/TODO", "[", "/"})

	want := []ignoreRule{
		{glob: "*.swp"},
		{glob: "cache/*.bin", anchored: true},
		{glob: "build", dirOnly: true},
		{glob: "TODO", anchored: true},
	}
	if len(m.rules) != len(want) {
		t.Fatalf("rules = %+v, want %+v", m.rules, want)
	}
	for i := range want {
		if m.rules[i] != want[i] {
			t.Errorf("rules[%d] = %+v, want %+v", i, m.rules[i], want[i])
		}
	}
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		rel      string
		isDir    bool
		want     bool
	}{
		{name: "ignore file in root", patterns: defaultIgnorePatterns, rel: IgnoreFileName, want: true},
		{name: "ignore file name in subdirectory", patterns: defaultIgnorePatterns, rel: "sub/" + IgnoreFileName, want: true},
		{name: "name glob at depth", patterns: []string{"*.swp"}, rel: "a/b/notes.swp", want: true},
		{name: "name glob other extension", patterns: []string{"*.swp"}, rel: "notes.txt", want: false},
		{name: "directory by name", patterns: []string{".git"}, rel: "repo/.git", isDir: true, want: true},
		{name: "path glob", patterns: []string{"cache/*.bin"}, rel: "cache/x.bin", want: true},
		{name: "path glob anchored at root", patterns: []string{"cache/*.bin"}, rel: "sub/cache/x.bin", want: false},
		{name: "leading slash anchors a name", patterns: []string{"/TODO"}, rel: "TODO", want: true},
		{name: "leading slash skips deeper names", patterns: []string{"/TODO"}, rel: "docs/TODO", want: false},
		{name: "dir-only pattern matches directory", patterns: []string{"build/"}, rel: "build", isDir: true, want: true},
		{name: "dir-only pattern matches nested directory", patterns: []string{"build/"}, rel: "sub/build", isDir: true, want: true},
		{name: "dir-only pattern skips file", patterns: []string{"build/"}, rel: "build", want: false},
		{name: "anchored dir-only pattern", patterns: []string{"/out/"}, rel: "sub/out", isDir: true, want: false},
		{name: "character class", patterns: []string{"*.[oa]"}, rel: "lib.a", want: true},
		{name: "malformed pattern is dropped", patterns: []string{"[", "*.tmp"}, rel: "x.tmp", want: true},
		{name: "no patterns", patterns: nil, rel: "anything", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewIgnoreMatcher(tt.patterns).Match(tt.rel, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestReadIgnoreFile(t *testing.T) {
	t.Run("returns raw lines", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		content := "*.swp\n# comment\n\ncache/*.bin\n"
		if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(content), 0644); err != nil {
			t.Fatalf("writing ignore file: %v", err)
		}

		lines, err := readIgnoreFile(root)
		if err != nil {
			t.Fatalf("readIgnoreFile() error = %v", err)
		}
		if len(lines) != 4 {
			t.Fatalf("len(lines) = %d, want 4", len(lines))
		}
		if n := len(NewIgnoreMatcher(lines).rules); n != 2 {
			t.Errorf("parsed rules = %d, want 2", n)
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Parallel()
		lines, err := readIgnoreFile(t.TempDir())
		if err != nil {
			t.Fatalf("readIgnoreFile() error = %v", err)
		}
		if lines != nil {
			t.Errorf("lines = %v, want nil", lines)
		}
	})
}
