package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCountGoLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() {}\n   \n")
	writeFile(t, filepath.Join(root, "sub", "b.go"), "package sub\nvar B = 1")
	writeFile(t, filepath.Join(root, "sub", "b_test.go"), "package sub\n\nimport \"testing\"\n")
	writeFile(t, filepath.Join(root, "notes.md"), "not go\n")

	prod, test, err := countGoLines(root)
	if err != nil {
		t.Fatal(err)
	}
	if prod != 4 || test != 2 {
		t.Errorf("countGoLines = %d prod, %d test; want 4, 2", prod, test)
	}

	if prod, test, err := countGoLines(filepath.Join(root, "missing")); err != nil || prod != 0 || test != 0 {
		t.Errorf("missing dir: %d %d %v", prod, test, err)
	}
}

func TestCountDocWordsOnlyListedFiles(t *testing.T) {
	root := t.TempDir()
	design := filepath.Join(root, "DESIGN.md")
	writeFile(t, design, "# Design\n\nthree more words\n")
	writeFile(t, filepath.Join(root, "vendor", "OTHER.md"), "these words are not counted at all")

	n, err := countDocWords([]string{design, filepath.Join(root, "README.md")})
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("countDocWords = %d, want 5", n)
	}
}
