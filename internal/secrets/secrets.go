// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: firecrawl-api-key, groq-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Key file names understood by the CLI.
const (
	FirecrawlKey = "firecrawl-api-key"
	GroqKey      = "groq-api-key"
)

// Set maps key file names to their trimmed contents.
type Set map[string]string

// Get returns the value for key, or "" when absent.
func (s Set) Get(key string) string {
	return s[key]
}

// Or returns explicit when it is non-blank, otherwise the stored value for key.
func (s Set) Or(key, explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return s[key]
}

// Load reads all files in dir and returns a Set of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty Set.
// Unreadable files are logged and skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
