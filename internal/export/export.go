// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders lead rows for people and for other tools: a
// terminal table with summary metrics, and XLSX, CSV, JSON or YAML files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/leadify/pkg/types"
)

// Format names an output format.
type Format string

// Supported output formats.
const (
	Table Format = "table"
	XLSX  Format = "xlsx"
	CSV   Format = "csv"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{Table, XLSX, CSV, JSON, YAML}

// ParseFormat resolves a user-supplied format name. Matching ignores case;
// "yml" is accepted for YAML and "excel" for XLSX.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return Table, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, xlsx, csv, json or yaml)", s)
}

// FormatFromPath infers the file format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %q: no file extension", path)
	}
	f, err := ParseFormat(ext)
	if err != nil || f == Table {
		return "", fmt.Errorf("cannot infer format of %q: unsupported extension %q", path, ext)
	}
	return f, nil
}

// Write renders leads to w in format f.
func Write(f Format, w io.Writer, leads []types.LeadRecord) error {
	switch f {
	case Table:
		WriteTable(w, leads)
		return nil
	case XLSX:
		return WriteXLSX(w, leads)
	case CSV:
		return WriteCSV(w, leads)
	case JSON:
		return WriteJSON(w, leads)
	case YAML:
		return WriteYAML(w, leads)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteCSV writes a header row followed by one row per lead.
func WriteCSV(w io.Writer, leads []types.LeadRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.LeadColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, l := range leads {
		if err := cw.Write(l.Strings()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes leads as an indented JSON array.
func WriteJSON(w io.Writer, leads []types.LeadRecord) error {
	if leads == nil {
		leads = []types.LeadRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leads)
}

// WriteYAML writes leads as a YAML sequence.
func WriteYAML(w io.Writer, leads []types.LeadRecord) error {
	if leads == nil {
		leads = []types.LeadRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(leads); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
