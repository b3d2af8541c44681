package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Generate builds the CLI and runs the full pipeline for query.
func Generate(query string) error {
	mg.Deps(Build, Init)
	return sh.RunV("./bin/leadify", "generate", query)
}

// Export writes the latest saved run to quora_leads.xlsx.
func Export() error {
	mg.Deps(Build)
	return sh.RunV("./bin/leadify", "leads", "export", "--output", "quora_leads.xlsx")
}
