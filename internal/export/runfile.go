// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/leadify/pkg/types"
)

// RunFile is the on-disk form of one pipeline run. A run saved to a file can
// be reloaded and imported into the history without calling the services
// again.
type RunFile struct {
	Run     types.RunResult `yaml:"run"`
	Summary Stats           `yaml:"summary"`
}

// WriteRunFile saves res and its summary metrics to a YAML file.
func WriteRunFile(path string, res *types.RunResult) error {
	if res == nil {
		return fmt.Errorf("nil run result")
	}
	rf := RunFile{
		Run:     *res,
		Summary: Summarize(res.Leads),
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk. Lead rows are
// taken as stored; the summary is recomputed by callers that need it.
func ReadRunFile(path string) (*types.RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	if rf.Run.Query == "" {
		return nil, fmt.Errorf("parsing run file %s: missing run.query", path)
	}
	if rf.Run.Leads == nil {
		rf.Run.Leads = []types.LeadRecord{}
	}
	return &rf.Run, nil
}
