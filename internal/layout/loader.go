package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"

	"github.com/ossvet/chainverify/internal/verrors"
)

// Load reads and parses a layout file, following the same
// read-file-then-unmarshal shape the rest of this codebase's YAML loaders
// use. Unlike a policy file, a missing layout is always an error: there is
// no sensible default supply-chain policy.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, verrors.Wrap(verrors.IO, path, err)
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, verrors.Wrap(verrors.IO, path, fmt.Errorf("parse layout: %w", err))
	}

	if err := expandCommandLines(&l); err != nil {
		return nil, err
	}

	return &l, nil
}

// expandCommandLines tokenizes any step/inspection authored with a single
// shell-string command_line/run_line convenience field instead of a
// pre-split argv list, using the same word-splitting a shell would apply
// (quoting, escapes) but without executing anything.
func expandCommandLines(l *Layout) error {
	for i, s := range l.Steps {
		if s.CommandLine == "" {
			continue
		}
		fields, err := shell.Fields(s.CommandLine, nil)
		if err != nil {
			return verrors.Newf(verrors.IO, s.Name, "parse command_line: %v", err)
		}
		l.Steps[i].ExpectedCommand = fields
	}
	for i, insp := range l.Inspect {
		if insp.RunLine == "" {
			continue
		}
		fields, err := shell.Fields(insp.RunLine, nil)
		if err != nil {
			return verrors.Newf(verrors.IO, insp.Name, "parse run_line: %v", err)
		}
		l.Inspect[i].Run = fields
	}
	return nil
}
