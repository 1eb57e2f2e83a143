// Package layout implements the layout data model and its YAML
// serialization: keys, steps, inspections and the rule lists attached to
// each.
package layout

import (
	"time"

	"github.com/ossvet/chainverify/internal/rule"
)

// Key is a functionary's key record as it appears in layout.keys. Scheme
// selects which verifier in internal/keys loads KeyValue.
type Key struct {
	KeyID    string `yaml:"keyid"`
	KeyType  string `yaml:"keytype"`
	Scheme   string `yaml:"scheme"`
	KeyValue string `yaml:"keyval"`
}

// RawRule is a rule as it appears on the wire: an ordered token list.
type RawRule []string

// Step is a node in the layout's approved chain.
type Step struct {
	Name              string   `yaml:"name"`
	ExpectedCommand   RawRule  `yaml:"expected_command"`
	CommandLine       string   `yaml:"command_line,omitempty"`
	Threshold         int      `yaml:"threshold"`
	PubKeys           []string `yaml:"pubkeys"`
	ExpectedMaterials []RawRule `yaml:"expected_materials"`
	ExpectedProducts  []RawRule `yaml:"expected_products"`
}

// Rules parses and returns the step's expected_materials rule list.
func (s Step) MaterialRules() ([]rule.Rule, error) { return parseRules(s.ExpectedMaterials) }

// ProductRules parses and returns the step's expected_products rule list.
func (s Step) ProductRules() ([]rule.Rule, error) { return parseRules(s.ExpectedProducts) }

// Inspection is a step run locally by the verifier.
type Inspection struct {
	Name              string    `yaml:"name"`
	Run               RawRule   `yaml:"run"`
	RunLine           string    `yaml:"run_line,omitempty"`
	ExpectedMaterials []RawRule `yaml:"expected_materials"`
	ExpectedProducts  []RawRule `yaml:"expected_products"`
}

func (i Inspection) MaterialRules() ([]rule.Rule, error) { return parseRules(i.ExpectedMaterials) }
func (i Inspection) ProductRules() ([]rule.Rule, error)  { return parseRules(i.ExpectedProducts) }

// Layout is the signed declarative policy the verifier checks links
// against.
type Layout struct {
	Keys       map[string]Key `yaml:"keys"`
	Steps      []Step         `yaml:"steps"`
	Inspect    []Inspection   `yaml:"inspect"`
	Expires    string         `yaml:"expires"`
	Signatures []Signature    `yaml:"signatures"`
}

// Signature is an opaque detached signature over the layout or link payload.
type Signature struct {
	KeyID string `yaml:"keyid"`
	Sig   string `yaml:"sig"`
}

// ExpiresAt parses the Expires field as an absolute UTC timestamp.
func (l Layout) ExpiresAt() (time.Time, error) {
	return time.Parse(time.RFC3339, l.Expires)
}

// StepByName finds a declared step by name.
func (l Layout) StepByName(name string) (Step, bool) {
	for _, s := range l.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

func parseRules(raw []RawRule) ([]rule.Rule, error) {
	out := make([]rule.Rule, 0, len(raw))
	for _, tokens := range raw {
		r, err := rule.Parse(tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
