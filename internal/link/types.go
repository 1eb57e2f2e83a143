// Package link implements the Link data model, the chain-link
// dictionary it is loaded into, and the filename convention for link files
// on disk.
package link

import (
	"gopkg.in/yaml.v3"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/verrors"
)

// Signature is an opaque detached signature entry, re-declared here rather
// than imported from layout to keep the two envelopes (layout vs. link)
// independently serializable.
type Signature struct {
	KeyID string `yaml:"keyid"`
	Sig   string `yaml:"sig"`
}

// Link is a signed attestation for one execution of one step by one
// functionary.
type Link struct {
	Name       string         `yaml:"name"`
	Command    []string       `yaml:"command"`
	Materials  artifact.Set   `yaml:"materials"`
	Products   artifact.Set   `yaml:"products"`
	Byproducts map[string]any `yaml:"byproducts"`
	Kind       string         `yaml:"_type"` // "link" or "layout"
	Signatures []Signature    `yaml:"signatures"`

	// NestedLayout is populated when Kind == "layout": the file at this
	// (step, keyid) slot is a sublayout substitution rather than an
	// ordinary link, and the recursive verifier must descend into it.
	NestedLayout *layout.Layout `yaml:"-"`
}

// IsSublayout reports whether this entry is a nested layout standing in
// for an ordinary link.
func (l *Link) IsSublayout() bool { return l.Kind == "layout" }

// ReturnValue extracts byproducts["return-value"] as an int, the field
// inspection links are required to carry so a nonzero exit code can fail
// verification.
func (l *Link) ReturnValue() (int, bool) {
	v, ok := l.Byproducts["return-value"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		// YAML/JSON numeric decode commonly lands here; reject non-integral
		// values rather than silently truncating.
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Parse decodes one link file's bytes. When the envelope's _type is
// "layout" the same bytes are re-decoded as a nested Layout and attached
// via NestedLayout, since a sublayout substitution stands in for an
// ordinary link at that (step, keyid) slot.
func Parse(data []byte) (*Link, error) {
	var l Link
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, verrors.Wrap(verrors.IO, "", err)
	}

	if l.Kind == "layout" {
		var nested layout.Layout
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, verrors.Wrap(verrors.IO, "", err)
		}
		l.NestedLayout = &nested
	}

	return &l, nil
}
