package link

import (
	"os"
	"path/filepath"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/verrors"
)

// ChainLinkDict is step_name → (keyid → Link), populated by LoadChain and
// mutated in place by the sublayout recursor and threshold reducer.
type ChainLinkDict map[string]map[string]*Link

// LoadChain loads every link file a step's pubkeys could have produced.
// Files missing for unauthorized keys are silently skipped; no minimum
// count is enforced here (that is the threshold evaluator's job).
func LoadChain(dir string, l *layout.Layout) (ChainLinkDict, error) {
	dict := make(ChainLinkDict, len(l.Steps))

	for _, step := range l.Steps {
		entries := make(map[string]*Link, len(step.PubKeys))
		for _, keyID := range step.PubKeys {
			path := filepath.Join(dir, Filename(step.Name, keyID))
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, verrors.Wrap(verrors.IO, step.Name, err)
			}
			lk, err := Parse(data)
			if err != nil {
				return nil, verrors.Wrap(verrors.IO, path, err)
			}
			entries[keyID] = lk
		}
		dict[step.Name] = entries
	}

	return dict, nil
}

// Discover walks a directory and classifies every file by the link filename
// grammar, ignoring anything that doesn't match instead of erroring. This
// is a looser scan than LoadChain, useful for inspecting a link directory
// whose layout isn't known yet (e.g. a CLI `status` command).
func Discover(dir string) (map[string][]ParsedFilename, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, verrors.Wrap(verrors.IO, dir, err)
	}

	out := map[string][]ParsedFilename{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pf, ok := ParseFilename(e.Name())
		if !ok {
			continue
		}
		out[pf.Step] = append(out[pf.Step], pf)
	}
	return out, nil
}

// Reduced is step/inspection name → representative Link, the shape the
// item rule driver and summary synthesizer consume after threshold
// reduction folds multiple functionary links into one per step.
type Reduced map[string]*Link

// Artifacts implements rule.LinkLookup so MATCH rules can resolve a
// dest_step directly against the reduced link map.
func (r Reduced) Artifacts(step string) (artifact.Set, artifact.Set, bool) {
	lk, ok := r[step]
	if !ok {
		return nil, nil, false
	}
	return lk.Materials, lk.Products, true
}

// Merge returns a new Reduced containing both r and other, with other's
// entries taking precedence on key collision (used to combine step links
// with inspection links before phase 10 rule evaluation).
func (r Reduced) Merge(other Reduced) Reduced {
	out := make(Reduced, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
