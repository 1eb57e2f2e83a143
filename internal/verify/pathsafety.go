package verify

import (
	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/unicode"
	"github.com/ossvet/chainverify/internal/verrors"
)

// ScanArtifactPathSafety scans every material and product path recorded in
// reduced for Unicode smuggling indicators — zero-width joiners, bidi
// overrides, confusable homoglyphs — that would let an artifact's path
// render differently than it actually compares, the same class of attack
// a disguised pull-request filename relies on. A block-severity threat on
// any path fails verification outright.
func ScanArtifactPathSafety(reduced link.Reduced) error {
	for name, lk := range reduced {
		if err := scanSetPaths(name, lk.Materials); err != nil {
			return err
		}
		if err := scanSetPaths(name, lk.Products); err != nil {
			return err
		}
	}
	return nil
}

func scanSetPaths(subject string, s artifact.Set) error {
	for _, p := range s.Paths() {
		result := unicode.Scan(p)
		if result.Clean {
			continue
		}
		for _, t := range result.Threats {
			if t.Severity == "block" {
				return verrors.Newf(verrors.RuleVerification, subject,
					"artifact path %q carries a %s Unicode threat (%s): %s", p, t.Category, t.Codepoint, t.Description)
			}
		}
	}
	return nil
}
