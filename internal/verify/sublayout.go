package verify

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/verrors"
)

// MaxRecursionDepth bounds sublayout nesting when Options.MaxRecursionDepth
// is left at zero.
const MaxRecursionDepth = 8

// fingerprint identifies a nested layout by the hash of its canonical
// bytes, used to detect a sublayout that (directly or transitively)
// substitutes itself back in, which would otherwise recurse forever.
func fingerprint(l *layout.Layout) (string, error) {
	b, err := layoutPayload(l)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// RecurseSublayouts walks every step whose reduced link is actually a
// sublayout substitution and verifies the nested layout in place,
// replacing its entry in reduced with the synthesized summary link so the
// parent's rule evaluation sees it like any ordinary step.
//
// depth and visited are threaded explicitly rather than held in package
// state, so concurrent top-level verifications never share recursion
// bookkeeping.
func RecurseSublayouts(reduced link.Reduced, opts Options, depth int, visited map[string]string) error {
	maxDepth := opts.MaxRecursionDepth
	if maxDepth <= 0 {
		maxDepth = MaxRecursionDepth
	}
	if depth > maxDepth {
		return verrors.Newf(verrors.Recursion, "", "sublayout nesting exceeds max depth %d", maxDepth)
	}

	for name, lk := range reduced {
		if !lk.IsSublayout() {
			continue
		}

		fp, err := fingerprint(lk.NestedLayout)
		if err != nil {
			return verrors.Wrap(verrors.IO, name, err)
		}
		if prior, seen := visited[fp]; seen {
			return verrors.Newf(verrors.Recursion, name, "cyclic sublayout substitution (matches earlier step %s)", prior)
		}
		nextVisited := make(map[string]string, len(visited)+1)
		for k, v := range visited {
			nextVisited[k] = v
		}
		nextVisited[fp] = name

		summary, err := Verify(lk.NestedLayout, opts.SublayoutOwnerKeys(lk.NestedLayout), opts, depth+1, nextVisited)
		if err != nil {
			return verrors.Wrap(verrors.Recursion, name, err)
		}
		reduced[name] = summary
	}

	return nil
}
