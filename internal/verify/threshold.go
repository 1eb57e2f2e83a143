package verify

import (
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/verrors"
)

// VerifyThresholds folds each step's surviving functionary links (those
// that passed signature verification) down to one representative link per
// step. Every loaded link must agree with the reference on materials and
// products — a single functionary reporting a different artifact set is a
// Threshold failure, regardless of how many others agree.
//
// The reference copy used for comparison is explicitly the first
// functionary link encountered in a stable (sorted) keyid order, bound
// once into referenceKeyID and reused for every subsequent comparison and
// error message — the source's threshold loop left this implicit and
// compared against whatever "last" variable the loop happened to leave
// behind, which made multi-way disagreements report confusing messages.
func VerifyThresholds(l *layout.Layout, chain link.ChainLinkDict) (link.Reduced, error) {
	out := make(link.Reduced, len(l.Steps))

	for _, step := range l.Steps {
		entries := chain[step.Name]
		if len(entries) < step.Threshold {
			return nil, verrors.Newf(verrors.Threshold, step.Name,
				"only %d of required %d functionary link(s) present", len(entries), step.Threshold)
		}
		if step.Threshold <= 0 {
			continue
		}

		keyIDs := make([]string, 0, len(entries))
		for keyID := range entries {
			keyIDs = append(keyIDs, keyID)
		}
		sort.Strings(keyIDs)

		referenceKeyID := keyIDs[0]
		reference := entries[referenceKeyID]

		for _, keyID := range keyIDs[1:] {
			other := entries[keyID]
			if !linksAgree(reference, other) {
				return nil, verrors.Newf(verrors.Threshold, step.Name,
					"functionary %s does not report the same materials/products as reference keyid %s",
					keyID, referenceKeyID)
			}
		}

		out[step.Name] = reference
	}

	return out, nil
}

func linksAgree(a, b *link.Link) bool {
	return cmp.Equal(a.Materials, b.Materials) && cmp.Equal(a.Products, b.Products)
}
