package verify

import (
	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/verrors"
)

// BuildSummaryLink synthesizes the single Link a sublayout substitutes into
// its parent: materials taken from the first step in the layout's
// declaration order, products from the last, so the parent's MATCH rules
// see the sublayout as one opaque unit spanning its whole chain.
func BuildSummaryLink(l *layout.Layout, reducedSteps link.Reduced) (*link.Link, error) {
	if len(l.Steps) == 0 {
		return nil, verrors.New(verrors.RuleVerification, "", "layout has no steps to summarize")
	}

	first := l.Steps[0]
	last := l.Steps[len(l.Steps)-1]

	firstLink, ok := reducedSteps[first.Name]
	if !ok {
		return nil, verrors.Newf(verrors.RuleVerification, first.Name, "no reduced link for first step")
	}
	lastLink, ok := reducedSteps[last.Name]
	if !ok {
		return nil, verrors.Newf(verrors.RuleVerification, last.Name, "no reduced link for last step")
	}

	return &link.Link{
		Name:      "",
		Materials: copySet(firstLink.Materials),
		Products:  copySet(lastLink.Products),
		Kind:      "link",
	}, nil
}

func copySet(s artifact.Set) artifact.Set {
	out := make(artifact.Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
