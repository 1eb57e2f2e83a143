package rule

import (
	"strings"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/verrors"
)

// LinkLookup resolves a step name to the materials/products recorded by its
// representative link, the join surface MATCH needs to reach across steps.
// Implemented by the chain-link dictionary in internal/link.
type LinkLookup interface {
	Artifacts(step string) (materials, products artifact.Set, ok bool)
}

// EvalMatch implements the MATCH evaluator. subject identifies the
// step/inspection being evaluated, used only for error messages.
func EvalMatch(r Rule, subject string, srcQueue Queue, srcArtifacts artifact.Set, lookup LinkLookup) (Queue, error) {
	destMaterials, destProducts, ok := lookup.Artifacts(r.DestStep)
	if !ok {
		return srcQueue, verrors.Newf(verrors.RuleVerification, subject, "MATCH FROM %s: no link loaded for that step", r.DestStep)
	}

	destArtifacts := destProducts
	if r.DestField == DestMaterials {
		destArtifacts = destMaterials
	}

	prefix := ""
	if r.SourcePrefix != "" {
		prefix = strings.TrimSuffix(r.SourcePrefix, "/") + "/"
	}

	var consumed Queue
	for _, p := range srcQueue {
		rel := p
		if prefix != "" {
			if !strings.HasPrefix(p, prefix) {
				continue
			}
			rel = strings.TrimPrefix(p, prefix)
		}
		if !matchPattern(r.Pattern, rel) {
			continue
		}

		fullDst := artifact.Join(r.DestPrefix, rel)

		srcDigest, ok := srcArtifacts[p]
		if !ok {
			continue
		}
		dstDigest, ok := destArtifacts[fullDst]
		if !ok {
			return srcQueue, verrors.Newf(verrors.RuleVerification, subject,
				"MATCH %s: no corresponding artifact %s in step %s", p, fullDst, r.DestStep)
		}
		if !srcDigest.Equal(dstDigest) {
			return srcQueue, verrors.Newf(verrors.RuleVerification, subject,
				"MATCH %s: digest mismatch against %s in step %s", p, fullDst, r.DestStep)
		}
		consumed = append(consumed, p)
	}

	return srcQueue.Remove(consumed), nil
}

// EvalCreate implements CREATE: matched products must be newly created,
// i.e. absent from the materials queue.
func EvalCreate(r Rule, subject string, productsQueue, materialsQueue Queue) (Queue, error) {
	matched := productsQueue.FilterPattern(r.Pattern)
	for _, p := range matched {
		if materialsQueue.Contains(p) {
			return productsQueue, verrors.Newf(verrors.RuleVerification, subject,
				"CREATE %s: %s already existed in materials, should have been newly created", r.Pattern, p)
		}
	}
	return productsQueue.Remove(matched), nil
}

// EvalDelete implements DELETE: matched materials must not survive into
// products.
func EvalDelete(r Rule, subject string, materialsQueue, productsQueue Queue) (Queue, error) {
	matched := materialsQueue.FilterPattern(r.Pattern)
	for _, p := range matched {
		if productsQueue.Contains(p) {
			return materialsQueue, verrors.Newf(verrors.RuleVerification, subject,
				"DELETE %s: %s still present in products, should have been deleted", r.Pattern, p)
		}
	}
	return materialsQueue.Remove(matched), nil
}

// EvalModify implements MODIFY: the matched sets on both sides must agree,
// and every matched path's digest must actually have changed.
func EvalModify(r Rule, subject string, materialsQueue, productsQueue Queue, materials, products artifact.Set) (Queue, Queue, error) {
	mMatched := materialsQueue.FilterPattern(r.Pattern)
	pMatched := productsQueue.FilterPattern(r.Pattern)

	if !mMatched.SameSet(pMatched) {
		return materialsQueue, productsQueue, verrors.Newf(verrors.RuleVerification, subject,
			"MODIFY %s: material and product matches disagree", r.Pattern)
	}

	for _, p := range mMatched {
		if materials[p].Equal(products[p]) {
			return materialsQueue, productsQueue, verrors.Newf(verrors.RuleVerification, subject,
				"MODIFY %s: %s was not modified", r.Pattern, p)
		}
	}

	return materialsQueue.Remove(mMatched), productsQueue.Remove(pMatched), nil
}

// EvalAllow implements ALLOW: it removes matched paths from the active
// queue and never fails.
func EvalAllow(r Rule, active Queue) Queue {
	matched := active.FilterPattern(r.Pattern)
	return active.Remove(matched)
}

// EvalDisallow implements DISALLOW: it fails if any path in the active
// queue matches.
func EvalDisallow(r Rule, subject string, active Queue) error {
	matched := active.FilterPattern(r.Pattern)
	if len(matched) > 0 {
		return verrors.Newf(verrors.RuleVerification, subject,
			"DISALLOW %s: disallowed artifacts present: %v", r.Pattern, []string(matched))
	}
	return nil
}
