package verify

import (
	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/rule"
	"github.com/ossvet/chainverify/internal/verrors"
)

// Source bundles the artifact data one step/inspection's rule list is
// checked against: its own recorded materials and products, and the
// cross-step lookup MATCH needs.
type Source struct {
	Materials artifact.Set
	Products  artifact.Set
	Lookup    rule.LinkLookup
}

// ApplyItemRules runs one item's (step or inspection) combined
// expected_materials and expected_products rule lists against its recorded
// artifact sets, using active-queue binding: a rule declared under
// materials operates on the materials queue (using the products queue as
// its CREATE/DELETE/MODIFY counterpart) and vice versa.
//
// strictQueues, when set, requires both queues to be fully drained by the
// end of their respective rule lists. Off by default.
func ApplyItemRules(itemName string, materialRules, productRules []rule.Rule, src Source, strictQueues bool) error {
	materialsQueue := rule.NewQueue(src.Materials)
	productsQueue := rule.NewQueue(src.Products)

	for _, r := range materialRules {
		var err error
		materialsQueue, productsQueue, err = applyOne(itemName, "materials", r, materialsQueue, productsQueue, src)
		if err != nil {
			return err
		}
	}

	for _, r := range productRules {
		var err error
		productsQueue, materialsQueue, err = applyOne(itemName, "products", r, productsQueue, materialsQueue, src)
		if err != nil {
			return err
		}
	}

	if strictQueues {
		if len(materialsQueue) > 0 {
			return verrors.Newf(verrors.RuleVerification, itemName,
				"%d material(s) left unconsumed: %v", len(materialsQueue), []string(materialsQueue))
		}
		if len(productsQueue) > 0 {
			return verrors.Newf(verrors.RuleVerification, itemName,
				"%d product(s) left unconsumed: %v", len(productsQueue), []string(productsQueue))
		}
	}

	return nil
}

// applyOne evaluates a single rule declared under field against own (the
// queue named by field) and counter (the opposite queue), returning the
// possibly-updated own and counter queues. CREATE always operates on the
// products queue (materials as its counter-check) and DELETE always on the
// materials queue (products as its counter-check), independent of which
// list declared the rule; MODIFY likewise always reconstructs the fixed
// (materials, products) order before evaluating.
func applyOne(itemName, field string, r rule.Rule, own, counter rule.Queue, src Source) (rule.Queue, rule.Queue, error) {
	switch r.Kind {
	case rule.Match:
		ownArtifacts := src.Products
		if field == "materials" {
			ownArtifacts = src.Materials
		}
		q, err := rule.EvalMatch(r, itemName, own, ownArtifacts, src.Lookup)
		return q, counter, err
	case rule.Create:
		productsQ, materialsQ := own, counter
		if field != "products" {
			productsQ, materialsQ = counter, own
		}
		q, err := rule.EvalCreate(r, itemName, productsQ, materialsQ)
		if field == "products" {
			return q, counter, err
		}
		return own, q, err
	case rule.Delete:
		materialsQ, productsQ := own, counter
		if field != "materials" {
			materialsQ, productsQ = counter, own
		}
		q, err := rule.EvalDelete(r, itemName, materialsQ, productsQ)
		if field == "materials" {
			return q, counter, err
		}
		return own, q, err
	case rule.Modify:
		materialsQ, productsQ := own, counter
		if field != "materials" {
			materialsQ, productsQ = counter, own
		}
		materialsQ, productsQ, err := rule.EvalModify(r, itemName, materialsQ, productsQ, src.Materials, src.Products)
		if field == "materials" {
			return materialsQ, productsQ, err
		}
		return productsQ, materialsQ, err
	case rule.Allow:
		return rule.EvalAllow(r, own), counter, nil
	case rule.Disallow:
		return own, counter, rule.EvalDisallow(r, itemName, own)
	default:
		return own, counter, verrors.Newf(verrors.RuleFormat, itemName, "unknown rule kind %q", r.Kind)
	}
}
