package verify

import (
	"github.com/ossvet/chainverify/internal/clock"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/logger"
	"github.com/ossvet/chainverify/internal/normalize"
	"github.com/ossvet/chainverify/internal/verrors"
)

// Options configures one verification run's environment and policy knobs,
// threaded explicitly through Verify/RecurseSublayouts rather than held as
// package state, so concurrent top-level verifications never interfere.
type Options struct {
	// LinkDir is where step link files are looked up.
	LinkDir string
	// WorkDir is where inspection commands run.
	WorkDir string
	// PersistDir, when non-empty, is where synthesized inspection links
	// are written.
	PersistDir string

	Clock  clock.Clock
	Runner Runner
	Log    *logger.Logger

	StrictQueues          bool
	FailOnCommandMismatch bool
	MaxRecursionDepth     int
}

// DefaultOptions returns an Options with the production Clock and Runner
// and every policy knob at its documented default (both off).
func DefaultOptions() Options {
	return Options{
		Clock:             clock.Real{},
		Runner:            ProcessRunner{},
		MaxRecursionDepth: MaxRecursionDepth,
	}
}

// SublayoutOwnerKeys resolves the trusted signers for a nested layout
// encountered during sublayout substitution. A sublayout's authenticity
// was already established by its parent step's own link signature check
// (the nested layout only reached this code because it was embedded in an
// already-authenticated link), so its own declared keys map is taken as
// the set of owners to check its internal signatures against.
func (o Options) SublayoutOwnerKeys(nested *layout.Layout) map[string]layout.Key {
	return nested.Keys
}

func (o Options) logf() *logger.Logger {
	if o.Log != nil {
		return o.Log
	}
	return nil
}

func (o Options) phase(name string) {
	if l := o.logf(); l != nil {
		l.PhaseStarted(name)
	}
}

// Verify runs the full ordered verification procedure against an
// already-loaded layout:
//
//  1. verify layout signatures against ownerKeys
//  2. verify layout expiration
//  3. load the link chain from opts.LinkDir
//  4. verify each loaded link's own signature, dropping failures
//  5. reduce each step's surviving links by functionary threshold
//  6. recurse into any sublayout substitutions
//  7. run declared inspections, rejecting a non-zero exit before any rule
//     in that inspection is evaluated
//  8. scan every recorded artifact path for Unicode smuggling indicators
//  9. apply each step's and inspection's artifact rules against the
//     merged lookup of steps + inspections
//  10. optionally enforce expected_command alignment
//
// depth and visited carry sublayout recursion state; top-level callers
// pass depth=0 and an empty visited map.
func Verify(l *layout.Layout, ownerKeys map[string]layout.Key, opts Options, depth int, visited map[string]string) (*link.Link, error) {
	if visited == nil {
		visited = map[string]string{}
	}

	opts.phase("layout-signatures")
	if err := VerifyLayoutSignatures(l, ownerKeys); err != nil {
		return nil, err
	}

	opts.phase("layout-expiration")
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	if err := VerifyLayoutExpiration(l, clk); err != nil {
		return nil, err
	}

	opts.phase("load-link-chain")
	chain, err := link.LoadChain(opts.LinkDir, l)
	if err != nil {
		return nil, err
	}

	opts.phase("step-signatures")
	if err := VerifyAllStepsSignatures(l, chain); err != nil {
		return nil, err
	}

	opts.phase("thresholds")
	reducedSteps, err := VerifyThresholds(l, chain)
	if err != nil {
		return nil, err
	}

	opts.phase("sublayouts")
	if err := RecurseSublayouts(reducedSteps, opts, depth, visited); err != nil {
		return nil, err
	}

	opts.phase("inspections")
	runner := opts.Runner
	if runner == nil {
		runner = ProcessRunner{}
	}
	inspectionLinks, err := RunInspections(l, runner, opts.WorkDir, opts.PersistDir)
	if err != nil {
		return nil, err
	}

	lookup := reducedSteps.Merge(inspectionLinks)

	opts.phase("path-safety")
	if err := ScanArtifactPathSafety(lookup); err != nil {
		return nil, err
	}

	opts.phase("item-rules")
	for _, step := range l.Steps {
		lk, ok := reducedSteps[step.Name]
		if !ok {
			return nil, verrors.Newf(verrors.RuleVerification, step.Name, "no reduced link for step")
		}

		materialRules, err := step.MaterialRules()
		if err != nil {
			return nil, err
		}
		productRules, err := step.ProductRules()
		if err != nil {
			return nil, err
		}

		src := Source{Materials: lk.Materials, Products: lk.Products, Lookup: lookup}
		if err := ApplyItemRules(step.Name, materialRules, productRules, src, opts.StrictQueues); err != nil {
			if lg := opts.logf(); lg != nil {
				lg.RuleFailed(step.Name, err)
			}
			return nil, err
		}

		if err := checkCommandAlignment(step, lk, opts); err != nil {
			return nil, err
		}

		if lg := opts.logf(); lg != nil {
			nc := normalize.Normalize(lk.Command, opts.WorkDir)
			lg.CommandEgress(step.Name, nc.Domains)
			lg.StepVerified(step.Name)
		}
	}

	for _, insp := range l.Inspect {
		lk := inspectionLinks[insp.Name]

		materialRules, err := insp.MaterialRules()
		if err != nil {
			return nil, err
		}
		productRules, err := insp.ProductRules()
		if err != nil {
			return nil, err
		}

		src := Source{Materials: lk.Materials, Products: lk.Products, Lookup: lookup}
		if err := ApplyItemRules(insp.Name, materialRules, productRules, src, opts.StrictQueues); err != nil {
			if lg := opts.logf(); lg != nil {
				lg.RuleFailed(insp.Name, err)
			}
			return nil, err
		}
	}

	return BuildSummaryLink(l, reducedSteps)
}

// checkCommandAlignment compares a step's declared expected_command with
// its reduced link's recorded command. A mismatch is always logged; it is
// only a hard failure when opts.FailOnCommandMismatch is set.
func checkCommandAlignment(step layout.Step, lk *link.Link, opts Options) error {
	expected := []string(step.ExpectedCommand)
	if len(expected) == 0 {
		return nil
	}
	if commandsEqual(expected, lk.Command) {
		return nil
	}

	if lg := opts.logf(); lg != nil {
		lg.CommandMismatch(step.Name, expected, lk.Command)
	}

	if opts.FailOnCommandMismatch {
		return verrors.Newf(verrors.RuleVerification, step.Name,
			"executed command %v does not match expected_command %v", lk.Command, expected)
	}
	return nil
}

func commandsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
