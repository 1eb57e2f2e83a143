package rule

import (
	"testing"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/verrors"
)

type fakeLookup map[string][2]artifact.Set

func (f fakeLookup) Artifacts(step string) (artifact.Set, artifact.Set, bool) {
	v, ok := f[step]
	if !ok {
		return nil, nil, false
	}
	return v[0], v[1], true
}

func h(s string) artifact.Digest { return artifact.Digest{"sha256": s} }

func TestEvalMatchAcrossSteps(t *testing.T) {
	compileProducts := artifact.Set{"a.o": h("H1"), "b.o": h("H2")}
	lookup := fakeLookup{"compile": {artifact.Set{}, compileProducts}}

	packageMaterials := artifact.Set{"a.o": h("H1"), "b.o": h("H2")}
	queue := NewQueue(packageMaterials)

	r, err := Parse([]string{"MATCH", "*.o", "WITH", "PRODUCTS", "FROM", "compile"})
	if err != nil {
		t.Fatal(err)
	}

	reduced, err := EvalMatch(r, "package", queue, packageMaterials, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reduced) != 0 {
		t.Errorf("expected empty queue, got %v", reduced)
	}
}

func TestEvalMatchDigestMismatch(t *testing.T) {
	compileProducts := artifact.Set{"a.o": h("H1")}
	lookup := fakeLookup{"compile": {artifact.Set{}, compileProducts}}

	packageMaterials := artifact.Set{"a.o": h("DIFFERENT")}
	queue := NewQueue(packageMaterials)

	r, _ := Parse([]string{"MATCH", "*.o", "WITH", "PRODUCTS", "FROM", "compile"})
	_, err := EvalMatch(r, "package", queue, packageMaterials, lookup)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification, got %v", err)
	}
}

func TestEvalMatchPrefixRewrite(t *testing.T) {
	compileProducts := artifact.Set{"dist/libz.a": h("Hz")}
	lookup := fakeLookup{"compile": {artifact.Set{}, compileProducts}}

	srcArtifacts := artifact.Set{"build/out/libz.a": h("Hz")}
	queue := NewQueue(srcArtifacts)

	r, _ := Parse([]string{"MATCH", "lib*.a", "IN", "build/out", "WITH", "PRODUCTS", "IN", "dist", "FROM", "compile"})
	reduced, err := EvalMatch(r, "package", queue, srcArtifacts, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reduced) != 0 {
		t.Errorf("expected build/out/libz.a consumed, queue = %v", reduced)
	}
}

func TestEvalMatchNoDestLink(t *testing.T) {
	lookup := fakeLookup{}
	queue := Queue{"a.o"}
	r, _ := Parse([]string{"MATCH", "*.o", "WITH", "PRODUCTS", "FROM", "missing"})
	_, err := EvalMatch(r, "package", queue, artifact.Set{"a.o": h("H1")}, lookup)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification, got %v", err)
	}
}

func TestEvalMatchVacuousPassOnEmptyFilter(t *testing.T) {
	lookup := fakeLookup{"compile": {artifact.Set{}, artifact.Set{}}}
	queue := Queue{"readme.md"}
	r, _ := Parse([]string{"MATCH", "*.o", "WITH", "PRODUCTS", "FROM", "compile"})
	reduced, err := EvalMatch(r, "package", queue, artifact.Set{"readme.md": h("H1")}, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reduced) != 1 {
		t.Errorf("expected queue unchanged, got %v", reduced)
	}
}

func TestEvalCreateForbidsPreExisting(t *testing.T) {
	materials := Queue{"out.bin"}
	products := Queue{"out.bin"}
	r, _ := Parse([]string{"CREATE", "out.bin"})
	_, err := EvalCreate(r, "build", products, materials)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification, got %v", err)
	}
}

func TestEvalCreateRemovesNewFile(t *testing.T) {
	materials := Queue{}
	products := Queue{"out.bin"}
	r, _ := Parse([]string{"CREATE", "out.bin"})
	reduced, err := EvalCreate(r, "build", products, materials)
	if err != nil {
		t.Fatal(err)
	}
	if len(reduced) != 0 {
		t.Errorf("expected out.bin consumed, got %v", reduced)
	}
}

func TestEvalDeleteForbidsSurvivor(t *testing.T) {
	materials := Queue{"tmp.log"}
	products := Queue{"tmp.log"}
	r, _ := Parse([]string{"DELETE", "tmp.log"})
	_, err := EvalDelete(r, "build", materials, products)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification, got %v", err)
	}
}

func TestEvalModifyRequiresChange(t *testing.T) {
	materials := Queue{"README"}
	products := Queue{"README"}
	materialSet := artifact.Set{"README": h("H1")}
	productSet := artifact.Set{"README": h("H1")} // unchanged -> should fail

	r, _ := Parse([]string{"MODIFY", "README"})
	_, _, err := EvalModify(r, "build", materials, products, materialSet, productSet)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification for unmodified file, got %v", err)
	}
}

func TestEvalModifySucceeds(t *testing.T) {
	materials := Queue{"README"}
	products := Queue{"README"}
	materialSet := artifact.Set{"README": h("H1")}
	productSet := artifact.Set{"README": h("H2")}

	r, _ := Parse([]string{"MODIFY", "README"})
	m, p, err := EvalModify(r, "build", materials, products, materialSet, productSet)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 0 || len(p) != 0 {
		t.Errorf("expected both queues drained, got m=%v p=%v", m, p)
	}
}

func TestEvalAllowNeverFails(t *testing.T) {
	active := Queue{"a", "b"}
	r, _ := Parse([]string{"ALLOW", "*"})
	reduced := EvalAllow(r, active)
	if len(reduced) != 0 {
		t.Errorf("expected all consumed, got %v", reduced)
	}
}

func TestEvalDisallowFailsOnMatch(t *testing.T) {
	active := Queue{"secret.key"}
	r, _ := Parse([]string{"DISALLOW", "*"})
	err := EvalDisallow(r, "build", active)
	if !verrors.Is(err, verrors.RuleVerification) {
		t.Fatalf("expected RuleVerification, got %v", err)
	}
}

func TestEvalDisallowPassesOnEmptyQueue(t *testing.T) {
	r, _ := Parse([]string{"DISALLOW", "*"})
	if err := EvalDisallow(r, "build", Queue{}); err != nil {
		t.Errorf("expected pass on empty queue, got %v", err)
	}
}
