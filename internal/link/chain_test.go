package link

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/layout"
)

func writeLinkFile(t *testing.T, dir, step, keyID string, lk *Link) {
	t.Helper()
	data, err := yaml.Marshal(lk)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, Filename(step, keyID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadChainSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	l := &layout.Layout{
		Steps: []layout.Step{
			{Name: "build", PubKeys: []string{"aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb"}},
		},
	}

	writeLinkFile(t, dir, "build", "aaaaaaaaaaaaaaaa", &Link{
		Name:      "build",
		Command:   []string{"go", "build"},
		Materials: artifact.Set{},
		Products:  artifact.Set{"out": {"sha256": "x"}},
		Kind:      "link",
	})

	dict, err := LoadChain(dir, l)
	if err != nil {
		t.Fatalf("LoadChain: %v", err)
	}
	entries := dict["build"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 loaded link, got %d", len(entries))
	}
	if _, ok := entries["aaaaaaaaaaaaaaaa"]; !ok {
		t.Errorf("expected entry for the filed key, got %v", entries)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeLinkFile(t, dir, "build", "aaaaaaaaaaaaaaaa", &Link{Name: "build", Kind: "link"})
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found["build"]) != 1 {
		t.Fatalf("Discover()[build] = %v", found["build"])
	}
}

func TestReducedMerge(t *testing.T) {
	a := Reduced{"build": &Link{Name: "build"}}
	b := Reduced{"test": &Link{Name: "test"}}
	merged := a.Merge(b)
	if len(merged) != 2 {
		t.Fatalf("Merge result has %d entries, want 2", len(merged))
	}
}

func TestReducedArtifacts(t *testing.T) {
	mats := artifact.Set{"in.go": {"sha256": "1"}}
	prods := artifact.Set{"out": {"sha256": "2"}}
	r := Reduced{"build": &Link{Materials: mats, Products: prods}}

	gotMats, gotProds, ok := r.Artifacts("build")
	if !ok {
		t.Fatal("expected build to be found")
	}
	if len(gotMats) != 1 || len(gotProds) != 1 {
		t.Errorf("Artifacts returned %v / %v", gotMats, gotProds)
	}

	if _, _, ok := r.Artifacts("missing"); ok {
		t.Error("expected missing step to report ok=false")
	}
}
