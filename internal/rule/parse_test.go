package rule

import (
	"reflect"
	"testing"

	"github.com/ossvet/chainverify/internal/verrors"
)

func TestParseSimpleRules(t *testing.T) {
	tests := []struct {
		tokens []string
		want   Rule
	}{
		{[]string{"CREATE", "out.bin"}, Rule{Kind: Create, Pattern: "out.bin"}},
		{[]string{"delete", "*.tmp"}, Rule{Kind: Delete, Pattern: "*.tmp"}},
		{[]string{"Modify", "README"}, Rule{Kind: Modify, Pattern: "README"}},
		{[]string{"ALLOW", "*"}, Rule{Kind: Allow, Pattern: "*"}},
		{[]string{"DISALLOW", "*"}, Rule{Kind: Disallow, Pattern: "*"}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.tokens)
		if err != nil {
			t.Fatalf("Parse(%v): unexpected error: %v", tt.tokens, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%v) = %+v, want %+v", tt.tokens, got, tt.want)
		}
	}
}

func TestParseMatch(t *testing.T) {
	tokens := []string{"MATCH", "*.o", "IN", "build/out", "WITH", "PRODUCTS", "IN", "dist", "FROM", "compile"}
	got, err := Parse(tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Rule{
		Kind:         Match,
		Pattern:      "*.o",
		SourcePrefix: "build/out",
		DestField:    DestProducts,
		DestPrefix:   "dist",
		DestStep:     "compile",
	}
	if got != want {
		t.Errorf("Parse(%v) = %+v, want %+v", tokens, got, want)
	}
}

func TestParseMatchMinimal(t *testing.T) {
	tokens := []string{"MATCH", "*.o", "WITH", "PRODUCTS", "FROM", "compile"}
	got, err := Parse(tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SourcePrefix != "" || got.DestPrefix != "" {
		t.Errorf("expected empty prefixes, got %+v", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := [][]string{
		{},
		{"BOGUS", "foo"},
		{"CREATE"},
		{"CREATE", "a", "b"},
		{"MATCH", "*.o", "WITH", "FROM", "x"},
		{"MATCH", "*.o", "WITH", "BOGUS", "FROM", "x"},
		{"MATCH", "*.o", "WITH", "PRODUCTS"},
		{"MATCH", "*.o", "IN", "a*b", "WITH", "PRODUCTS", "FROM", "x"},
	}
	for _, tokens := range cases {
		_, err := Parse(tokens)
		if err == nil {
			t.Errorf("Parse(%v): expected error, got none", tokens)
			continue
		}
		if !verrors.Is(err, verrors.RuleFormat) {
			t.Errorf("Parse(%v): expected RuleFormat error, got %v", tokens, err)
		}
	}
}

func TestTokensRoundTrip(t *testing.T) {
	cases := [][]string{
		{"CREATE", "out.bin"},
		{"ALLOW", "*"},
		{"MATCH", "*.o", "IN", "build/out", "WITH", "PRODUCTS", "IN", "dist", "FROM", "compile"},
		{"MATCH", "*.o", "WITH", "MATERIALS", "FROM", "compile"},
	}
	for _, tokens := range cases {
		r, err := Parse(tokens)
		if err != nil {
			t.Fatalf("Parse(%v): %v", tokens, err)
		}
		got := r.Tokens()
		if !reflect.DeepEqual(got, tokens) {
			t.Errorf("round trip: Parse(%v).Tokens() = %v", tokens, got)
		}
	}
}
