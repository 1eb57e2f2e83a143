package rule

import (
	"strings"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/verrors"
)

// Parse turns one rule's token list into a typed Rule record. Keywords are
// matched case-insensitively; pattern, prefix and step-name tokens are taken
// verbatim. Fails with verrors.RuleFormat on any malformed grammar.
func Parse(tokens []string) (Rule, error) {
	if len(tokens) == 0 {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "empty rule")
	}

	head := strings.ToUpper(tokens[0])
	rest := tokens[1:]

	switch Kind(head) {
	case Match:
		return parseMatch(rest)
	case Create, Delete, Modify, Allow, Disallow:
		return parseSimple(Kind(head), rest)
	default:
		return Rule{}, verrors.Newf(verrors.RuleFormat, "", "unknown rule keyword %q", tokens[0])
	}
}

func parseSimple(kind Kind, rest []string) (Rule, error) {
	if len(rest) != 1 {
		return Rule{}, verrors.Newf(verrors.RuleFormat, "", "%s expects exactly one pattern, got %d tokens", kind, len(rest))
	}
	return Rule{Kind: kind, Pattern: rest[0]}, nil
}

// parseMatch parses:
//
//	<pattern> [IN <src_prefix>] WITH (MATERIALS|PRODUCTS) [IN <dst_prefix>] FROM <step>
func parseMatch(rest []string) (Rule, error) {
	r := Rule{Kind: Match}

	if len(rest) == 0 {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "MATCH missing pattern")
	}
	r.Pattern = rest[0]
	rest = rest[1:]

	if peek(rest) == "IN" {
		var err error
		r.SourcePrefix, rest, err = consumePrefixed(rest)
		if err != nil {
			return Rule{}, err
		}
	}

	if peek(rest) != "WITH" {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "MATCH missing WITH clause")
	}
	rest = rest[1:]

	if len(rest) == 0 {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "MATCH WITH missing MATERIALS|PRODUCTS")
	}
	switch strings.ToUpper(rest[0]) {
	case "MATERIALS":
		r.DestField = DestMaterials
	case "PRODUCTS":
		r.DestField = DestProducts
	default:
		return Rule{}, verrors.Newf(verrors.RuleFormat, "", "MATCH WITH expects MATERIALS or PRODUCTS, got %q", rest[0])
	}
	rest = rest[1:]

	if peek(rest) == "IN" {
		var err error
		r.DestPrefix, rest, err = consumePrefixed(rest)
		if err != nil {
			return Rule{}, err
		}
	}

	if peek(rest) != "FROM" {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "MATCH missing FROM clause")
	}
	rest = rest[1:]

	if len(rest) != 1 {
		return Rule{}, verrors.New(verrors.RuleFormat, "", "MATCH FROM expects exactly one step name")
	}
	r.DestStep = rest[0]

	for _, prefix := range []string{r.SourcePrefix, r.DestPrefix} {
		if artifact.HasGlobMeta(prefix) {
			return Rule{}, verrors.Newf(verrors.RuleFormat, "", "prefix %q must not contain glob metacharacters", prefix)
		}
	}

	return r, nil
}

func peek(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return strings.ToUpper(tokens[0])
}

// consumePrefixed consumes "IN <value>" and returns the value plus the
// remaining tokens.
func consumePrefixed(tokens []string) (string, []string, error) {
	if len(tokens) < 2 {
		return "", nil, verrors.New(verrors.RuleFormat, "", "IN clause missing value")
	}
	return tokens[1], tokens[2:], nil
}
