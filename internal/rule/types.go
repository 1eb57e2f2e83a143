// Package rule implements the artifact rule DSL: parsing and evaluation of
// MATCH/CREATE/DELETE/MODIFY/ALLOW/DISALLOW rules against per-item
// artifact queues.
package rule

// Kind is the tag of the rule sum type.
type Kind string

const (
	Match    Kind = "MATCH"
	Create   Kind = "CREATE"
	Delete   Kind = "DELETE"
	Modify   Kind = "MODIFY"
	Allow    Kind = "ALLOW"
	Disallow Kind = "DISALLOW"
)

// DestKind is the WITH clause of a MATCH rule.
type DestKind string

const (
	DestMaterials DestKind = "materials"
	DestProducts  DestKind = "products"
)

// Rule is the parsed, typed form of one expected_materials/expected_products
// entry. Only the fields relevant to Kind are populated; evaluators never
// see malformed variants because Parse validates once at load time.
type Rule struct {
	Kind Kind

	// Pattern is present on every kind.
	Pattern string

	// MATCH-only fields.
	SourcePrefix string
	DestField    DestKind
	DestPrefix   string
	DestStep     string
}

// Tokens re-emits the rule as the token list Parse would accept, used to
// check the parse/re-emit round-trip property.
func (r Rule) Tokens() []string {
	switch r.Kind {
	case Match:
		toks := []string{string(Match), r.Pattern}
		if r.SourcePrefix != "" {
			toks = append(toks, "IN", r.SourcePrefix)
		}
		toks = append(toks, "WITH", destFieldToken(r.DestField))
		if r.DestPrefix != "" {
			toks = append(toks, "IN", r.DestPrefix)
		}
		toks = append(toks, "FROM", r.DestStep)
		return toks
	default:
		return []string{string(r.Kind), r.Pattern}
	}
}

func destFieldToken(d DestKind) string {
	if d == DestMaterials {
		return "MATERIALS"
	}
	return "PRODUCTS"
}
