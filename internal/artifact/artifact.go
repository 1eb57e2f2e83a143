// Package artifact implements the artifact identifier, digest and set types
// from the data model: a path, its content hashes, and the path→digest
// mappings recorded as a link's materials or products.
package artifact

import (
	"path"
	"sort"
	"strings"
)

// Digest maps a hash-algorithm name ("sha256", "sha512", ...) to its hex
// digest. Two artifacts are equal iff their Digest maps are equal.
type Digest map[string]string

// Equal reports whether d and other record the identical set of
// algorithm/digest pairs.
func (d Digest) Equal(other Digest) bool {
	if len(d) != len(other) {
		return false
	}
	for alg, hex := range d {
		if other[alg] != hex {
			return false
		}
	}
	return true
}

// Set is an artifact set: path → digest. Map order is insignificant; Paths
// returns a sorted slice whenever a stable iteration order is needed.
type Set map[string]Digest

// Paths returns the set's paths in sorted order.
func (s Set) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clean normalizes every path in the set with path.Clean, the same
// normalization in_toto applies before comparing artifact paths across
// namespaces.
func (s Set) Clean() Set {
	out := make(Set, len(s))
	for p, d := range s {
		out[path.Clean(p)] = d
	}
	return out
}

// Join composes a destination path from an optional prefix and a relative
// path, mirroring MATCH's full_dst = join(dest_prefix, p) construction.
func Join(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return path.Clean(strings.TrimSuffix(prefix, "/") + "/" + rel)
}

// HasGlobMeta reports whether s contains any of the glob metacharacters a
// prefix is forbidden from carrying: dest_prefix must be a plain path, not
// a glob.
func HasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
