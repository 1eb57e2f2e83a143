package rule

import "github.com/moby/patternmatcher"

// matchPattern applies a single glob pattern to a complete path string.
// It reuses Docker's ignore-file glob engine (the same one build-context
// path matching relies on) rather than hand-rolling a matcher, since it
// already implements the `*`, `?`, `[...]` glob classes the rule DSL needs.
func matchPattern(pattern, p string) bool {
	if pattern == "" {
		return false
	}
	pm, err := patternmatcher.New([]string{pattern})
	if err != nil {
		return false
	}
	matched, err := pm.Matches(p)
	if err != nil {
		return false
	}
	return matched
}
