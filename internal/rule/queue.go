package rule

import "github.com/ossvet/chainverify/internal/artifact"

// Queue is the per-item ordered set of artifact paths not yet accounted
// for by prior rules. Evaluators only ever remove from a Queue; they never
// add, so a queue's size only ever shrinks as rules consume it.
type Queue []string

// NewQueue builds a Queue from an artifact Set in sorted path order, giving
// every run over the same link a deterministic starting queue.
func NewQueue(s artifact.Set) Queue {
	return Queue(s.Paths())
}

// Contains reports whether p is still in the queue.
func (q Queue) Contains(p string) bool {
	for _, item := range q {
		if item == p {
			return true
		}
	}
	return false
}

// Filter returns the subset of q for which match returns true, preserving
// order.
func (q Queue) Filter(match func(string) bool) Queue {
	var out Queue
	for _, p := range q {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

// FilterPattern is Filter specialized to glob pattern matching.
func (q Queue) FilterPattern(pattern string) Queue {
	return q.Filter(func(p string) bool { return matchPattern(pattern, p) })
}

// Remove returns q with every path in victims removed, preserving the
// relative order of what remains.
func (q Queue) Remove(victims Queue) Queue {
	if len(victims) == 0 {
		return q
	}
	drop := make(map[string]bool, len(victims))
	for _, v := range victims {
		drop[v] = true
	}
	var out Queue
	for _, p := range q {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}

// SameSet reports whether a and b contain the same paths, irrespective of
// order (used by MODIFY to check the material/product match sets agree).
func (a Queue) SameSet(b Queue) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if !set[p] {
			return false
		}
	}
	return true
}
