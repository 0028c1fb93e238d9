// Package runid implements the run identifier: a small vector of
// integers identifying one firing lineage through the pipeline graph.
package runid

import "strconv"

// ID is a vector of branch indices. The first element is the base run
// id, unique per call to PipelineRunner.Run. Additional elements are
// appended whenever an upstream Multiple-kind channel emits a value,
// one per emission.
type ID struct {
	invocs []uint32
}

// New returns an ID seeded with a single base run id.
func New(base uint32) ID {
	return ID{invocs: []uint32{base}}
}

// Base returns the base run id (the first element).
func (id ID) Base() uint32 {
	if len(id.invocs) == 0 {
		return 0
	}
	return id.invocs[0]
}

// Push returns a new ID with branch appended. The receiver is never
// mutated: every Multiple-kind submission must derive its own lineage
// without disturbing the run id held by the emitting invocation.
func (id ID) Push(branch uint32) ID {
	next := make([]uint32, len(id.invocs)+1)
	copy(next, id.invocs)
	next[len(id.invocs)] = branch
	return ID{invocs: next}
}

// Len returns the number of elements in the id, including the base.
func (id ID) Len() int { return len(id.invocs) }

// Prefix returns the first n elements as a new ID. Panics if n exceeds
// Len(); callers only ever request a prefix known to be in range.
func (id ID) Prefix(n int) ID {
	if n > len(id.invocs) {
		panic("runid: prefix length exceeds id length")
	}
	cut := make([]uint32, n)
	copy(cut, id.invocs[:n])
	return ID{invocs: cut}
}

// StartsWith reports whether other is a prefix of id.
func (id ID) StartsWith(other ID) bool {
	if len(other.invocs) > len(id.invocs) {
		return false
	}
	for i, v := range other.invocs {
		if id.invocs[i] != v {
			return false
		}
	}
	return true
}

// Matches reports whether id and other are comparable for joining: one
// is a prefix of the other.
func (id ID) Matches(other ID) bool {
	return id.StartsWith(other) || other.StartsWith(id)
}

// Key renders a comparable, map-safe string encoding of id, used as the
// aggregation tree's prefix key.
func (id ID) Key() string {
	var b []byte
	for i, v := range id.invocs {
		if i > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return string(b)
}

// String renders the id as dot-joined integers, e.g. "3.0.2".
func (id ID) String() string {
	return id.Key()
}
