package runner

import (
	"strconv"
	"sync"
	"time"

	"github.com/frc4121/vvpipeline/internal/runid"
	"github.com/frc4121/vvpipeline/internal/value"
)

// partialEntry holds one in-progress aggregation: the values received
// so far for every (slot, branch) pair, and how many remain.
type partialEntry struct {
	slotVals  [][]value.Value
	slotDone  [][]bool
	remaining int

	// createdAt lets the residue sweeper (sweeper.go) identify entries
	// that have sat incomplete longer than rtconfig.ResidueSweepHorizon.
	createdAt time.Time
}

func newPartialEntry(spec ComponentSpec) *partialEntry {
	slotVals := make([][]value.Value, len(spec.Slots))
	slotDone := make([][]bool, len(spec.Slots))
	remaining := 0
	for i, s := range spec.Slots {
		n := s.Sources
		if n < 1 {
			n = 1
		}
		slotVals[i] = make([]value.Value, n)
		slotDone[i] = make([]bool, n)
		remaining += n
	}
	return &partialEntry{slotVals: slotVals, slotDone: slotDone, remaining: remaining, createdAt: time.Now()}
}

// fill records v for (slot, branch). Returns false if that branch was
// already filled (a defensive no-op; the firing invariants should make
// this unreachable in practice).
func (e *partialEntry) fill(slot, branch int, v value.Value) bool {
	if e.slotDone[slot][branch] {
		return false
	}
	e.slotVals[slot][branch] = v
	e.slotDone[slot][branch] = true
	e.remaining--
	return true
}

func (e *partialEntry) done(slot, branch int) bool {
	return e.slotDone[slot][branch]
}

func (e *partialEntry) complete() bool {
	return e.remaining == 0
}

// assemble builds the final per-slot input vectors in declared slot
// order, ready to hand to component.NewContext.
func (e *partialEntry) assemble(spec ComponentSpec) map[string][]value.Value {
	out := make(map[string][]value.Value, len(spec.Slots))
	for i, s := range spec.Slots {
		out[s.Name] = e.slotVals[i]
	}
	return out
}

// componentState is the per-component mutable aggregation state guarded
// by one mutex, per spec §4.4.2.
type componentState struct {
	spec ComponentSpec

	mu sync.Mutex

	firstOpen uint32 // next free branch index for this component's Multiple outputs

	trees      map[string]*partialEntry
	treeRunIDs map[string]runid.ID

	// shallowCache holds values submitted by an edge whose depth is less
	// than this component's own Depth: they must be copied into every
	// existing or future aggregation entry whose run id extends the
	// shallow value's run id as a prefix.
	shallowCache map[string]value.Value

	// singleSubmitted tracks which (channel, run id) pairs have already
	// submitted once on a Single-kind output, to detect and drop extras.
	singleSubmitted map[string]bool
}

func newComponentState(spec ComponentSpec) *componentState {
	return &componentState{
		spec:            spec,
		trees:           make(map[string]*partialEntry),
		treeRunIDs:      make(map[string]runid.ID),
		shallowCache:    make(map[string]value.Value),
		singleSubmitted: make(map[string]bool),
	}
}

func shallowCacheKey(slot, branch int, id runid.ID) string {
	return strconv.Itoa(slot) + "|" + strconv.Itoa(branch) + "|" + id.Key()
}

// ensureEntry returns the aggregation entry for deepID, creating it
// (and pre-populating any cached shallow values) if necessary. Caller
// must hold cs.mu.
func (cs *componentState) ensureEntry(deepID runid.ID) *partialEntry {
	key := deepID.Key()
	if entry, ok := cs.trees[key]; ok {
		return entry
	}
	entry := newPartialEntry(cs.spec)
	for i, s := range cs.spec.Slots {
		n := s.Sources
		if n < 1 {
			n = 1
		}
		for b := 0; b < n; b++ {
			edgeDepth := cs.spec.SlotEdgeDepths[i][b]
			if edgeDepth >= cs.spec.Depth {
				continue
			}
			ck := shallowCacheKey(i, b, deepID.Prefix(edgeDepth))
			if v, ok := cs.shallowCache[ck]; ok {
				entry.fill(i, b, v)
			}
		}
	}
	cs.trees[key] = entry
	cs.treeRunIDs[key] = deepID
	return entry
}

// fired describes one completed aggregation ready to spawn.
type fired struct {
	runID  runid.ID
	inputs map[string][]value.Value
}

func (cs *componentState) removeAndAssemble(key string) fired {
	entry := cs.trees[key]
	id := cs.treeRunIDs[key]
	delete(cs.trees, key)
	delete(cs.treeRunIDs, key)
	return fired{runID: id, inputs: entry.assemble(cs.spec)}
}

// residue reports how many aggregation entries remain pending.
func (cs *componentState) residue() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.trees)
}

// agedEntry names one aggregation entry the residue sweeper found older
// than its configured horizon.
type agedEntry struct {
	runID runid.ID
	age   time.Duration
}

// agedEntries returns every pending entry whose age is at least
// horizon, as of now. Read-only: the sweeper only logs, it never
// deletes a real pending entry.
func (cs *componentState) agedEntries(horizon time.Duration, now time.Time) []agedEntry {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var out []agedEntry
	for key, entry := range cs.trees {
		age := now.Sub(entry.createdAt)
		if age >= horizon {
			out = append(out, agedEntry{runID: cs.treeRunIDs[key], age: age})
		}
	}
	return out
}
