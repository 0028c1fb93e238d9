package graph

import (
	"sort"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/rlog"
	"github.com/frc4121/vvpipeline/internal/runner"
	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"
)

// CompileOption configures Compile; currently only the diagnostic
// logger is exposed, matching the teacher's functional-options pattern
// for its other constructors.
type CompileOption func(*compileOpts)

type compileOpts struct {
	log *rlog.Logger
}

// WithLogger attaches a structured logger to the compiled runner for
// dropped-submission, double-submit, and residue diagnostics.
func WithLogger(log *rlog.Logger) CompileOption {
	return func(o *compileOpts) { o.log = log }
}

// Compile validates the accumulated edges, performs the common-ancestor
// depth precomputation, and returns a NameResolver plus a ready-to-run
// *runner.PipelineRunner. See spec §4.3 for the algorithm this follows.
func (g *PipelineGraph) Compile(opts ...CompileOption) (*NameResolver, *runner.PipelineRunner, error) {
	o := &compileOpts{}
	for _, opt := range opts {
		opt(o)
	}

	order, err := g.toposort()
	if err != nil {
		return nil, nil, err
	}

	if err := g.checkNamedInputsSatisfied(); err != nil {
		return nil, nil, err
	}

	slotSpecs, slotIndex := g.buildSlots()
	depths := g.computeDepths(order, slotIndex)
	slotEdgeDepths := g.buildSlotEdgeDepths(slotIndex, depths)

	specs := make([]runner.ComponentSpec, len(g.components))
	for i, c := range g.components {
		d := depths[component.ID(i)]
		if d == 0 {
			d = 1
		}
		specs[i] = runner.ComponentSpec{
			Name:           c.name,
			Comp:           c.comp,
			Slots:          slotSpecs[component.ID(i)],
			SlotEdgeDepths: slotEdgeDepths[component.ID(i)],
			Depth:          d,
		}
	}

	dependents := g.buildDependents(slotIndex, slotEdgeDepths)

	names := make(map[string]component.ID, len(g.names))
	for n, id := range g.names {
		names[n] = id
	}

	resolver := newResolver(names)
	rn := runner.New(specs, names, dependents, o.log)
	return resolver, rn, nil
}

// toposort runs Kahn's algorithm over the recorded edges, returning a
// deterministic processing order (ties broken by id) or a CycleError if
// a cycle survives (defensive: AddDependency already rejects cycles as
// they are added).
func (g *PipelineGraph) toposort() ([]component.ID, error) {
	indeg := make(map[component.ID]int, len(g.components))
	for i := range g.components {
		indeg[component.ID(i)] = 0
	}
	for _, e := range g.edges {
		indeg[e.dst.Component]++
	}

	var ready []component.ID
	for id, n := range indeg {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	outEdges := make(map[component.ID][]component.ID)
	for _, e := range g.edges {
		outEdges[e.src.Component] = append(outEdges[e.src.Component], e.dst.Component)
	}

	var order []component.ID
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		var newlyReady []component.ID
		for _, dst := range outEdges[next] {
			indeg[dst]--
			if indeg[dst] == 0 {
				newlyReady = append(newlyReady, dst)
			}
		}
		sort.Slice(newlyReady, func(i, j int) bool { return newlyReady[i] < newlyReady[j] })
		ready = append(ready, newlyReady...)
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	}

	if len(order) != len(g.components) {
		return nil, pkgerrors.NewCycleError(nil)
	}
	return order, nil
}

// checkNamedInputsSatisfied verifies every Named input slot of every
// component has at least one incoming edge.
func (g *PipelineGraph) checkNamedInputsSatisfied() error {
	covered := make(map[component.ID]map[string]bool)
	for _, e := range g.edges {
		if covered[e.dst.Component] == nil {
			covered[e.dst.Component] = make(map[string]bool)
		}
		covered[e.dst.Component][e.dst.Channel] = true
	}
	for i, c := range g.components {
		id := component.ID(i)
		inputs := c.comp.Inputs()
		if inputs.IsPrimary() {
			continue
		}
		for _, slot := range inputs.Slots() {
			if !covered[id][slot] {
				return pkgerrors.NewMissingInputError(c.name, slot)
			}
		}
	}
	return nil
}

// buildSlots computes, per component, the ordered SlotSpec list (each
// carrying its branch count as Sources) and a lookup from
// (component, slot name) to slot index.
func (g *PipelineGraph) buildSlots() (map[component.ID][]runner.SlotSpec, map[component.ID]map[string]int) {
	sources := make(map[component.ID]map[string]int)
	for _, e := range g.edges {
		if sources[e.dst.Component] == nil {
			sources[e.dst.Component] = make(map[string]int)
		}
		sources[e.dst.Component][e.dst.Channel]++
	}

	specs := make(map[component.ID][]runner.SlotSpec, len(g.components))
	index := make(map[component.ID]map[string]int, len(g.components))
	for i, c := range g.components {
		id := component.ID(i)
		slotNames := c.comp.Inputs().Slots()
		slots := make([]runner.SlotSpec, len(slotNames))
		idx := make(map[string]int, len(slotNames))
		for si, name := range slotNames {
			n := sources[id][name]
			if n == 0 {
				n = 1 // unfed Primary slot: filled by seeding only
			}
			slots[si] = runner.SlotSpec{Name: name, Sources: n}
			idx[name] = si
		}
		specs[id] = slots
		index[id] = idx
	}
	return specs, index
}

// computeDepths implements spec §9's common-ancestor depth
// precomputation: depth(c) is the run-id length c fires under. A
// component with no incoming edges fires only when seeded directly, at
// depth 1 (the bare base run id). Otherwise depth(c) is the maximum,
// over incoming edges (u,ch)->c, of depth(u) plus one if u's channel is
// Multiple-kind (a Multiple submission pushes a fresh branch onto the
// run id before reaching any dependent).
func (g *PipelineGraph) computeDepths(order []component.ID, _ map[component.ID]map[string]int) map[component.ID]int {
	depth := make(map[component.ID]int, len(g.components))
	hasIncoming := make(map[component.ID]bool, len(g.components))
	for _, e := range g.edges {
		hasIncoming[e.dst.Component] = true
	}
	for i := range g.components {
		id := component.ID(i)
		if !hasIncoming[id] {
			depth[id] = 1
		}
	}

	incomingByDst := make(map[component.ID][]edge)
	for _, e := range g.edges {
		incomingByDst[e.dst.Component] = append(incomingByDst[e.dst.Component], e)
	}

	for _, id := range order {
		if !hasIncoming[id] {
			continue
		}
		best := 0
		for _, e := range incomingByDst[id] {
			srcComp := g.components[e.src.Component]
			contrib := depth[e.src.Component]
			if srcComp.comp.OutputKind(e.src.Channel) == component.KindMultiple {
				contrib++
			}
			if contrib > best {
				best = contrib
			}
		}
		depth[id] = best
	}
	return depth
}

// buildSlotEdgeDepths computes, per component, per slot, per branch
// (edge-registration order within that slot), the run-id length
// contributed by that specific incoming edge.
func (g *PipelineGraph) buildSlotEdgeDepths(slotIndex map[component.ID]map[string]int, depths map[component.ID]int) map[component.ID][][]int {
	result := make(map[component.ID][][]int, len(g.components))
	for i, c := range g.components {
		id := component.ID(i)
		slots := c.comp.Inputs().Slots()
		depthsForID := make([][]int, len(slots))
		for si := range slots {
			depthsForID[si] = nil
		}
		result[id] = depthsForID
	}

	for _, e := range g.edges {
		si := slotIndex[e.dst.Component][e.dst.Channel]
		srcComp := g.components[e.src.Component]
		contrib := depths[e.src.Component]
		if srcComp.comp.OutputKind(e.src.Channel) == component.KindMultiple {
			contrib++
		}
		result[e.dst.Component][si] = append(result[e.dst.Component][si], contrib)
	}

	// Unfed Primary slots (filled only by seeding) get a single
	// depth-1 synthetic branch, matching buildSlots' Sources=1 default.
	for i, c := range g.components {
		id := component.ID(i)
		for si, slot := range c.comp.Inputs().Slots() {
			if len(result[id][si]) == 0 {
				_ = slot
				result[id][si] = []int{1}
			}
		}
	}
	return result
}

// buildDependents inverts the edge list into a per-(src,channel)
// dependents table, the form the runner consumes.
func (g *PipelineGraph) buildDependents(slotIndex map[component.ID]map[string]int, slotEdgeDepths map[component.ID][][]int) map[runner.DependentKey][]runner.Dependent {
	branchCounters := make(map[component.ID]map[string]int)
	deps := make(map[runner.DependentKey][]runner.Dependent)
	for _, e := range g.edges {
		if branchCounters[e.dst.Component] == nil {
			branchCounters[e.dst.Component] = make(map[string]int)
		}
		si := slotIndex[e.dst.Component][e.dst.Channel]
		branch := branchCounters[e.dst.Component][e.dst.Channel]
		branchCounters[e.dst.Component][e.dst.Channel]++

		key := runner.DependentKey{Src: e.src.Component, Channel: e.src.Channel}
		deps[key] = append(deps[key], runner.Dependent{
			DstComponent:     e.dst.Component,
			SlotIndex:        si,
			BranchWithinSlot: branch,
			EdgeDepth:        slotEdgeDepths[e.dst.Component][si][branch],
		})
	}
	return deps
}
