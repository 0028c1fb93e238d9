// Package graph implements the staged PipelineGraph builder: component
// registration, typed-edge recording with structural validation, cycle
// rejection at registration time, and compilation into a runnable
// *runner.PipelineRunner.
package graph

import (
	"fmt"

	"github.com/frc4121/vvpipeline/internal/component"
	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"
)

// Endpoint names one side of an edge: a component id and one of its
// channels (an output channel for a source, an input slot for a
// destination; component.PrimaryChannel for the unnamed case).
type Endpoint struct {
	Component component.ID
	Channel   string
}

type edge struct {
	src Endpoint
	dst Endpoint
}

type registered struct {
	name string
	comp component.Component
}

// PipelineGraph accumulates named components and typed edges, rejecting
// duplicates, unknown references, channel-kind mismatches, and cycles
// as they are added, then compiles the result into a PipelineRunner.
//
// Not safe for concurrent use; callers build the graph from a single
// goroutine before compiling, matching the staged-builder shape of
// every other builder in this corpus.
type PipelineGraph struct {
	components []registered
	names      map[string]component.ID
	edges      []edge

	// reach[a] is the set of components reachable from a via recorded
	// edges, kept incrementally so AddDependency can reject a cycle in
	// O(V+E) without re-walking the whole graph from scratch.
	reach map[component.ID]map[component.ID]bool
}

// New creates an empty PipelineGraph.
func New() *PipelineGraph {
	return &PipelineGraph{names: make(map[string]component.ID), reach: make(map[component.ID]map[component.ID]bool)}
}

// AddNamedComponent registers c under name, which must be non-empty and
// not already registered. A Named input shape with an empty or repeated
// slot name is rejected.
func (g *PipelineGraph) AddNamedComponent(c component.Component, name string) (component.ID, error) {
	if name == "" {
		return component.PlaceholderID, pkgerrors.NewChannelKindMismatchError("", "", "component name must not be empty")
	}
	if _, exists := g.names[name]; exists {
		return component.PlaceholderID, pkgerrors.NewDuplicateNameError(name)
	}
	if inputs := c.Inputs(); !inputs.IsPrimary() {
		seen := make(map[string]bool)
		for _, slot := range inputs.Slots() {
			if slot == "" || seen[slot] {
				return component.PlaceholderID, pkgerrors.NewChannelKindMismatchError(name, slot, "named input slots must be non-empty and unique")
			}
			seen[slot] = true
		}
	}
	id := component.ID(len(g.components))
	g.components = append(g.components, registered{name: name, comp: c})
	g.names[name] = id
	g.reach[id] = make(map[component.ID]bool)
	return id, nil
}

func (g *PipelineGraph) lookup(id component.ID) (registered, error) {
	if int(id) >= len(g.components) || !id.Valid() {
		return registered{}, pkgerrors.NewUnknownComponentError(fmt.Sprintf("id=%d", id))
	}
	return g.components[id], nil
}

// AddDependency records an edge from src to dst. It fails if either
// endpoint is unknown, if src==dst (self-loop), if src's channel is not
// produced, if dst's channel does not match its declared input shape,
// or if the edge would close a cycle.
func (g *PipelineGraph) AddDependency(src, dst Endpoint) error {
	srcComp, err := g.lookup(src.Component)
	if err != nil {
		return err
	}
	dstComp, err := g.lookup(dst.Component)
	if err != nil {
		return err
	}
	if src.Component == dst.Component {
		return pkgerrors.NewChannelKindMismatchError(srcComp.name, src.Channel, "self-loops are not allowed")
	}
	if srcComp.comp.OutputKind(src.Channel) == component.KindNone {
		return pkgerrors.NewChannelKindMismatchError(srcComp.name, src.Channel, "channel is not produced")
	}
	inputs := dstComp.comp.Inputs()
	if inputs.IsPrimary() {
		if dst.Channel != component.PrimaryChannel {
			return pkgerrors.NewChannelKindMismatchError(dstComp.name, dst.Channel, "component declares a Primary input")
		}
	} else if _, ok := inputs.SlotIndex(dst.Channel); !ok {
		return pkgerrors.NewChannelKindMismatchError(dstComp.name, dst.Channel, "not a declared named input slot")
	}

	if g.reachable(dst.Component, src.Component) {
		return pkgerrors.NewCycleError(g.cyclePath(dst.Component, src.Component, srcComp.name))
	}

	g.edges = append(g.edges, edge{src: src, dst: dst})
	g.extendReach(src.Component, dst.Component)
	return nil
}

// reachable reports whether to is reachable from from via recorded
// edges (including from==to, trivially).
func (g *PipelineGraph) reachable(from, to component.ID) bool {
	if from == to {
		return true
	}
	return g.reach[from][to]
}

// extendReach folds in the new edge src->dst: dst and everything
// reachable from dst become reachable from src and from everything that
// already reaches src.
func (g *PipelineGraph) extendReach(src, dst component.ID) {
	newly := map[component.ID]bool{dst: true}
	for t := range g.reach[dst] {
		newly[t] = true
	}
	for _, id := range g.allIDs() {
		if id == src || g.reach[id][src] {
			for t := range newly {
				g.reach[id][t] = true
			}
		}
	}
}

func (g *PipelineGraph) allIDs() []component.ID {
	ids := make([]component.ID, len(g.components))
	for i := range g.components {
		ids[i] = component.ID(i)
	}
	return ids
}

// cyclePath renders a human-readable component-name path for a CycleError,
// best-effort: src -> dst -> ... -> src.
func (g *PipelineGraph) cyclePath(from, to component.ID, closingEdgeName string) []string {
	path := []string{closingEdgeName, g.components[from].name}
	visited := map[component.ID]bool{from: true}
	cur := from
	for cur != to {
		advanced := false
		for _, e := range g.edges {
			if e.src.Component == cur && !visited[e.dst.Component] {
				path = append(path, g.components[e.dst.Component].name)
				visited[e.dst.Component] = true
				cur = e.dst.Component
				advanced = true
				break
			}
		}
		if !advanced {
			break
		}
	}
	return path
}
