package runner

import "github.com/frc4121/vvpipeline/internal/component"

// SlotSpec describes one compiled input slot of a component: its name
// (PrimaryChannel for the unnamed slot) and how many edges feed it. A
// Sources count greater than one marks a multi-source (fan-in) slot.
type SlotSpec struct {
	Name    string
	Sources int
}

// ComponentSpec is the compiled, immutable description of one
// component's place in the graph, as produced by graph.Compile.
type ComponentSpec struct {
	Name  string
	Comp  component.Component
	Slots []SlotSpec

	// SlotEdgeDepths[i][b] is the branch depth contributed by the edge
	// feeding Slots[i]'s branch b (registration order): the length of the
	// run id its values arrive with, i.e. one (the base run id) plus the
	// number of Multiple-kind emissions between the pipeline's seed and
	// that edge's source value.
	SlotEdgeDepths [][]int

	// Depth is this component's own firing depth: the length of the run
	// id it executes under, equal to the maximum SlotEdgeDepths entry (or
	// 1 if the component has no incoming edges and can only be seeded).
	Depth int
}

// Dependent records that submissions on one (component, channel) pair
// feed a specific slot/branch of a downstream component.
type Dependent struct {
	DstComponent     component.ID
	SlotIndex        int
	BranchWithinSlot int
	EdgeDepth        int
}
