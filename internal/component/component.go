// Package component defines the pluggable unit of computation executed
// by the pipeline runtime: its declared input shape, its per-channel
// output multiplicity, and the context handed to it at invocation time.
package component

// ID identifies a component by a dense, zero-based integer assigned at
// registration time. PlaceholderID marks an unset reference.
type ID uint32

// PlaceholderID is the reserved sentinel for "no component", mirroring
// the all-ones placeholder used by the engine this runtime is modeled
// on.
const PlaceholderID ID = ^ID(0)

// Valid reports whether id refers to a real, registered component.
func (id ID) Valid() bool { return id != PlaceholderID }

// PrimaryChannel is the empty channel name, used both for the single
// unnamed input slot and for a component's primary output.
const PrimaryChannel = ""

// Inputs describes the shape of a component's input: either the single
// unnamed Primary slot, or a Named set of non-empty slot names.
type Inputs struct {
	named bool
	slots []string
}

// Primary returns an Inputs value describing a single unnamed slot.
func Primary() Inputs { return Inputs{} }

// Named returns an Inputs value describing the given set of named
// slots. Slot names must be non-empty and are not deduplicated by this
// constructor; callers that pass duplicates will fail validation when
// the graph registers the component.
func Named(slots ...string) Inputs {
	return Inputs{named: true, slots: append([]string(nil), slots...)}
}

// IsPrimary reports whether these Inputs describe the unnamed slot.
func (i Inputs) IsPrimary() bool { return !i.named }

// Slots returns the named slots, or a single PrimaryChannel slot if
// IsPrimary, so callers can always range over Slots() uniformly.
func (i Inputs) Slots() []string {
	if !i.named {
		return []string{PrimaryChannel}
	}
	return i.slots
}

// SlotIndex returns the position of name within Slots(), used to map a
// slot name to its compiled slot index.
func (i Inputs) SlotIndex(name string) (int, bool) {
	for idx, s := range i.Slots() {
		if s == name {
			return idx, true
		}
	}
	return 0, false
}

// Kind is the multiplicity of a component's output channel.
type Kind int

const (
	// KindNone means the channel is not produced by this component.
	KindNone Kind = iota
	// KindSingle means exactly one value is submitted per invocation.
	KindSingle
	// KindMultiple means zero or more values may be submitted per
	// invocation, each becoming a new branch of the run id.
	KindMultiple
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSingle:
		return "single"
	case KindMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// Component is the contract every pipeline node must satisfy.
//
// Run must be pure with respect to graph state: its only outward effect
// on the runtime is via Context.Submit. Internal side effects (files,
// network, logging) are the component author's business.
type Component interface {
	// Inputs declares this component's input shape.
	Inputs() Inputs

	// OutputKind declares the multiplicity of the named output channel.
	// The empty channel name is the primary output.
	OutputKind(channel string) Kind

	// Run performs one invocation given the assembled context.
	Run(ctx *Context) error
}

// Func adapts a plain function to the Component interface for ad hoc or
// test components that need no named type.
type Func struct {
	InputsFn     func() Inputs
	OutputKindFn func(channel string) Kind
	RunFn        func(ctx *Context) error
}

func (f Func) Inputs() Inputs { return f.InputsFn() }

func (f Func) OutputKind(channel string) Kind { return f.OutputKindFn(channel) }

func (f Func) Run(ctx *Context) error { return f.RunFn(ctx) }
