// Package errors defines the typed error kinds returned by the graph
// builder and produced (but never propagated) by the runtime scheduler.
package errors

import "fmt"

// UnknownComponentError is returned when an operation references a
// component id or name that was never registered.
type UnknownComponentError struct {
	Name string
}

// NewUnknownComponentError constructs an UnknownComponentError.
func NewUnknownComponentError(name string) error {
	return &UnknownComponentError{Name: name}
}

func (e *UnknownComponentError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown component %q", e.Name)
}

// DuplicateNameError is returned by AddNamedComponent when the name is
// already registered in the graph.
type DuplicateNameError struct {
	Name string
}

// NewDuplicateNameError constructs a DuplicateNameError.
func NewDuplicateNameError(name string) error {
	return &DuplicateNameError{Name: name}
}

func (e *DuplicateNameError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("duplicate component name %q", e.Name)
}

// ChannelKindMismatchError is returned by AddDependency when the source
// channel, destination slot, or their multiplicities are incompatible.
type ChannelKindMismatchError struct {
	Component string
	Channel   string
	Reason    string
}

// NewChannelKindMismatchError constructs a ChannelKindMismatchError.
func NewChannelKindMismatchError(component, channel, reason string) error {
	return &ChannelKindMismatchError{Component: component, Channel: channel, Reason: reason}
}

func (e *ChannelKindMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("channel kind mismatch on %s.%s: %s", e.Component, e.Channel, e.Reason)
}

// MissingInputError is returned by Compile when a named input slot has
// no incoming edge.
type MissingInputError struct {
	Component string
	Slot      string
}

// NewMissingInputError constructs a MissingInputError.
func NewMissingInputError(component, slot string) error {
	return &MissingInputError{Component: component, Slot: slot}
}

func (e *MissingInputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("missing input: %s has no incoming edge for slot %q", e.Component, e.Slot)
}

// CycleError is returned by AddDependency or Compile when an edge would
// close, or already closes, a cycle.
type CycleError struct {
	Path []string
}

// NewCycleError constructs a CycleError naming the cyclic path.
func NewCycleError(path []string) error {
	return &CycleError{Path: append([]string(nil), path...)}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Path) == 0 {
		return "cycle detected in component graph"
	}
	out := "cycle detected: "
	for i, name := range e.Path {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return out
}

// InputTypeMismatchError is logged, never returned to the caller of
// PipelineRunner.Run, when a component fails to downcast a bound input.
type InputTypeMismatchError struct {
	Component string
	Slot      string
	Err       error
}

// NewInputTypeMismatchError constructs an InputTypeMismatchError.
func NewInputTypeMismatchError(component, slot string, err error) error {
	return &InputTypeMismatchError{Component: component, Slot: slot, Err: err}
}

func (e *InputTypeMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("input type mismatch: %s slot %q: %v", e.Component, e.Slot, e.Err)
}

// Unwrap exposes the underlying error.
func (e *InputTypeMismatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DoubleSubmitError is logged when a component calls Submit more than
// once on a channel declared Single.
type DoubleSubmitError struct {
	Component string
	Channel   string
}

// NewDoubleSubmitError constructs a DoubleSubmitError.
func NewDoubleSubmitError(component, channel string) error {
	return &DoubleSubmitError{Component: component, Channel: channel}
}

func (e *DoubleSubmitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("double submit on single-output channel %s.%s", e.Component, e.Channel)
}

// PanicError wraps a recovered panic raised from within a component's
// Run method, recovered by the runner around each invocation and
// surfaced for logging.
type PanicError struct {
	Component string
	Recovered any
}

// NewPanicError constructs a PanicError.
func NewPanicError(component string, recovered any) error {
	return &PanicError{Component: component, Recovered: recovered}
}

func (e *PanicError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("panic in component %s: %v", e.Component, e.Recovered)
}

// ResidueError is returned by AssertClean when one or more components
// still hold incomplete aggregation entries.
type ResidueError struct {
	// Components maps an affected component name to the number of
	// pending aggregation-tree entries left behind.
	Components map[string]int
}

// NewResidueError constructs a ResidueError.
func NewResidueError(components map[string]int) error {
	return &ResidueError{Components: components}
}

func (e *ResidueError) Error() string {
	if e == nil {
		return ""
	}
	out := "aggregation residue remains:"
	for name, count := range e.Components {
		out += fmt.Sprintf(" %s=%d", name, count)
	}
	return out
}
