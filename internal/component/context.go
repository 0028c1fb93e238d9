package component

import (
	"fmt"

	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"

	"github.com/frc4121/vvpipeline/internal/runid"
	"github.com/frc4121/vvpipeline/internal/spawner"
	"github.com/frc4121/vvpipeline/internal/value"
)

// Context is handed to Component.Run for one invocation. It exposes the
// assembled inputs, the channel through which outputs are published,
// the active run id, and the spawner dependents are scheduled on.
type Context struct {
	name   string
	id     runid.ID
	inputs map[string][]value.Value
	submit func(channel string, v value.Value)
	sp     spawner.Local
}

// NewContext assembles a Context for one invocation of the named
// component. inputs maps each slot name (PrimaryChannel for a Primary
// input) to the values bound to it, in edge-registration order.
func NewContext(name string, id runid.ID, inputs map[string][]value.Value, submit func(channel string, v value.Value), sp spawner.Local) *Context {
	return &Context{name: name, id: id, inputs: inputs, submit: submit, sp: sp}
}

// Get returns the values bound to slot, concatenated in
// edge-registration order. A single-source slot yields one element.
func (c *Context) Get(slot string) ([]value.Value, error) {
	vals, ok := c.inputs[slot]
	if !ok || len(vals) == 0 {
		return nil, pkgerrors.NewInputTypeMismatchError(c.name, slot, fmt.Errorf("no value bound"))
	}
	return vals, nil
}

// GetAs is a convenience over Get for single-source slots: it returns
// the one bound value and fails if the slot has more than one. GetTyped
// adds the downcast to a concrete type.
func (c *Context) GetAs(slot string) (value.Value, error) {
	vals, err := c.Get(slot)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, pkgerrors.NewInputTypeMismatchError(c.name, slot, fmt.Errorf("expected one value, got %d", len(vals)))
	}
	return vals[0], nil
}

// GetTyped downcasts the single value bound to slot to T.
func GetTyped[T any](c *Context, slot string) (T, error) {
	var zero T
	v, err := c.GetAs(slot)
	if err != nil {
		return zero, err
	}
	t, ok := value.As[T](v)
	if !ok {
		return zero, pkgerrors.NewInputTypeMismatchError(c.name, slot, fmt.Errorf("value is not of the requested type"))
	}
	return t, nil
}

// Submit publishes v on channel. Behavior depends on the channel's
// declared OutputKind (enforced by the runtime, not by Context itself):
// None drops and logs, Single accepts at most one call, Multiple
// accepts any number and appends a fresh branch to the run id of each.
func (c *Context) Submit(channel string, v value.Value) {
	c.submit(channel, v)
}

// RunID returns the run id this invocation is executing under.
func (c *Context) RunID() runid.ID { return c.id }

// Spawner returns the type-erased spawner dependents are scheduled on.
func (c *Context) Spawner() spawner.Local { return c.sp }

// Name returns the owning component's registered name, for diagnostics.
func (c *Context) Name() string { return c.name }
