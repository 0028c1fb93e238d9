// Package runner implements the scheduler: the object that owns the
// compiled component table, aggregates arriving inputs per downstream
// component, fires completed combinations on a supplied spawner, and
// tracks in-flight work. This is the hard part of the runtime — see
// state.go for the per-component aggregation state machine.
package runner

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync/atomic"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/rlog"
	"github.com/frc4121/vvpipeline/internal/runid"
	"github.com/frc4121/vvpipeline/internal/spawner"
	"github.com/frc4121/vvpipeline/internal/value"
	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"
)

// DependentKey identifies one (component, output channel) pair whose
// submissions fan out to a fixed dependents list, as produced by
// graph.Compile.
type DependentKey struct {
	Src     component.ID
	Channel string
}

// PipelineRunner is the compiled, runnable form of a PipelineGraph.
// Immutable after construction except for the per-component mutable
// state in states, the in-flight task counter, and nextRunID.
type PipelineRunner struct {
	specs      []ComponentSpec
	names      map[string]component.ID
	dependents map[DependentKey][]Dependent

	states []*componentState

	nextRunID uint32
	runCount  uint32
	running   int64

	log *rlog.Logger
}

// New constructs a PipelineRunner from a compiled component table. Used
// by graph.Compile; not normally called directly by component authors.
func New(specs []ComponentSpec, names map[string]component.ID, dependents map[DependentKey][]Dependent, log *rlog.Logger) *PipelineRunner {
	if log == nil {
		log = rlog.Nop()
	}
	states := make([]*componentState, len(specs))
	for i, spec := range specs {
		states[i] = newComponentState(spec)
	}
	return &PipelineRunner{specs: specs, names: names, dependents: dependents, states: states, log: log}
}

// Components iterates every registered (name, id) pair.
func (r *PipelineRunner) Components() iter.Seq2[string, component.ID] {
	return func(yield func(string, component.ID) bool) {
		names := make([]string, 0, len(r.names))
		for n := range r.names {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if !yield(n, r.names[n]) {
				return
			}
		}
	}
}

// Running reports the current count of in-flight component firings.
func (r *PipelineRunner) Running() int { return int(atomic.LoadInt64(&r.running)) }

// RunCount reports how many times Run has been called.
func (r *PipelineRunner) RunCount() uint32 { return atomic.LoadUint32(&r.runCount) }

// AssertClean reports, as a *pkgerrors.ResidueError, every component
// that still holds incomplete aggregation entries. Returns nil if every
// tree is empty.
func (r *PipelineRunner) AssertClean() error {
	residue := make(map[string]int)
	for i, spec := range r.specs {
		if n := r.states[i].residue(); n > 0 {
			residue[spec.Name] = n
		}
	}
	if len(residue) == 0 {
		return nil
	}
	return pkgerrors.NewResidueError(residue)
}

// Run allocates a fresh base run id, delivers seedInput to seed's
// inputs, and enqueues seed's task on sp. ctx is checked once up front;
// the runtime has no built-in cancellation or timeout model (spec §5),
// so a caller that wants to stop mid-run must stop calling Run and let
// the spawner's scope drain.
func (r *PipelineRunner) Run(ctx context.Context, seed component.ID, seedInput SeedInput, sp spawner.Spawner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if int(seed) >= len(r.specs) || !seed.Valid() {
		return pkgerrors.NewUnknownComponentError(fmt.Sprintf("id=%d", seed))
	}
	spec := r.specs[seed]

	inputs, err := r.assembleSeedInputs(spec, seedInput)
	if err != nil {
		return err
	}

	base := atomic.AddUint32(&r.nextRunID, 1) - 1
	atomic.AddUint32(&r.runCount, 1)
	id := runid.New(base)

	local := spawner.NewLocal(sp)
	r.fire(seed, id, inputs, local)
	return nil
}

func (r *PipelineRunner) assembleSeedInputs(spec ComponentSpec, seedInput SeedInput) (map[string][]value.Value, error) {
	inputs := make(map[string][]value.Value, len(spec.Slots))
	if seedInput.isPrimary() {
		if len(spec.Slots) != 1 || spec.Slots[0].Name != component.PrimaryChannel {
			return nil, pkgerrors.NewMissingInputError(spec.Name, component.PrimaryChannel)
		}
		if seedInput.primary == nil {
			return nil, pkgerrors.NewMissingInputError(spec.Name, component.PrimaryChannel)
		}
		inputs[component.PrimaryChannel] = []value.Value{seedInput.primary}
		return inputs, nil
	}
	for _, s := range spec.Slots {
		v, ok := seedInput.named[s.Name]
		if !ok {
			return nil, pkgerrors.NewMissingInputError(spec.Name, s.Name)
		}
		inputs[s.Name] = []value.Value{v}
	}
	return inputs, nil
}

// fire spawns one invocation of component id under run id rid with the
// given assembled inputs.
func (r *PipelineRunner) fire(id component.ID, rid runid.ID, inputs map[string][]value.Value, sp spawner.Local) {
	atomic.AddInt64(&r.running, 1)
	spec := r.specs[id]
	sp.Spawn(func() {
		defer atomic.AddInt64(&r.running, -1)
		r.invoke(id, spec, rid, inputs, sp)
	})
}

func (r *PipelineRunner) invoke(id component.ID, spec ComponentSpec, rid runid.ID, inputs map[string][]value.Value, sp spawner.Local) {
	submit := func(channel string, v value.Value) {
		r.submit(id, channel, rid, v, sp)
	}
	ctx := component.NewContext(spec.Name, rid, inputs, submit, sp)

	defer func() {
		if rec := recover(); rec != nil {
			panicErr := pkgerrors.NewPanicError(spec.Name, rec)
			r.log.Error(panicErr, fmt.Sprintf("component panicked (run %s)", rid.String()))
		}
	}()

	if err := spec.Comp.Run(ctx); err != nil {
		r.log.Warn("component returned without completing", map[string]any{
			"component": spec.Name,
			"run_id":    rid.String(),
			"error":     err.Error(),
		})
	}
}

// submit implements spec §4.4.3: the submission-to-aggregation
// algorithm, including Multiple branch allocation, Single double-submit
// detection, and the deep-key/shallow-cache aggregation-tree fill.
func (r *PipelineRunner) submit(src component.ID, channel string, rid runid.ID, v value.Value, sp spawner.Local) {
	srcState := r.states[src]
	srcSpec := r.specs[src]
	kind := srcSpec.Comp.OutputKind(channel)

	switch kind {
	case component.KindNone:
		r.log.Warn("dropped submission on undeclared channel", map[string]any{
			"component": srcSpec.Name,
			"channel":   channel,
		})
		return
	case component.KindSingle:
		srcState.mu.Lock()
		key := channel + "|" + rid.Key()
		if srcState.singleSubmitted[key] {
			srcState.mu.Unlock()
			dsErr := pkgerrors.NewDoubleSubmitError(srcSpec.Name, channel)
			r.log.Warn("double submit on single-output channel", map[string]any{
				"component": srcSpec.Name,
				"channel":   channel,
				"error":     dsErr.Error(),
			})
			return
		}
		srcState.singleSubmitted[key] = true
		srcState.mu.Unlock()
	case component.KindMultiple:
		srcState.mu.Lock()
		b := srcState.firstOpen
		srcState.firstOpen++
		srcState.mu.Unlock()
		rid = rid.Push(b)
	}

	deps := r.dependents[DependentKey{Src: src, Channel: channel}]
	if len(deps) == 0 {
		return
	}

	var toFire []fireRequest
	for _, dep := range deps {
		dstState := r.states[dep.DstComponent]
		dstSpec := r.specs[dep.DstComponent]

		dstState.mu.Lock()
		if dep.EdgeDepth >= dstSpec.Depth {
			deepID := rid.Prefix(dstSpec.Depth)
			entry := dstState.ensureEntry(deepID)
			if !entry.done(dep.SlotIndex, dep.BranchWithinSlot) {
				entry.fill(dep.SlotIndex, dep.BranchWithinSlot, v)
			}
			if entry.complete() {
				f := dstState.removeAndAssemble(deepID.Key())
				toFire = append(toFire, fireRequest{id: dep.DstComponent, spec: dstSpec, result: f})
			}
		} else {
			shallowID := rid.Prefix(dep.EdgeDepth)
			ck := shallowCacheKey(dep.SlotIndex, dep.BranchWithinSlot, shallowID)
			dstState.shallowCache[ck] = v
			for key, entry := range dstState.trees {
				deepID := dstState.treeRunIDs[key]
				if !deepID.StartsWith(shallowID) {
					continue
				}
				if entry.done(dep.SlotIndex, dep.BranchWithinSlot) {
					continue
				}
				entry.fill(dep.SlotIndex, dep.BranchWithinSlot, v)
				if entry.complete() {
					f := dstState.removeAndAssemble(key)
					toFire = append(toFire, fireRequest{id: dep.DstComponent, spec: dstSpec, result: f})
				}
			}
		}
		dstState.mu.Unlock()
	}

	for _, req := range toFire {
		r.fire(req.id, req.result.runID, req.result.inputs, sp)
	}
}

type fireRequest struct {
	id     component.ID
	spec   ComponentSpec
	result fired
}
