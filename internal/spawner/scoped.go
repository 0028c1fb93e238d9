package spawner

import (
	"context"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// PanicHandler is invoked when a spawned task panics. recovered is the
// value passed to panic(); stack is the captured stack trace.
type PanicHandler func(recovered any, stack []byte)

// Scoped is the default parallel spawner: tasks spawned within a scope
// are joined when Wait returns, may migrate across worker goroutines,
// and a recovered panic is reported through the configured PanicHandler
// rather than crashing the process.
//
// Unlike a raw errgroup.Group, Scoped never treats a panicking task as a
// reason to cancel its sibling tasks — per spec §4.4.6 a component panic
// abandons only that task's run id, it does not stop the scope.
type Scoped struct {
	group   *errgroup.Group
	onPanic PanicHandler
}

// NewScoped creates a Scoped spawner bound to ctx. The returned Wait
// function blocks until every spawned task (transitively, including
// tasks spawned by other tasks) has returned.
func NewScoped(ctx context.Context, onPanic PanicHandler) (*Scoped, func()) {
	group, _ := errgroup.WithContext(ctx)
	s := &Scoped{group: group, onPanic: onPanic}
	return s, func() { _ = group.Wait() }
}

// Spawn schedules task to run on the errgroup's worker pool.
func (s *Scoped) Spawn(task func()) {
	s.group.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				if s.onPanic != nil {
					s.onPanic(r, debug.Stack())
				}
			}
		}()
		task()
		return nil
	})
}
