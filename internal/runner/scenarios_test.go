package runner_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/component/broadcast"
	"github.com/frc4121/vvpipeline/internal/graph"
	"github.com/frc4121/vvpipeline/internal/rlog"
	"github.com/frc4121/vvpipeline/internal/runner"
	"github.com/frc4121/vvpipeline/internal/spawner"
	"github.com/frc4121/vvpipeline/internal/value"
	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"
)

// recorder is a sink component: Primary input, no output, appends every
// received value to a mutex-guarded slice.
type recorder struct {
	mu   sync.Mutex
	got  []any
}

func (r *recorder) component() component.Component {
	return component.Func{
		InputsFn:     component.Primary,
		OutputKindFn: func(string) component.Kind { return component.KindNone },
		RunFn: func(ctx *component.Context) error {
			v, err := ctx.GetAs(component.PrimaryChannel)
			if err != nil {
				return err
			}
			n, _ := value.As[int](v)
			r.mu.Lock()
			r.got = append(r.got, n)
			r.mu.Unlock()
			return nil
		},
	}
}

func (r *recorder) values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.got...)
}

func noPanic(recovered any, stack []byte) {
	panic(recovered)
}

func TestS1FanOutBroadcastToPrint(t *testing.T) {
	t.Parallel()

	g := graph.New()
	bc, err := g.AddNamedComponent(broadcast.Of[int](), "broadcast")
	require.NoError(t, err)
	rec := &recorder{}
	printID, err := g.AddNamedComponent(rec.component(), "print")
	require.NoError(t, err)
	require.NoError(t, g.AddDependency(
		graph.Endpoint{Component: bc, Channel: broadcast.ElemChannel},
		graph.Endpoint{Component: printID, Channel: component.PrimaryChannel},
	))

	_, rn, err := g.Compile()
	require.NoError(t, err)

	q := spawner.NewQueue(noPanic)
	require.NoError(t, rn.Run(context.Background(), bc, runner.SeedPrimary(value.Of([]int{1, 2, 3})), q))
	q.Drain()

	require.Equal(t, 0, rn.Running())
	require.ElementsMatch(t, []any{1, 2, 3}, rec.values())
	require.NoError(t, rn.AssertClean())
}

// checkContains counts its firings and the (vec,elem) pairs it was
// invoked with.
type checkContains struct {
	mu    sync.Mutex
	calls [][2]any
}

func (c *checkContains) component() component.Component {
	return component.Func{
		InputsFn: func() component.Inputs { return component.Named("vec", "elem") },
		OutputKindFn: func(channel string) component.Kind {
			if channel == component.PrimaryChannel {
				return component.KindSingle
			}
			return component.KindNone
		},
		RunFn: func(ctx *component.Context) error {
			vecV, err := ctx.GetAs("vec")
			if err != nil {
				return err
			}
			elemV, err := ctx.GetAs("elem")
			if err != nil {
				return err
			}
			vec, _ := value.As[[]int](vecV)
			elem, _ := value.As[int](elemV)
			c.mu.Lock()
			c.calls = append(c.calls, [2]any{vec, elem})
			c.mu.Unlock()
			ctx.Submit(component.PrimaryChannel, value.Of(true))
			return nil
		},
	}
}

func TestS2Join(t *testing.T) {
	t.Parallel()

	g := graph.New()
	bc, err := g.AddNamedComponent(broadcast.Of[int](), "broadcast")
	require.NoError(t, err)
	cc := &checkContains{}
	ccID, err := g.AddNamedComponent(cc.component(), "check_contains")
	require.NoError(t, err)

	require.NoError(t, g.AddDependency(
		graph.Endpoint{Component: bc, Channel: component.PrimaryChannel},
		graph.Endpoint{Component: ccID, Channel: "vec"},
	))
	require.NoError(t, g.AddDependency(
		graph.Endpoint{Component: bc, Channel: broadcast.ElemChannel},
		graph.Endpoint{Component: ccID, Channel: "elem"},
	))

	_, rn, err := g.Compile()
	require.NoError(t, err)

	q := spawner.NewQueue(noPanic)
	require.NoError(t, rn.Run(context.Background(), bc, runner.SeedPrimary(value.Of([]int{1, 2, 3})), q))
	q.Drain()

	require.Len(t, cc.calls, 3)
	for _, call := range cc.calls {
		require.Equal(t, []int{1, 2, 3}, call[0])
	}
	require.ElementsMatch(t, []any{1, 2, 3}, func() []any {
		out := make([]any, len(cc.calls))
		for i, call := range cc.calls {
			out[i] = call[1]
		}
		return out
	}())
	require.Equal(t, 0, rn.Running())
	require.NoError(t, rn.AssertClean())
}

// doubleSubmitter declares a Single primary output but submits twice.
type doubleSubmitter struct{}

func (doubleSubmitter) component() component.Component {
	return component.Func{
		InputsFn:     component.Primary,
		OutputKindFn: func(string) component.Kind { return component.KindSingle },
		RunFn: func(ctx *component.Context) error {
			ctx.Submit(component.PrimaryChannel, value.Of(1))
			ctx.Submit(component.PrimaryChannel, value.Of(2))
			return nil
		},
	}
}

func TestS3DoubleSubmitDropsExtra(t *testing.T) {
	t.Parallel()

	g := graph.New()
	src, err := g.AddNamedComponent(doubleSubmitter{}.component(), "double")
	require.NoError(t, err)
	rec := &recorder{}
	sinkID, err := g.AddNamedComponent(rec.component(), "sink")
	require.NoError(t, err)
	require.NoError(t, g.AddDependency(
		graph.Endpoint{Component: src, Channel: component.PrimaryChannel},
		graph.Endpoint{Component: sinkID, Channel: component.PrimaryChannel},
	))

	var logBuf bytes.Buffer
	_, rn, err := g.Compile(graph.WithLogger(rlog.New(&logBuf, "warn")))
	require.NoError(t, err)

	q := spawner.NewQueue(noPanic)
	require.NoError(t, rn.Run(context.Background(), src, runner.SeedPrimary(value.Of(0)), q))
	q.Drain()

	require.Len(t, rec.values(), 1)
	require.Equal(t, 0, rn.Running())

	wantErr := pkgerrors.NewDoubleSubmitError("double", component.PrimaryChannel)
	require.Contains(t, logBuf.String(), wantErr.Error())
}

// panickingComponent panics unconditionally when run.
type panickingComponent struct{}

func (panickingComponent) component() component.Component {
	return component.Func{
		InputsFn:     component.Primary,
		OutputKindFn: func(string) component.Kind { return component.KindNone },
		RunFn: func(ctx *component.Context) error {
			panic("boom")
		},
	}
}

func TestComponentPanicLogsPanicError(t *testing.T) {
	t.Parallel()

	g := graph.New()
	src, err := g.AddNamedComponent(panickingComponent{}.component(), "exploder")
	require.NoError(t, err)

	var logBuf bytes.Buffer
	_, rn, err := g.Compile(graph.WithLogger(rlog.New(&logBuf, "warn")))
	require.NoError(t, err)

	q := spawner.NewQueue(noPanic)
	require.NoError(t, rn.Run(context.Background(), src, runner.SeedPrimary(value.Of(0)), q))
	q.Drain()

	require.Equal(t, 0, rn.Running())
	require.NoError(t, rn.AssertClean())

	wantErr := pkgerrors.NewPanicError("exploder", "boom")
	require.Contains(t, logBuf.String(), wantErr.Error())
}

func TestS6FreshRunIDsDoNotCrossContaminate(t *testing.T) {
	t.Parallel()

	g := graph.New()
	bc, err := g.AddNamedComponent(broadcast.Of[int](), "broadcast")
	require.NoError(t, err)
	rec := &recorder{}
	printID, err := g.AddNamedComponent(rec.component(), "print")
	require.NoError(t, err)
	require.NoError(t, g.AddDependency(
		graph.Endpoint{Component: bc, Channel: broadcast.ElemChannel},
		graph.Endpoint{Component: printID, Channel: component.PrimaryChannel},
	))

	_, rn, err := g.Compile()
	require.NoError(t, err)

	q := spawner.NewQueue(noPanic)
	require.NoError(t, rn.Run(context.Background(), bc, runner.SeedPrimary(value.Of([]int{1, 2})), q))
	q.Drain()
	require.NoError(t, rn.Run(context.Background(), bc, runner.SeedPrimary(value.Of([]int{3, 4})), q))
	q.Drain()

	require.Equal(t, uint32(2), rn.RunCount())
	require.ElementsMatch(t, []any{1, 2, 3, 4}, rec.values())
	require.NoError(t, rn.AssertClean())
}
