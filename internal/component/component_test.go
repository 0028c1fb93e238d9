package component

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frc4121/vvpipeline/internal/runid"
	"github.com/frc4121/vvpipeline/internal/spawner"
	"github.com/frc4121/vvpipeline/internal/value"
)

func TestInputsPrimaryVsNamed(t *testing.T) {
	t.Parallel()

	require.True(t, Primary().IsPrimary())
	require.Equal(t, []string{PrimaryChannel}, Primary().Slots())

	named := Named("vec", "elem")
	require.False(t, named.IsPrimary())
	require.Equal(t, []string{"vec", "elem"}, named.Slots())
}

func TestContextGetAsRejectsMultiValueSlot(t *testing.T) {
	t.Parallel()

	inputs := map[string][]value.Value{"elem": {value.Of(1), value.Of(2)}}
	ctx := NewContext("check", runid.New(0), inputs, func(string, value.Value) {}, spawner.NewLocal(spawner.Immediate{}))

	_, err := ctx.GetAs("elem")
	require.Error(t, err)
}

func TestContextGetTypedDowncasts(t *testing.T) {
	t.Parallel()

	inputs := map[string][]value.Value{PrimaryChannel: {value.Of(42)}}
	ctx := NewContext("answer", runid.New(0), inputs, func(string, value.Value) {}, spawner.NewLocal(spawner.Immediate{}))

	n, err := GetTyped[int](ctx, PrimaryChannel)
	require.NoError(t, err)
	require.Equal(t, 42, n)

	_, err = GetTyped[string](ctx, PrimaryChannel)
	require.Error(t, err)
}

func TestContextSubmitDelegatesToCallback(t *testing.T) {
	t.Parallel()

	var gotChannel string
	var gotValue value.Value
	ctx := NewContext("emit", runid.New(0), nil, func(channel string, v value.Value) {
		gotChannel = channel
		gotValue = v
	}, spawner.NewLocal(spawner.Immediate{}))

	ctx.Submit("elem", value.Of(7))
	require.Equal(t, "elem", gotChannel)
	n, ok := value.As[int](gotValue)
	require.True(t, ok)
	require.Equal(t, 7, n)
}

func TestFuncAdapterSatisfiesComponent(t *testing.T) {
	t.Parallel()

	var c Component = Func{
		InputsFn:     Primary,
		OutputKindFn: func(string) Kind { return KindSingle },
		RunFn:        func(ctx *Context) error { return nil },
	}

	require.True(t, c.Inputs().IsPrimary())
	require.Equal(t, KindSingle, c.OutputKind(PrimaryChannel))
}
