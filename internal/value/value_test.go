package value

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxedAsRoundTrip(t *testing.T) {
	t.Parallel()

	v := Of(42)
	n, ok := As[int](v)
	require.True(t, ok)
	require.Equal(t, 42, n)

	_, ok = As[string](v)
	require.False(t, ok)
}

func TestBoxedCloneIsIndependentHandle(t *testing.T) {
	t.Parallel()

	v := Of([]int{1, 2, 3})
	cloned := v.Clone()

	got, ok := As[[]int](cloned)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestFieldedExposesSortedFields(t *testing.T) {
	t.Parallel()

	f := NewFielded("bbox", map[string]Value{
		"confidence": Of(0.9),
		"area":       Of(12),
	})

	require.Equal(t, []string{"area", "confidence"}, f.Fields())

	conf, ok := f.Field("confidence")
	require.True(t, ok)
	n, ok := As[float64](conf)
	require.True(t, ok)
	require.Equal(t, 0.9, n)

	_, ok = f.Field("missing")
	require.False(t, ok)
}

func TestFieldedWriteDebugIncludesFields(t *testing.T) {
	t.Parallel()

	f := NewFielded("tag", map[string]Value{"id": Of(7)})
	var buf bytes.Buffer
	f.WriteDebug(&buf)
	require.Contains(t, buf.String(), "tag")
	require.Contains(t, buf.String(), "id: 7")
}
