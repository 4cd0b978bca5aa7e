package toc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatManual(t *testing.T) Flat {
	t.Helper()
	flat, err := Flatten(manualTree(t), "/manual@v1.0")
	require.NoError(t, err)
	return flat
}

func TestActiveIndex(t *testing.T) {
	flat := flatManual(t)

	require.Equal(t, 0, flat.ActiveIndex("introduction"))
	require.Equal(t, 1, flat.ActiveIndex("basics"))
	require.Equal(t, 2, flat.ActiveIndex("basics/variables"))
	require.Equal(t, -1, flat.ActiveIndex("does/not/exist"))
}

func TestActiveIndex_SuffixMatchIgnoresVersionPrefix(t *testing.T) {
	flat, err := Flatten(manualTree(t), "/manual@v9.9")
	require.NoError(t, err)

	// The request slug never carries the version; matching is on the tail
	// of the versioned entry path.
	require.Equal(t, 2, flat.ActiveIndex("basics/variables"))
}

func TestNeighbors_MiddleHasBoth(t *testing.T) {
	flat := flatManual(t)

	prev, next := flat.Neighbors(1)
	require.True(t, prev.IsSome())
	require.True(t, next.IsSome())
	require.Equal(t, "/manual@v1.0/introduction", prev.Unwrap().Path)
	require.Equal(t, "/manual@v1.0/basics/variables", next.Unwrap().Path)
}

func TestNeighbors_FirstHasNoPrevious(t *testing.T) {
	flat := flatManual(t)

	prev, next := flat.Neighbors(0)
	require.True(t, prev.IsNone())
	require.True(t, next.IsSome())
	require.Equal(t, "Basics", next.Unwrap().Name)
}

func TestNeighbors_LastHasNoNext(t *testing.T) {
	flat := flatManual(t)

	prev, next := flat.Neighbors(len(flat.Pages) - 1)
	require.True(t, prev.IsSome())
	require.True(t, next.IsNone())
}

func TestNeighbors_OutOfRange(t *testing.T) {
	flat := flatManual(t)

	prev, next := flat.Neighbors(-1)
	require.True(t, prev.IsNone())
	require.True(t, next.IsNone())

	prev, next = flat.Neighbors(len(flat.Pages))
	require.True(t, prev.IsNone())
	require.True(t, next.IsNone())
}

func TestCount(t *testing.T) {
	require.Equal(t, 3, manualTree(t).Count())
	require.Equal(t, 0, Tree{}.Count())
}
