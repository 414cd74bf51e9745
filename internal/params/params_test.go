package params

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, 1, p.NumIterations())
	assert.Equal(t, 2, p.Thickness)
	assert.Equal(t, IntPair{1, 100}, p.GroupSizeRange)
	assert.Equal(t, []int{80}, p.HorizontalMaxDistance.Values())
	assert.True(t, p.WidthRange.IsMulti())
	assert.Empty(t, p.Extra)

	tuples, err := p.Expand()
	require.NoError(t, err)

	want := []Tuple{{
		WidthRange:            IntPair{40, 50},
		HeightRange:           IntPair{50, 60},
		WHRatioRange:          FloatPair{0.65, 0.1},
		DilationIterations:    0,
		DilationKernel:        IntPair{2, 2},
		VerticalMaxDistance:   10,
		HorizontalMaxDistance: 80,
		MorphKernelsType:      KernelLines,
		MorphKernelsThickness: 1,
	}}
	if diff := cmp.Diff(want, tuples); diff != "" {
		t.Errorf("default tuples mismatch (-want +got):\n%s", diff)
	}
}

func TestTuples_Broadcast(t *testing.T) {
	p := Default()
	p.WidthRange = Multi(IntPair{40, 50})
	p.HeightRange = Multi(IntPair{50, 60}, IntPair{60, 70})

	tuples, err := p.Expand()
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	assert.Equal(t, 2, p.NumIterations())

	assert.Equal(t, IntPair{40, 50}, tuples[0].WidthRange)
	assert.Equal(t, IntPair{40, 50}, tuples[1].WidthRange)
	assert.Equal(t, IntPair{50, 60}, tuples[0].HeightRange)
	assert.Equal(t, IntPair{60, 70}, tuples[1].HeightRange)
	assert.Equal(t, 80, tuples[1].HorizontalMaxDistance)
}

func TestTuples_MixedLengths(t *testing.T) {
	p := Default()
	p.VerticalMaxDistance = Multi(5, 10, 15)
	p.MorphKernelsType = Multi(KernelRectangles, KernelLines)
	p.DilationIterations = Single(2)

	tuples, err := p.Expand()
	require.NoError(t, err)
	require.Len(t, tuples, 3)

	for i, want := range []int{5, 10, 15} {
		assert.Equal(t, want, tuples[i].VerticalMaxDistance)
		// A two-element list is shorter than the count and repeats its first element.
		assert.Equal(t, KernelRectangles, tuples[i].MorphKernelsType)
		assert.Equal(t, 2, tuples[i].DilationIterations)
	}
}

func TestTuples_TrailingElementsIgnored(t *testing.T) {
	p := Default()
	p.HeightRange = Multi(IntPair{1, 2}, IntPair{3, 4}, IntPair{5, 6})
	p.WidthRange = Multi(IntPair{10, 20}, IntPair{30, 40}, IntPair{50, 60})

	tuples, err := p.Expand()
	require.NoError(t, err)
	require.Len(t, tuples, 3)
	assert.Equal(t, IntPair{50, 60}, tuples[2].WidthRange)

	v, err := Multi(1, 2, 3, 4).BroadcastTo(p.NumIterations())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestRecomputeIterationCount(t *testing.T) {
	p := Default()
	p.DilationKernel = Multi(IntPair{1, 1}, IntPair{2, 2}, IntPair{3, 3}, IntPair{4, 4})
	assert.Equal(t, 1, p.NumIterations(), "count is only refreshed on recompute")

	p.RecomputeIterationCount()
	assert.Equal(t, 4, p.NumIterations())

	p.DilationKernel = Single(IntPair{3, 3})
	p.RecomputeIterationCount()
	assert.Equal(t, 1, p.NumIterations())
}

func TestRecomputeIterationCount_UntrackedFields(t *testing.T) {
	p := Default()
	p.ScalingFactors = Multi(0.25, 0.5, 0.75, 1.0, 1.5)
	p.Thickness = 9
	p.RecomputeIterationCount()
	assert.Equal(t, 1, p.NumIterations())
}

func TestRecomputeIterationCount_EmptyList(t *testing.T) {
	p := Default()
	p.VerticalMaxDistance = Multi[int]()
	p.RecomputeIterationCount()
	assert.Equal(t, 1, p.NumIterations())

	_, err := p.Tuples()
	assert.True(t, errors.Is(err, ErrEmptyParameter))
}

func TestTuples_Restartable(t *testing.T) {
	p := Default()
	p.HeightRange = Multi(IntPair{50, 60}, IntPair{60, 70}, IntPair{70, 80})

	seq, err := p.Tuples()
	require.NoError(t, err)

	collect := func() []Tuple {
		var out []Tuple
		for _, tu := range seq {
			out = append(out, tu)
		}
		return out
	}
	first := collect()
	second := collect()
	require.Len(t, first, 3)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass differs (-first +second):\n%s", diff)
	}
}

func TestTuples_SnapshotAtCallTime(t *testing.T) {
	p := Default()
	p.HeightRange = Multi(IntPair{50, 60}, IntPair{60, 70})

	seq, err := p.Tuples()
	require.NoError(t, err)

	p.HeightRange = Multi(IntPair{1, 2}, IntPair{3, 4}, IntPair{5, 6})
	p.WidthRange = Single(IntPair{7, 8})

	var got []Tuple
	for _, tu := range seq {
		got = append(got, tu)
	}
	require.Len(t, got, 2)
	assert.Equal(t, IntPair{50, 60}, got[0].HeightRange)
	assert.Equal(t, IntPair{40, 50}, got[1].WidthRange)

	fresh, err := p.Expand()
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
	assert.Equal(t, IntPair{7, 8}, fresh[2].WidthRange)
}

func TestTuples_IndexAndEarlyStop(t *testing.T) {
	p := Default()
	p.VerticalMaxDistance = Multi(1, 2, 3, 4)

	seq, err := p.Tuples()
	require.NoError(t, err)

	var indices []int
	for i := range seq {
		indices = append(indices, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, indices)
}

func TestClone(t *testing.T) {
	p := Default()
	p.Extra["foo"] = "bar"

	c := p.Clone()
	assert.True(t, p.Equal(c))

	c.Extra["foo"] = "baz"
	c.Thickness = 7
	c.HeightRange = Multi(IntPair{1, 2}, IntPair{3, 4})
	c.RecomputeIterationCount()

	assert.Equal(t, "bar", p.Extra["foo"])
	assert.Equal(t, 2, p.Thickness)
	assert.Equal(t, 1, p.NumIterations())
	assert.False(t, p.Equal(c))
}

func TestIsRecognized(t *testing.T) {
	for _, name := range []string{
		FieldWidthRange, FieldHeightRange, FieldWHRatioRange, FieldScalingFactors,
		FieldThickness, FieldDilationKernel, FieldDilationIterations,
		FieldMorphKernelsType, FieldMorphKernelsThickness, FieldGroupSizeRange,
		FieldVerticalMaxDistance, FieldHorizontalMaxDistance, FieldNumIterations,
	} {
		assert.True(t, IsRecognized(name), name)
	}
	assert.False(t, IsRecognized("foo"))
}
