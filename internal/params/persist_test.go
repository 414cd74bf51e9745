package params

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func roundTrip(t *testing.T, p *ParameterSet) *ParameterSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, p.Save(path))

	logger, hook := test.NewNullLogger()
	got, err := FromFile(path, WithLogger(logger))
	require.NoError(t, err)
	// Unknown fields of p are seen for the first time by a fresh Default().
	for _, e := range hook.AllEntries() {
		_, known := p.Extra[e.Data["field"].(string)]
		assert.True(t, known, "unexpected warning: %s", e.Message)
	}
	return got
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	multi := Default()
	multi.WidthRange = Multi(IntPair{40, 50}, IntPair{18, 24})
	multi.HeightRange = Multi(IntPair{50, 60}, IntPair{13, 27})
	multi.WHRatioRange = Multi(FloatPair{0.65, 0.1}, FloatPair{0.8888888888888888, 1.3846153846153846})
	multi.MorphKernelsType = Multi(KernelLines, KernelRectangles)
	multi.ScalingFactors = Multi(0.5, 1, 1.5)
	multi.VerticalMaxDistance = Single(12)
	multi.RecomputeIterationCount()

	withExtra := Default()
	withExtra.Extra["foo"] = "bar"
	withExtra.Extra["nested"] = []interface{}{1, "two"}

	numericExtra := Default()
	numericExtra.Extra["whole_float"] = 1.0
	numericExtra.Extra["fraction"] = 2.5
	numericExtra.Extra["count"] = 3
	numericExtra.Extra["big"] = 1e21
	numericExtra.Extra["floats"] = []interface{}{1.0, 2, 0.5}
	numericExtra.Extra["table"] = map[string]interface{}{"gain": 4.0, "steps": 4}

	tests := []struct {
		name string
		p    *ParameterSet
	}{
		{"defaults", Default()},
		{"multi valued", multi},
		{"extra fields", withExtra},
		{"numeric extra fields", numericExtra},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.p)
			assert.True(t, tt.p.Equal(got), "round trip changed the parameter set")
			assert.Equal(t, tt.p.NumIterations(), got.NumIterations())

			want, err := tt.p.Expand()
			require.NoError(t, err)
			gotTuples, err := got.Expand()
			require.NoError(t, err)
			if diff := cmp.Diff(want, gotTuples); diff != "" {
				t.Errorf("tuples mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSave_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().SaveTo(&buf))
	out := buf.String()

	for _, want := range []string{
		"width_range:\n  - [40, 50]\n",
		"group_size_range: [1, 100]\n",
		"thickness: 2\n",
		"morph_kernels_type:\n  - lines\n",
		"num_iterations: 1\n",
	} {
		assert.Contains(t, out, want)
	}

	// Keys are written in sorted order.
	assert.Less(t, strings.Index(out, "dilation_iterations"), strings.Index(out, "width_range"))
}

func TestSave_FloatExtrasKeepTheirType(t *testing.T) {
	p := Default()
	require.NoError(t, p.LoadFrom(strings.NewReader("foo: 1.0\nbar: 2.5\nbaz: 7\n"), WithSuppressWarnings()))
	require.Equal(t, 1.0, p.Extra["foo"])

	var buf bytes.Buffer
	require.NoError(t, p.SaveTo(&buf))
	assert.Contains(t, buf.String(), "foo: 1.0\n")
	assert.Contains(t, buf.String(), "bar: 2.5\n")
	assert.Contains(t, buf.String(), "baz: 7\n")

	got := roundTrip(t, p)
	assert.IsType(t, float64(0), got.Extra["foo"])
	assert.IsType(t, 0, got.Extra["baz"])
	assert.True(t, p.Equal(got))
}

func TestSave_SkipsReservedExtras(t *testing.T) {
	p := Default()
	p.Extra["__internal"] = 1
	p.Extra["kept"] = 2

	got := roundTrip(t, p)
	assert.NotContains(t, got.Extra, "__internal")
	assert.Equal(t, 2, got.Extra["kept"])
}

func TestSave_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "config.yaml")
	err := Default().Save(path)

	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, path, se.Destination)
}

func TestLoad_Partial(t *testing.T) {
	path := writeConfig(t, `
height_range:
  - [50, 60]
  - [60, 70]
thickness: 4
`)
	p, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, p.NumIterations())
	assert.Equal(t, 4, p.Thickness)
	assert.Equal(t, []IntPair{{40, 50}}, p.WidthRange.Values(), "fields missing from the file keep their defaults")
}

func TestLoad_SingleValues(t *testing.T) {
	path := writeConfig(t, `
width_range: [30, 40]
morph_kernels_type: rectangles
dilation_iterations: 1
`)
	p, err := FromFile(path)
	require.NoError(t, err)

	assert.False(t, p.WidthRange.IsMulti())
	assert.Equal(t, 1, p.NumIterations())

	tuples, err := p.Expand()
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, IntPair{30, 40}, tuples[0].WidthRange)
	assert.Equal(t, KernelRectangles, tuples[0].MorphKernelsType)
	assert.Equal(t, 1, tuples[0].DilationIterations)
}

func TestLoad_UnrecognizedFieldWarning(t *testing.T) {
	path := writeConfig(t, "foo: bar\nthickness: 3\n")

	t.Run("warns", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		p := Default()
		require.NoError(t, p.Load(path, WithLogger(logger)))

		require.Len(t, hook.AllEntries(), 1)
		entry := hook.LastEntry()
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "foo", entry.Data["field"])
		assert.Equal(t, path, entry.Data["source"])
		assert.Equal(t, "bar", p.Extra["foo"])
		assert.Equal(t, 3, p.Thickness)
	})

	t.Run("suppressed", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		p := Default()
		require.NoError(t, p.Load(path, WithLogger(logger), WithSuppressWarnings()))

		assert.Empty(t, hook.AllEntries())
		assert.Equal(t, "bar", p.Extra["foo"])
	})

	t.Run("known after first load", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		p := Default()
		require.NoError(t, p.Load(path, WithLogger(logger)))
		require.NoError(t, p.Load(path, WithLogger(logger)))

		assert.Len(t, hook.AllEntries(), 1)
	})
}

func TestLoad_NumIterationsIgnored(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := Default()
	require.NoError(t, p.LoadFrom(strings.NewReader("num_iterations: 7\n"), WithLogger(logger)))

	assert.Equal(t, 1, p.NumIterations())
	assert.Empty(t, hook.AllEntries())
	assert.NotContains(t, p.Extra, FieldNumIterations)
}

func TestLoad_EmptyFile(t *testing.T) {
	p := Default()
	require.NoError(t, p.Load(writeConfig(t, "")))
	assert.True(t, Default().Equal(p))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "width_range: [40, 50\n"},
		{"top level sequence", "- 1\n- 2\n"},
		{"top level scalar", "hello\n"},
		{"wrong shape", "height_range:\n  - [1, 2]\n  - [3, 4]\nthickness: [1, 2]\n"},
		{"bad pair", "width_range: [[1, 2, 3]]\n"},
		{"null sweep value", "width_range: ~\n"},
		{"empty scalar value", "thickness:\n"},
		{"explicit null", "group_size_range: null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			p.Extra["keep"] = true
			before := p.Clone()

			err := p.Load(writeConfig(t, tt.content))
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.True(t, before.Equal(p), "failed load modified the parameter set")
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	err := Default().Load("/nonexistent/path/to/config.yaml")

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "/nonexistent/path/to/config.yaml", le.Source)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = FromFile("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}
