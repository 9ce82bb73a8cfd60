package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/bioristor/pkg/numeric"
)

func TestSolveLinearIdentity(t *testing.T) {
	a := numeric.Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	b := numeric.Vec3{1, 2, 3}

	x, ok := solveLinear(a, b, 1e-9)
	require.True(t, ok)
	assert.Equal(t, b, x)
}

func TestSolveLinearRequiresPivoting(t *testing.T) {
	// Zero in the leading position forces a row swap.
	a := numeric.Mat3{{0, 1, 0}, {2, 0, 0}, {0, 0, 4}}
	b := numeric.Vec3{3, 4, 8}

	x, ok := solveLinear(a, b, 1e-9)
	require.True(t, ok)
	assert.InDelta(t, 2.0, float64(x[0]), 1e-6)
	assert.InDelta(t, 3.0, float64(x[1]), 1e-6)
	assert.InDelta(t, 2.0, float64(x[2]), 1e-6)
}

func TestSolveLinearGeneral(t *testing.T) {
	a := numeric.Mat3{{2, 1, 0}, {1, 3, 1}, {0, 1, 4}}
	want := numeric.Vec3{1, -2, 3}
	b := a.MulVec(want)

	x, ok := solveLinear(a, b, 1e-9)
	require.True(t, ok)
	for i := range want {
		assert.InDelta(t, float64(want[i]), float64(x[i]), 1e-5)
	}
}

func TestSolveLinearSingular(t *testing.T) {
	tests := []struct {
		name string
		a    numeric.Mat3
	}{
		{"zero matrix", numeric.Mat3{}},
		{"zero column", numeric.Mat3{{0, 1, 2}, {0, 3, 4}, {0, 5, 6}}},
		{"dependent rows", numeric.Mat3{{1, 2, 3}, {2, 4, 6}, {1, 0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := solveLinear(tt.a, numeric.Vec3{1, 1, 1}, 1e-9)
			assert.False(t, ok)
		})
	}
}
