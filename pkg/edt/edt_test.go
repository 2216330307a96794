package edt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedeval/pkg/edt"
)

// TestTransform3D_Row verifies squared distances along one axis with unit
// pitch.
func TestTransform3D_Row(t *testing.T) {
	mask := []bool{true, false, false, false}

	dist := edt.Transform3D(mask, 4, 1, 1, [3]float64{1, 1, 1})

	assert.Equal(t, []float64{0, 1, 4, 9}, dist)
}

// TestTransform3D_TwoSources verifies that every voxel sees its nearest
// source.
func TestTransform3D_TwoSources(t *testing.T) {
	mask := []bool{true, false, false, false, true}

	dist := edt.Transform3D(mask, 5, 1, 1, [3]float64{1, 1, 1})

	assert.Equal(t, []float64{0, 1, 4, 1, 0}, dist)
}

// TestTransform3D_AnisotropicPitch verifies that the z axis uses its own
// physical pitch: two voxels one section apart are 10 units apart, so the
// squared distance is 100.
func TestTransform3D_AnisotropicPitch(t *testing.T) {
	// 1x1x2 volume, foreground in the first section.
	mask := []bool{true, false}

	dist := edt.Transform3D(mask, 1, 1, 2, [3]float64{1, 1, 10})

	assert.Equal(t, []float64{0, 100}, dist)
}

// TestTransform3D_Diagonal verifies that the axes combine as a squared
// Euclidean distance.
func TestTransform3D_Diagonal(t *testing.T) {
	// 3x3x2 volume, single foreground voxel at the origin.
	mask := make([]bool, 3*3*2)
	mask[0] = true

	dist := edt.Transform3D(mask, 3, 3, 2, [3]float64{1, 1, 10})

	// Voxel (1,1,1): 1^2 + 1^2 + 10^2.
	assert.Equal(t, 102.0, dist[1*9+1*3+1])
	// Voxel (2,2,0): 2^2 + 2^2.
	assert.Equal(t, 8.0, dist[2*3+2])
}

// TestTransform3D_NoForeground verifies that an empty mask yields only
// very large distances.
func TestTransform3D_NoForeground(t *testing.T) {
	mask := make([]bool, 8)

	dist := edt.Transform3D(mask, 2, 2, 2, [3]float64{1, 1, 1})

	for i, d := range dist {
		assert.Greater(t, d, 1e19, "voxel %d should be unreachable", i)
	}
}

// TestTransform3D_AllForeground verifies the degenerate all-source case.
func TestTransform3D_AllForeground(t *testing.T) {
	mask := []bool{true, true, true, true}

	dist := edt.Transform3D(mask, 2, 2, 1, [3]float64{1, 1, 1})

	assert.Equal(t, []float64{0, 0, 0, 0}, dist)
}

// TestTransformInPlace verifies the pre-seeded entry point against the
// mask-based one.
func TestTransformInPlace(t *testing.T) {
	mask := []bool{false, true, false, false}
	want := edt.Transform3D(mask, 4, 1, 1, [3]float64{2, 1, 1})

	seeded := []float64{1e20, 0, 1e20, 1e20}
	edt.TransformInPlace(seeded, 4, 1, 1, [3]float64{2, 1, 1})

	require.Equal(t, want, seeded)
	assert.Equal(t, []float64{4, 0, 4, 16}, seeded)
}
