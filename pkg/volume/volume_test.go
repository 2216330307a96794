package volume_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedeval/pkg/volume"
)

// TestVolume_Accessors verifies indexing and label round-trips.
func TestVolume_Accessors(t *testing.T) {
	vol := volume.New(3, 4, 2)

	assert.Equal(t, 24, vol.NumVoxels())
	assert.Len(t, vol.Data, 24)

	vol.Set(2, 3, 1, 7)
	assert.Equal(t, 7.0, vol.At(2, 3, 1))
	assert.Equal(t, 7.0, vol.Data[vol.Index(2, 3, 1)])

	// Row-major with x fastest.
	assert.Equal(t, 1, vol.Index(1, 0, 0))
	assert.Equal(t, 3, vol.Index(0, 1, 0))
	assert.Equal(t, 12, vol.Index(0, 0, 1))
}

// TestVolume_CheckSameShape verifies the fatal size mismatch error.
func TestVolume_CheckSameShape(t *testing.T) {
	a := volume.New(2, 2, 2)
	b := volume.New(2, 2, 2)
	c := volume.New(2, 3, 2)

	assert.NoError(t, a.CheckSameShape(b))
	assert.ErrorIs(t, a.CheckSameShape(c), volume.ErrSizeMismatch)
	assert.False(t, a.SameShape(c))
}

// TestStack_RoundTrip verifies that labels survive a save/load cycle
// exactly.
func TestStack_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "slices")

	vol := volume.New(4, 3, 3)
	labels := []float64{0, 1, 5, 1000, 65535}
	for i := range vol.Data {
		vol.Data[i] = labels[i%len(labels)]
	}

	require.NoError(t, volume.SaveStack(dir, vol))

	loaded, err := volume.LoadStack(dir)
	require.NoError(t, err)

	assert.Equal(t, vol.Width, loaded.Width)
	assert.Equal(t, vol.Height, loaded.Height)
	assert.Equal(t, vol.Depth, loaded.Depth)
	assert.Equal(t, vol.Data, loaded.Data)
}

// TestLoadStack_MissingDir verifies the error path for absent input.
func TestLoadStack_MissingDir(t *testing.T) {
	_, err := volume.LoadStack(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// TestLoadStack_Empty verifies that a directory without PNG slices is
// rejected.
func TestLoadStack_Empty(t *testing.T) {
	_, err := volume.LoadStack(t.TempDir())
	assert.Error(t, err)
}
