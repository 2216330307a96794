// Package volume provides the labeled 3D volume model used throughout
// tedeval. A volume stores one scalar label per voxel together with the
// physical size of a voxel along each axis, which is typically anisotropic
// for serial-section microscopy data (fine in-plane, coarse across
// sections).
package volume

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch is returned when two volumes that must share a shape
// (ground truth and reconstruction) differ in width, height or depth.
var ErrSizeMismatch = errors.New("volumes have different size")

// VoxelSize is the physical extent of one voxel along each axis, in the
// same units as the tolerance distance threshold (typically nm).
type VoxelSize struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// DefaultVoxelSize matches the usual serial-section setup: isotropic
// in-plane resolution and a ten times coarser section spacing.
func DefaultVoxelSize() VoxelSize {
	return VoxelSize{X: 1, Y: 1, Z: 10}
}

// Coord identifies a single voxel by its integer grid position.
type Coord struct {
	X, Y, Z int
}

// Volume is a dense 3D array of scalar labels in row-major order
// (x fastest, then y, then z). Labels are float64 identifiers; their
// numeric value carries no meaning beyond identity.
type Volume struct {
	Width  int
	Height int
	Depth  int

	// Data holds Width*Height*Depth labels.
	Data []float64

	// VoxelSize is the physical pitch per axis.
	VoxelSize VoxelSize
}

// New creates a zero-filled volume with the given dimensions and the
// default anisotropic voxel size.
func New(width, height, depth int) *Volume {
	return &Volume{
		Width:     width,
		Height:    height,
		Depth:     depth,
		Data:      make([]float64, width*height*depth),
		VoxelSize: DefaultVoxelSize(),
	}
}

// Index returns the position of voxel (x, y, z) in Data.
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the label of voxel (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z)]
}

// Set assigns the label of voxel (x, y, z).
func (v *Volume) Set(x, y, z int, label float64) {
	v.Data[v.Index(x, y, z)] = label
}

// NumVoxels returns the total voxel count.
func (v *Volume) NumVoxels() int {
	return v.Width * v.Height * v.Depth
}

// SameShape reports whether two volumes have identical dimensions.
func (v *Volume) SameShape(other *Volume) bool {
	return v.Width == other.Width && v.Height == other.Height && v.Depth == other.Depth
}

// CheckSameShape returns ErrSizeMismatch (with dimensions in the message)
// unless the two volumes have identical width, height and depth.
func (v *Volume) CheckSameShape(other *Volume) error {
	if !v.SameShape(other) {
		return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrSizeMismatch,
			v.Width, v.Height, v.Depth, other.Width, other.Height, other.Depth)
	}
	return nil
}
