package ted

import (
	"tedeval/pkg/volume"
)

// ExtractCells partitions two equal-shaped label volumes into cells and
// builds the label registry. Every voxel lands in exactly one cell; each
// (gt, rec) pair found in the input is registered as a possible match.
//
// Returns volume.ErrSizeMismatch (wrapped) if the volumes differ in any
// dimension; the evaluation cannot proceed without matching geometry.
func ExtractCells(gt, rec *volume.Volume) (*CellTable, *LabelRegistry, error) {
	if err := gt.CheckSameShape(rec); err != nil {
		return nil, nil, err
	}

	// First pass: collect the distinct labels of both volumes so they
	// can be interned before any cell is created.
	gtValues := make(map[float64]struct{})
	recValues := make(map[float64]struct{})
	for i, n := 0, gt.NumVoxels(); i < n; i++ {
		gtValues[gt.Data[i]] = struct{}{}
		recValues[rec.Data[i]] = struct{}{}
	}

	registry := newLabelRegistry(newLabelTable(gtValues), newLabelTable(recValues))
	cells := newCellTable(registry.Reconstruction.Len())

	// Second pass: assign every voxel to the cell keyed by its label
	// pair.
	for z := 0; z < gt.Depth; z++ {
		for y := 0; y < gt.Height; y++ {
			for x := 0; x < gt.Width; x++ {
				gtLabel, _ := registry.GroundTruth.ID(gt.At(x, y, z))
				recLabel, _ := registry.Reconstruction.ID(rec.At(x, y, z))

				cell := cells.lookup(recLabel, gtLabel)
				cell.Voxels = append(cell.Voxels, volume.Coord{X: x, Y: y, Z: z})

				registry.RegisterPossibleMatch(gtLabel, recLabel)
			}
		}
	}

	cells.sortGroups()

	return cells, registry, nil
}
