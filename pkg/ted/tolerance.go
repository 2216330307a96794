package ted

import (
	"sync"

	"github.com/sirupsen/logrus"

	"tedeval/pkg/edt"
)

// labelAlternatives holds, for one reconstruction label, the indices of
// all cells that can tolerantly adopt it.
type labelAlternatives struct {
	rec   Label
	cells []int
}

// AnalyzeTolerance decides, for every cell, which other reconstruction
// labels it could adopt without violating the distance budget. For each
// reconstruction label a binary mask of its voxels is distance-transformed
// with the physical voxel pitch; a cell is eligible if the maximum map
// value over all of its voxels stays strictly below the threshold. The
// maximum (rather than mean or any) keeps relabeling all-or-nothing: the
// entire cell must be within tolerance.
//
// Eligible cells receive the label in their alternative set and the
// corresponding (gt, rec) pair is registered in the registry.
//
// The per-label loop is independent across labels and runs on a pool of
// workers; results are applied serially in ascending label order, so the
// outcome does not depend on the worker count. The threshold is compared
// against the squared-distance map directly, matching the original
// tolerance rule.
func AnalyzeTolerance(cells *CellTable, registry *LabelRegistry, width, height, depth int, params *Params, log *logrus.Logger) {
	recLabels := registry.Reconstruction.Labels()

	workers := params.NumWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(recLabels) {
		workers = len(recLabels)
	}

	pitch := [3]float64{params.VoxelSize.X, params.VoxelSize.Y, params.VoxelSize.Z}

	jobs := make(chan Label)
	results := make(chan labelAlternatives, len(recLabels))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One mask buffer per worker, reused across labels.
			mask := make([]bool, width*height*depth)
			for rec := range jobs {
				results <- labelAlternatives{
					rec:   rec,
					cells: findEligibleCells(cells, rec, mask, width, height, depth, pitch, params.DistanceThreshold),
				}
			}
		}()
	}

	for _, rec := range recLabels {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()
	close(results)

	// Collect and apply in deterministic label order.
	eligible := make([][]int, len(recLabels))
	for res := range results {
		eligible[res.rec] = res.cells
	}

	for _, rec := range recLabels {
		if log != nil {
			log.WithFields(logrus.Fields{
				"label": registry.Reconstruction.Value(rec),
				"cells": len(eligible[rec]),
			}).Debug("tolerance candidates for reconstruction label")
		}
		for _, idx := range eligible[rec] {
			cell := cells.Cell(idx)
			cell.AddAlternativeLabel(rec)
			registry.RegisterPossibleMatch(cell.GroundTruth, rec)
		}
	}
}

// findEligibleCells computes the squared-distance map of one
// reconstruction label and returns the cells whose entire extent lies
// within the threshold. mask is scratch space of volume size.
func findEligibleCells(cells *CellTable, rec Label, mask []bool, width, height, depth int, pitch [3]float64, threshold float64) []int {
	for i := range mask {
		mask[i] = false
	}
	plane := width * height
	for _, idx := range cells.ByRec(rec) {
		for _, c := range cells.Cell(idx).Voxels {
			mask[c.Z*plane + c.Y*width + c.X] = true
		}
	}

	dist := edt.Transform3D(mask, width, height, depth, pitch)

	var eligible []int
	for idx, cell := range cells.Cells() {
		if cell.Reconstruction == rec {
			continue
		}

		maxDistance := 0.0
		for _, c := range cell.Voxels {
			if d := dist[c.Z*plane + c.Y*width + c.X]; d > maxDistance {
				maxDistance = d
			}
		}

		if maxDistance < threshold {
			eligible = append(eligible, idx)
		}
	}
	return eligible
}
