package ted

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"tedeval/pkg/solver"
	"tedeval/pkg/volume"
)

// Report is the outcome of one evaluation. Splits and Merges are the
// primary score; the per-label breakdowns and the optional corrected
// volume and error masks support inspection of where the errors are.
type Report struct {
	Splits int `yaml:"splits"`
	Merges int `yaml:"merges"`

	// SplitsByGroundTruth gives each ground-truth label's split count;
	// MergesByReconstruction each reconstruction label's merge count.
	// Keys are the raw label values.
	SplitsByGroundTruth    map[float64]int `yaml:"splitsByGroundTruth"`
	MergesByReconstruction map[float64]int `yaml:"mergesByReconstruction"`

	NumCells                int `yaml:"numCells"`
	NumGroundTruthLabels    int `yaml:"numGroundTruthLabels"`
	NumReconstructionLabels int `yaml:"numReconstructionLabels"`

	// MeanCellSize and MaxCellSize summarize the cell partition, in
	// voxels.
	MeanCellSize float64 `yaml:"meanCellSize"`
	MaxCellSize  int     `yaml:"maxCellSize"`

	// Corrected is the reconstruction after the optimal relabeling; nil
	// unless requested.
	Corrected *volume.Volume `yaml:"-"`

	// Error-location masks (1 where the error category applies, else 0);
	// nil unless requested. FalsePositives and FalseNegatives further
	// require a configured background label pair.
	SplitLocations *volume.Volume `yaml:"-"`
	MergeLocations *volume.Volume `yaml:"-"`
	FalsePositives *volume.Volume `yaml:"-"`
	FalseNegatives *volume.Volume `yaml:"-"`
}

// ExtractResult reads the split and merge counts out of a solved model
// and, if requested, reconstructs the corrected volume and the
// error-location masks. gt supplies the geometry; params decides which
// optional outputs are produced.
func ExtractResult(m *Model, sol *solver.Solution, cells *CellTable, registry *LabelRegistry, gt *volume.Volume, params *Params) *Report {
	report := &Report{
		Splits:                  roundCount(sol.Values[m.SplitsVar]),
		Merges:                  roundCount(sol.Values[m.MergesVar]),
		SplitsByGroundTruth:     make(map[float64]int),
		MergesByReconstruction:  make(map[float64]int),
		NumCells:                cells.Len(),
		NumGroundTruthLabels:    registry.GroundTruth.Len(),
		NumReconstructionLabels: registry.Reconstruction.Len(),
	}

	for _, gtLabel := range registry.GroundTruth.Labels() {
		report.SplitsByGroundTruth[registry.GroundTruth.Value(gtLabel)] =
			roundCount(sol.Values[m.splitVarByGt[gtLabel]])
	}
	for _, recLabel := range registry.Reconstruction.Labels() {
		report.MergesByReconstruction[registry.Reconstruction.Value(recLabel)] =
			roundCount(sol.Values[m.mergeVarByRec[recLabel]])
	}

	sizes := make([]float64, cells.Len())
	for i, cell := range cells.Cells() {
		sizes[i] = float64(cell.Size())
		if cell.Size() > report.MaxCellSize {
			report.MaxCellSize = cell.Size()
		}
	}
	if len(sizes) > 0 {
		report.MeanCellSize = stat.Mean(sizes, nil)
	}

	if params.ComputeCorrected {
		extractVolumes(m, sol, cells, registry, gt, params, report)
	}

	return report
}

// chosenLabels returns, per cell, the label selected by the solution's
// active indicator. Exactly one indicator per cell is active by
// construction.
func chosenLabels(m *Model, sol *solver.Solution, cells *CellTable) []Label {
	chosen := make([]Label, cells.Len())
	for v, a := range m.assignments {
		if sol.Values[v] > 0.5 {
			chosen[a.cell] = a.label
		}
	}
	return chosen
}

// extractVolumes builds the corrected reconstruction and the
// error-location masks from the solved assignment.
func extractVolumes(m *Model, sol *solver.Solution, cells *CellTable, registry *LabelRegistry, gt *volume.Volume, params *Params, report *Report) {
	chosen := chosenLabels(m, sol, cells)

	corrected := volume.New(gt.Width, gt.Height, gt.Depth)
	corrected.VoxelSize = params.VoxelSize
	for i, cell := range cells.Cells() {
		label := registry.Reconstruction.Value(chosen[i])
		for _, c := range cell.Voxels {
			corrected.Set(c.X, c.Y, c.Z, label)
		}
	}
	report.Corrected = corrected

	// Realized matches of the solved assignment, both directions.
	gtMatches := make([]map[Label]struct{}, registry.GroundTruth.Len())
	recMatches := make([]map[Label]struct{}, registry.Reconstruction.Len())
	for i := range gtMatches {
		gtMatches[i] = make(map[Label]struct{})
	}
	for i := range recMatches {
		recMatches[i] = make(map[Label]struct{})
	}
	for i, cell := range cells.Cells() {
		gtMatches[cell.GroundTruth][chosen[i]] = struct{}{}
		recMatches[chosen[i]][cell.GroundTruth] = struct{}{}
	}

	splitMask := volume.New(gt.Width, gt.Height, gt.Depth)
	mergeMask := volume.New(gt.Width, gt.Height, gt.Depth)
	for i, cell := range cells.Cells() {
		// A voxel is at a split if its ground-truth region ended up in
		// more than one reconstruction label, at a merge if its final
		// reconstruction label hosts more than one ground-truth region.
		if len(gtMatches[cell.GroundTruth]) > 1 {
			for _, c := range cell.Voxels {
				splitMask.Set(c.X, c.Y, c.Z, 1)
			}
		}
		if len(recMatches[chosen[i]]) > 1 {
			for _, c := range cell.Voxels {
				mergeMask.Set(c.X, c.Y, c.Z, 1)
			}
		}
	}
	report.SplitLocations = splitMask
	report.MergeLocations = mergeMask

	if !params.HaveBackground {
		return
	}

	// With a background label pair configured, foreground voxels of the
	// corrected reconstruction over ground-truth background are false
	// positives, and vice versa.
	fp := volume.New(gt.Width, gt.Height, gt.Depth)
	fn := volume.New(gt.Width, gt.Height, gt.Depth)
	for i, cell := range cells.Cells() {
		gtBackground := registry.GroundTruth.Value(cell.GroundTruth) == params.GroundTruthBackground
		recBackground := registry.Reconstruction.Value(chosen[i]) == params.ReconstructionBackground
		if recBackground == gtBackground {
			continue
		}
		mask := fp
		if recBackground {
			mask = fn
		}
		for _, c := range cell.Voxels {
			mask.Set(c.X, c.Y, c.Z, 1)
		}
	}
	report.FalsePositives = fp
	report.FalseNegatives = fn
}

func roundCount(v float64) int {
	return int(math.Round(v))
}
