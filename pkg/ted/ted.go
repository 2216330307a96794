package ted

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"tedeval/pkg/solver"
	"tedeval/pkg/volume"
)

// Params holds the evaluation parameters.
type Params struct {
	// DistanceThreshold is the maximum allowed distance for a boundary
	// shift, compared against the squared-distance map in physical
	// units.
	DistanceThreshold float64

	// VoxelSize is the physical pitch used by the distance transform.
	VoxelSize volume.VoxelSize

	// NumWorkers bounds the parallelism of the tolerance analysis.
	NumWorkers int

	// ComputeCorrected enables the corrected reconstruction volume and
	// the error-location masks in the report.
	ComputeCorrected bool

	// HaveBackground enables false-positive/false-negative masks using
	// the two background labels below. Only meaningful together with
	// ComputeCorrected.
	HaveBackground           bool
	GroundTruthBackground    float64
	ReconstructionBackground float64
}

// DefaultParams returns the standard evaluation setup: a 100 unit
// tolerance and the default anisotropic voxel size.
func DefaultParams() *Params {
	return &Params{
		DistanceThreshold: 100,
		VoxelSize:         volume.DefaultVoxelSize(),
		NumWorkers:        runtime.NumCPU(),
	}
}

// Evaluator runs the tolerant edit distance pipeline: cell extraction,
// tolerance analysis, ILP construction, solving, and result extraction.
// The stages are strictly sequential; every invocation builds its state
// fresh and shares nothing with previous runs.
type Evaluator struct {
	params *Params
	log    *logrus.Logger
	solver solver.Solver
}

// NewEvaluator creates an evaluator with the branch-and-bound solver and
// a default logger.
func NewEvaluator(params *Params) *Evaluator {
	return &Evaluator{
		params: params,
		log:    logrus.New(),
		solver: solver.NewBranchBound(),
	}
}

// SetLogger replaces the evaluator's logger.
func (e *Evaluator) SetLogger(log *logrus.Logger) {
	e.log = log
}

// SetSolver replaces the ILP backend.
func (e *Evaluator) SetSolver(s solver.Solver) {
	e.solver = s
}

// Evaluate scores a reconstruction against its ground truth. It returns
// volume.ErrSizeMismatch (wrapped) if the two volumes differ in shape,
// and surfaces solver failures as computation failures without retrying.
func (e *Evaluator) Evaluate(groundTruth, reconstruction *volume.Volume) (*Report, error) {
	e.log.WithFields(logrus.Fields{
		"width":  groundTruth.Width,
		"height": groundTruth.Height,
		"depth":  groundTruth.Depth,
	}).Info("extracting cells")

	cells, registry, err := ExtractCells(groundTruth, reconstruction)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cells: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"cells":                cells.Len(),
		"groundTruthLabels":    registry.GroundTruth.Len(),
		"reconstructionLabels": registry.Reconstruction.Len(),
	}).Info("analyzing tolerance")

	AnalyzeTolerance(cells, registry, groundTruth.Width, groundTruth.Height, groundTruth.Depth, e.params, e.log)

	model := BuildModel(cells, registry)

	e.log.WithFields(logrus.Fields{
		"variables":   model.Problem.NumVars,
		"constraints": len(model.Problem.Constraints),
	}).Info("solving")

	solution, err := e.solver.Solve(model.Problem)
	if err != nil {
		return nil, fmt.Errorf("failed to solve edit distance model: %w", err)
	}

	report := ExtractResult(model, solution, cells, registry, groundTruth, e.params)

	e.log.WithFields(logrus.Fields{
		"splits": report.Splits,
		"merges": report.Merges,
	}).Info("evaluation finished")

	return report, nil
}
