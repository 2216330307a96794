package ted_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedeval/pkg/ted"
)

// analyzeRow extracts cells from two rows and runs the tolerance
// analysis with the given params.
func analyzeRow(t *testing.T, params *ted.Params, gtLabels, recLabels []float64) (*ted.CellTable, *ted.LabelRegistry) {
	t.Helper()

	gt := rowVolume(t, gtLabels...)
	rec := rowVolume(t, recLabels...)

	cells, registry, err := ted.ExtractCells(gt, rec)
	require.NoError(t, err)

	ted.AnalyzeTolerance(cells, registry, gt.Width, gt.Height, gt.Depth, params, quietLogger())
	return cells, registry
}

// findCell returns the cell with the given raw label pair.
func findCell(t *testing.T, cells *ted.CellTable, registry *ted.LabelRegistry, rec, gt float64) *ted.Cell {
	t.Helper()

	gtID, ok := registry.GroundTruth.ID(gt)
	require.True(t, ok)
	recID, ok := registry.Reconstruction.ID(rec)
	require.True(t, ok)

	for _, cell := range cells.Cells() {
		if cell.GroundTruth == gtID && cell.Reconstruction == recID {
			return cell
		}
	}
	t.Fatalf("no cell with pair (%v, %v)", rec, gt)
	return nil
}

// TestAnalyzeTolerance_ZeroThreshold verifies that threshold zero never
// yields alternatives: map values are nonnegative and the comparison is
// strict.
func TestAnalyzeTolerance_ZeroThreshold(t *testing.T) {
	cells, _ := analyzeRow(t, isotropicParams(0),
		[]float64{1, 1, 1, 1},
		[]float64{5, 5, 6, 6})

	for _, cell := range cells.Cells() {
		assert.Empty(t, cell.AlternativeLabels())
	}
}

// TestAnalyzeTolerance_MaxOverCell verifies the strict cell-wide test:
// the farthest voxel of the cell decides eligibility, not the nearest.
func TestAnalyzeTolerance_MaxOverCell(t *testing.T) {
	// Cell of rec 5 spans x = 0..1; rec 6 occupies x = 2..3. The near
	// voxel of cell 5 is 1 unit from rec 6, the far one 2 units
	// (squared: 4). A threshold of 2 admits neither relabeling of the
	// whole cell; 5 admits it.
	cells, registry := analyzeRow(t, isotropicParams(2),
		[]float64{1, 1, 1, 1},
		[]float64{5, 5, 6, 6})

	cell := findCell(t, cells, registry, 5, 1)
	assert.Empty(t, cell.AlternativeLabels())

	cells, registry = analyzeRow(t, isotropicParams(5),
		[]float64{1, 1, 1, 1},
		[]float64{5, 5, 6, 6})

	cell = findCell(t, cells, registry, 5, 1)
	rec6, _ := registry.Reconstruction.ID(6)
	assert.Equal(t, []ted.Label{rec6}, cell.AlternativeLabels())
	assert.True(t, cell.HasAlternative(rec6))
}

// TestAnalyzeTolerance_RegistersMatches verifies that proposed
// relabelings extend the possible-match relation.
func TestAnalyzeTolerance_RegistersMatches(t *testing.T) {
	_, registry := analyzeRow(t, isotropicParams(5),
		[]float64{1, 1, 2, 2},
		[]float64{5, 5, 6, 6})

	gt1, _ := registry.GroundTruth.ID(1)
	rec5, _ := registry.Reconstruction.ID(5)
	rec6, _ := registry.Reconstruction.ID(6)

	// Without tolerance gt 1 only touches rec 5; with it, rec 6 becomes
	// reachable.
	assert.Equal(t, []ted.Label{rec5, rec6}, registry.MatchesByGt(gt1))
}

// TestAnalyzeTolerance_Monotonic verifies that growing the threshold
// never shrinks any alternative set.
func TestAnalyzeTolerance_Monotonic(t *testing.T) {
	gtRow := []float64{1, 1, 2, 2, 2, 3}
	recRow := []float64{5, 5, 6, 6, 7, 7}

	thresholds := []float64{0, 1.5, 2, 5, 10, 50}
	var previous []map[ted.Label]bool

	for _, threshold := range thresholds {
		cells, _ := analyzeRow(t, isotropicParams(threshold), gtRow, recRow)

		current := make([]map[ted.Label]bool, cells.Len())
		for i, cell := range cells.Cells() {
			current[i] = make(map[ted.Label]bool)
			for _, alt := range cell.AlternativeLabels() {
				current[i][alt] = true
			}
		}

		if previous != nil {
			require.Len(t, current, len(previous))
			for i := range previous {
				for alt := range previous[i] {
					assert.True(t, current[i][alt],
						"alternative lost when growing threshold to %v", threshold)
				}
			}
		}
		previous = current
	}
}

// TestAnalyzeTolerance_AnisotropicPitch verifies that the section axis
// uses its own pitch: one section of spacing 10 means a squared distance
// of 100.
func TestAnalyzeTolerance_AnisotropicPitch(t *testing.T) {
	gt := makeVolume(t, 1, 1, 2, []float64{1, 1})
	rec := makeVolume(t, 1, 1, 2, []float64{5, 6})

	run := func(threshold float64) *ted.Cell {
		params := ted.DefaultParams()
		params.DistanceThreshold = threshold
		params.NumWorkers = 1

		cells, registry, err := ted.ExtractCells(gt, rec)
		require.NoError(t, err)
		ted.AnalyzeTolerance(cells, registry, 1, 1, 2, params, quietLogger())
		return findCell(t, cells, registry, 5, 1)
	}

	// Default pitch is (1, 1, 10).
	assert.Empty(t, run(100).AlternativeLabels(), "squared distance 100 is not strictly below 100")
	assert.Len(t, run(101).AlternativeLabels(), 1)
}

// TestAnalyzeTolerance_WorkerCountInvariant verifies that parallelism
// does not change the outcome.
func TestAnalyzeTolerance_WorkerCountInvariant(t *testing.T) {
	gtRow := []float64{1, 1, 2, 2, 2, 3, 3, 1}
	recRow := []float64{5, 5, 6, 6, 7, 7, 5, 8}

	baseline, _ := analyzeRow(t, isotropicParams(5), gtRow, recRow)

	for _, workers := range []int{2, 4, 16} {
		params := isotropicParams(5)
		params.NumWorkers = workers

		cells, _ := analyzeRow(t, params, gtRow, recRow)
		require.Equal(t, baseline.Len(), cells.Len())
		for i := range baseline.Cells() {
			assert.Equal(t,
				baseline.Cell(i).AlternativeLabels(),
				cells.Cell(i).AlternativeLabels(),
				"alternatives must not depend on worker count")
		}
	}
}
