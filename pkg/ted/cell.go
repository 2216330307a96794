package ted

import (
	"sort"

	"tedeval/pkg/volume"
)

// Cell is the atomic unit of relabeling: the set of all voxels sharing
// one (reconstruction label, ground-truth label) pair. Spatial adjacency
// is not required; voxels with the same pair belong to the same cell
// wherever they are.
type Cell struct {
	GroundTruth    Label
	Reconstruction Label

	// Voxels holds every coordinate carrying this label pair.
	Voxels []volume.Coord

	// alternatives are the reconstruction labels this cell may adopt
	// under the tolerance rule, populated by AnalyzeTolerance.
	alternatives map[Label]struct{}
}

// AddAlternativeLabel marks rec as a legal relabeling target for this
// cell.
func (c *Cell) AddAlternativeLabel(rec Label) {
	if c.alternatives == nil {
		c.alternatives = make(map[Label]struct{})
	}
	c.alternatives[rec] = struct{}{}
}

// HasAlternative reports whether rec is in the cell's alternative set.
func (c *Cell) HasAlternative(rec Label) bool {
	_, ok := c.alternatives[rec]
	return ok
}

// AlternativeLabels returns the alternative set in ascending value order.
func (c *Cell) AlternativeLabels() []Label {
	return sortedLabels(c.alternatives)
}

// Size returns the number of voxels in the cell.
func (c *Cell) Size() int {
	return len(c.Voxels)
}

// cellKey identifies a cell by its label pair.
type cellKey struct {
	rec Label
	gt  Label
}

// CellTable owns the cell partition of one evaluation. Cells are stored
// in a flat arena; the table additionally groups cell indices by
// reconstruction label in deterministic (rec value, then gt value)
// order, which fixes the ILP variable enumeration.
type CellTable struct {
	cells  []*Cell
	byPair map[cellKey]int
	byRec  [][]int
}

func newCellTable(numRecLabels int) *CellTable {
	return &CellTable{
		byPair: make(map[cellKey]int),
		byRec:  make([][]int, numRecLabels),
	}
}

// lookup returns the cell with the given pair, creating it on first use.
func (t *CellTable) lookup(rec, gt Label) *Cell {
	key := cellKey{rec: rec, gt: gt}
	if idx, ok := t.byPair[key]; ok {
		return t.cells[idx]
	}
	cell := &Cell{GroundTruth: gt, Reconstruction: rec}
	t.byPair[key] = len(t.cells)
	t.cells = append(t.cells, cell)
	t.byRec[rec] = append(t.byRec[rec], len(t.cells)-1)
	return cell
}

// sortGroups orders each reconstruction label's cell group by ground
// truth label. Called once after extraction.
func (t *CellTable) sortGroups() {
	for _, group := range t.byRec {
		sort.Slice(group, func(i, j int) bool {
			return t.cells[group[i]].GroundTruth < t.cells[group[j]].GroundTruth
		})
	}
}

// Cells returns the cell arena in creation order.
func (t *CellTable) Cells() []*Cell {
	return t.cells
}

// Cell returns the cell at the given arena index.
func (t *CellTable) Cell(idx int) *Cell {
	return t.cells[idx]
}

// Len returns the number of cells.
func (t *CellTable) Len() int {
	return len(t.cells)
}

// ByRec returns the indices of all cells whose reconstruction label is
// rec, ordered by ground-truth label.
func (t *CellTable) ByRec(rec Label) []int {
	return t.byRec[rec]
}
