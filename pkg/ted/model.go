package ted

import (
	"fmt"

	"tedeval/pkg/solver"
)

// assignment is the meaning of one indicator variable: cell adopts label.
type assignment struct {
	cell  int
	label Label
}

// matchKey identifies one (ground truth, reconstruction) pairing.
type matchKey struct {
	gt  Label
	rec Label
}

// Model is the full ILP for one evaluation, together with the semantic
// maps needed to read the solution back. Variables are enumerated in a
// fixed order: cell indicators grouped by reconstruction label (default
// pairing first, then sorted alternatives), match variables, per-label
// split counters, the split total, per-label merge counters, the merge
// total. The order is deterministic, which makes solver input and
// solution back-mapping reproducible.
type Model struct {
	Problem *solver.Problem

	// assignments[v] is the meaning of indicator variable v.
	assignments []assignment

	matchVars     map[matchKey]int
	splitVarByGt  []int
	mergeVarByRec []int

	// SplitsVar and MergesVar are the two global total slots.
	SplitsVar int
	MergesVar int
}

// BuildModel translates the cell partition and tolerance results into a
// solvable ILP whose objective counts total splits plus merges.
func BuildModel(cells *CellTable, registry *LabelRegistry) *Model {
	recLabels := registry.Reconstruction.Labels()
	gtLabels := registry.GroundTruth.Labels()

	numIndicators := 0
	for _, cell := range cells.Cells() {
		numIndicators += 1 + len(cell.alternatives)
	}
	numMatches := registry.NumPossibleMatches()
	numVars := numIndicators + numMatches + len(gtLabels) + 1 + len(recLabels) + 1

	p := solver.NewProblem(numVars)
	p.Sense = solver.Minimize
	p.SetAllVariableTypes(solver.Binary)

	m := &Model{
		Problem:       p,
		matchVars:     make(map[matchKey]int, numMatches),
		splitVarByGt:  make([]int, len(gtLabels)),
		mergeVarByRec: make([]int, len(recLabels)),
	}

	// Indicator variables grouped by reconstruction label; an indicator
	// list per target label feeds the no-disappearing-label constraints,
	// one per (gt, rec) pairing feeds the match linking constraints.
	indicatorsByRec := make([][]int, len(recLabels))
	indicatorsGtToRec := make(map[matchKey][]int)

	assignVar := func(cellIdx int, gt, target Label) int {
		v := len(m.assignments)
		m.assignments = append(m.assignments, assignment{cell: cellIdx, label: target})
		indicatorsByRec[target] = append(indicatorsByRec[target], v)
		key := matchKey{gt: gt, rec: target}
		indicatorsGtToRec[key] = append(indicatorsGtToRec[key], v)
		return v
	}

	for _, rec := range recLabels {
		for _, cellIdx := range cells.ByRec(rec) {
			cell := cells.Cell(cellIdx)

			begin := len(m.assignments)
			assignVar(cellIdx, cell.GroundTruth, cell.Reconstruction)
			for _, alt := range cell.AlternativeLabels() {
				assignVar(cellIdx, cell.GroundTruth, alt)
			}
			end := len(m.assignments)

			// Every cell receives exactly one label.
			oneLabel := solver.NewConstraint(solver.Equal, 1)
			for v := begin; v < end; v++ {
				oneLabel.SetCoefficient(v, 1)
			}
			p.AddConstraint(oneLabel)
		}
	}

	// A reconstruction label present in the input cannot vanish from the
	// corrected output.
	for _, rec := range recLabels {
		keep := solver.NewConstraint(solver.GreaterEqual, 1)
		for _, v := range indicatorsByRec[rec] {
			keep.SetCoefficient(v, 1)
		}
		p.AddConstraint(keep)
	}

	// Match variables for each possible (gt, rec) pairing.
	next := len(m.assignments)
	for _, gt := range gtLabels {
		for _, rec := range registry.MatchesByGt(gt) {
			m.matchVars[matchKey{gt: gt, rec: rec}] = next
			next++
		}
	}

	// Selecting a cell label activates the corresponding match.
	for _, gt := range gtLabels {
		for _, rec := range registry.MatchesByGt(gt) {
			matchVar := m.matchVar(gt, rec)

			// No assignment of gt to rec forces the match to zero.
			noMatch := solver.NewConstraint(solver.GreaterEqual, 0)
			for _, v := range indicatorsGtToRec[matchKey{gt: gt, rec: rec}] {
				noMatch.SetCoefficient(v, 1)

				// Any single assignment forces the match to one.
				match := solver.NewConstraint(solver.GreaterEqual, 0)
				match.SetCoefficient(matchVar, 1)
				match.SetCoefficient(v, -1)
				p.AddConstraint(match)
			}
			noMatch.SetCoefficient(matchVar, -1)
			p.AddConstraint(noMatch)
		}
	}

	// Per-ground-truth-label split counters: number of matched
	// reconstruction labels minus one, never negative.
	for _, gt := range gtLabels {
		splitVar := next
		next++
		m.splitVarByGt[gt] = splitVar
		p.SetVariableType(splitVar, solver.Integer)

		positive := solver.NewConstraint(solver.GreaterEqual, 0)
		positive.SetCoefficient(splitVar, 1)
		p.AddConstraint(positive)

		numSplits := solver.NewConstraint(solver.Equal, -1)
		numSplits.SetCoefficient(splitVar, 1)
		for _, rec := range registry.MatchesByGt(gt) {
			numSplits.SetCoefficient(m.matchVar(gt, rec), -1)
		}
		p.AddConstraint(numSplits)
	}

	// Total number of splits.
	m.SplitsVar = next
	next++
	p.SetVariableType(m.SplitsVar, solver.Integer)

	sumOfSplits := solver.NewConstraint(solver.Equal, 0)
	sumOfSplits.SetCoefficient(m.SplitsVar, 1)
	for _, gt := range gtLabels {
		sumOfSplits.SetCoefficient(m.splitVarByGt[gt], -1)
	}
	p.AddConstraint(sumOfSplits)

	// Per-reconstruction-label merge counters, symmetric to splits.
	for _, rec := range recLabels {
		mergeVar := next
		next++
		m.mergeVarByRec[rec] = mergeVar
		p.SetVariableType(mergeVar, solver.Integer)

		positive := solver.NewConstraint(solver.GreaterEqual, 0)
		positive.SetCoefficient(mergeVar, 1)
		p.AddConstraint(positive)

		numMerges := solver.NewConstraint(solver.Equal, -1)
		numMerges.SetCoefficient(mergeVar, 1)
		for _, gt := range registry.MatchesByRec(rec) {
			numMerges.SetCoefficient(m.matchVar(gt, rec), -1)
		}
		p.AddConstraint(numMerges)
	}

	// Total number of merges.
	m.MergesVar = next
	next++
	p.SetVariableType(m.MergesVar, solver.Integer)

	sumOfMerges := solver.NewConstraint(solver.Equal, 0)
	sumOfMerges.SetCoefficient(m.MergesVar, 1)
	for _, rec := range recLabels {
		sumOfMerges.SetCoefficient(m.mergeVarByRec[rec], -1)
	}
	p.AddConstraint(sumOfMerges)

	if next != numVars {
		panic(fmt.Sprintf("enumerated %d variables, expected %d", next, numVars))
	}

	p.Objective[m.SplitsVar] = 1
	p.Objective[m.MergesVar] = 1

	return m
}

// NumIndicators returns the number of cell indicator variables.
func (m *Model) NumIndicators() int {
	return len(m.assignments)
}

// matchVar returns the match variable of a pairing. A missing pairing is
// a construction bug, not a recoverable condition.
func (m *Model) matchVar(gt, rec Label) int {
	v, ok := m.matchVars[matchKey{gt: gt, rec: rec}]
	if !ok {
		panic(fmt.Sprintf("no match variable for pairing (%d, %d)", gt, rec))
	}
	return v
}
