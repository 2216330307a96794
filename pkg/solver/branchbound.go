package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// intTol is how far a relaxation value may sit from the nearest integer
// and still count as integral.
const intTol = 1e-6

// BranchBound solves integer linear programs exactly: the LP relaxation is
// solved with gonum's simplex, and fractional integer variables are
// resolved by depth-first branching with best-bound pruning.
type BranchBound struct {
	// MaxNodes caps the number of explored branch-and-bound nodes.
	MaxNodes int
}

// NewBranchBound returns a solver with the default node budget.
func NewBranchBound() *BranchBound {
	return &BranchBound{MaxNodes: 200000}
}

// bound is one branching decision: variable index, direction and value.
type bound struct {
	v     int
	upper bool // true: x[v] <= value, false: x[v] >= value
	value float64
}

// relaxation holds the problem in the general form expected by
// lp.Convert: minimize c'x subject to G x <= h and A x = b.
type relaxation struct {
	c    []float64
	g    [][]float64
	h    []float64
	a    [][]float64
	b    []float64
	nVar int
}

// Solve implements the Solver interface.
func (s *BranchBound) Solve(p *Problem) (*Solution, error) {
	if len(p.Objective) != p.NumVars || len(p.VarTypes) != p.NumVars {
		return nil, fmt.Errorf("inconsistent problem: %d variables, %d objective terms, %d type hints",
			p.NumVars, len(p.Objective), len(p.VarTypes))
	}

	rel := buildRelaxation(p)

	best := math.Inf(1)
	var bestX []float64
	nodes := 0

	var branch func(bounds []bound) error
	branch = func(bounds []bound) error {
		nodes++
		if s.MaxNodes > 0 && nodes > s.MaxNodes {
			return ErrNodeLimit
		}

		obj, x, err := rel.solve(bounds)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil // this subtree has no solution
		case errors.Is(err, lp.ErrUnbounded):
			return ErrUnbounded
		case err != nil:
			return fmt.Errorf("simplex failed: %w", err)
		}

		if obj >= best-1e-9 {
			return nil // cannot beat the incumbent
		}

		frac := fractionalVariable(x, p.VarTypes)
		if frac < 0 {
			round(x, p.VarTypes)
			obj = dot(rel.c, x)
			if obj < best {
				best = obj
				bestX = x
			}
			return nil
		}

		v := x[frac]
		down := append(append([]bound{}, bounds...), bound{v: frac, upper: true, value: math.Floor(v)})
		if err := branch(down); err != nil {
			return err
		}
		up := append(append([]bound{}, bounds...), bound{v: frac, upper: false, value: math.Ceil(v)})
		return branch(up)
	}

	if err := branch(nil); err != nil {
		return nil, err
	}
	if bestX == nil {
		return nil, ErrInfeasible
	}

	objective := best
	if p.Sense == Maximize {
		objective = -objective
	}
	return &Solution{Values: bestX, Objective: objective}, nil
}

// buildRelaxation flattens the problem into general LP form. Equalities
// become A rows; inequalities become G rows (GreaterEqual negated).
// Binary and Integer variables get explicit nonnegativity rows, Binary
// variables an upper bound of one; lp.Convert otherwise treats every
// variable as free.
func buildRelaxation(p *Problem) *relaxation {
	rel := &relaxation{nVar: p.NumVars}

	rel.c = make([]float64, p.NumVars)
	copy(rel.c, p.Objective)
	if p.Sense == Maximize {
		for i := range rel.c {
			rel.c[i] = -rel.c[i]
		}
	}

	for _, con := range p.Constraints {
		row := make([]float64, p.NumVars)
		for v, coeff := range con.Coeffs {
			row[v] = coeff
		}
		switch con.Relation {
		case Equal:
			rel.a = append(rel.a, row)
			rel.b = append(rel.b, con.Value)
		case LessEqual:
			rel.g = append(rel.g, row)
			rel.h = append(rel.h, con.Value)
		case GreaterEqual:
			for i := range row {
				row[i] = -row[i]
			}
			rel.g = append(rel.g, row)
			rel.h = append(rel.h, -con.Value)
		}
	}

	for v, t := range p.VarTypes {
		if t == Continuous {
			continue
		}
		low := make([]float64, p.NumVars)
		low[v] = -1
		rel.g = append(rel.g, low)
		rel.h = append(rel.h, 0)
		if t == Binary {
			high := make([]float64, p.NumVars)
			high[v] = 1
			rel.g = append(rel.g, high)
			rel.h = append(rel.h, 1)
		}
	}

	return rel
}

// solve runs the simplex on the relaxation plus the given branching
// bounds and maps the standard-form solution back to the original
// variables.
func (r *relaxation) solve(bounds []bound) (float64, []float64, error) {
	g := make([][]float64, 0, len(r.g)+len(bounds))
	h := make([]float64, 0, len(r.h)+len(bounds))
	g = append(g, r.g...)
	h = append(h, r.h...)
	for _, bd := range bounds {
		row := make([]float64, r.nVar)
		if bd.upper {
			row[bd.v] = 1
			h = append(h, bd.value)
		} else {
			row[bd.v] = -1
			h = append(h, -bd.value)
		}
		g = append(g, row)
	}

	var gMat, aMat mat.Matrix
	if len(g) > 0 {
		gMat = denseFromRows(g, r.nVar)
	}
	var b []float64
	if len(r.a) > 0 {
		aMat = denseFromRows(r.a, r.nVar)
		b = r.b
	}

	cNew, aNew, bNew := lp.Convert(r.c, gMat, h, aMat, b)
	obj, xNew, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	if err != nil {
		return 0, nil, err
	}

	// lp.Convert splits each free variable into a positive and a negative
	// part; recombine them.
	x := make([]float64, r.nVar)
	for i := range x {
		x[i] = xNew[i] - xNew[r.nVar+i]
	}
	return obj, x, nil
}

func denseFromRows(rows [][]float64, cols int) *mat.Dense {
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data)
}

// fractionalVariable returns the lowest-indexed integer-typed variable
// whose relaxation value is not integral, or -1 if the solution is
// integral.
func fractionalVariable(x []float64, types []VarType) int {
	for i, t := range types {
		if t == Continuous {
			continue
		}
		if math.Abs(x[i]-math.Round(x[i])) > intTol {
			return i
		}
	}
	return -1
}

func round(x []float64, types []VarType) {
	for i, t := range types {
		if t != Continuous {
			x[i] = math.Round(x[i])
		}
	}
}

func dot(c, x []float64) float64 {
	var sum float64
	for i := range c {
		sum += c[i] * x[i]
	}
	return sum
}
