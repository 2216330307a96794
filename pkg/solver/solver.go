// Package solver defines the linear programming model handed to an ILP
// solving backend, and provides an exact branch-and-bound backend built on
// gonum's simplex implementation. The evaluation core only depends on the
// Solver interface; backends are interchangeable.
package solver

import "errors"

var (
	// ErrInfeasible is returned when no assignment satisfies the
	// constraint set.
	ErrInfeasible = errors.New("problem is infeasible")

	// ErrUnbounded is returned when the objective can be improved without
	// limit.
	ErrUnbounded = errors.New("problem is unbounded")

	// ErrNodeLimit is returned when branch-and-bound gives up before
	// proving optimality.
	ErrNodeLimit = errors.New("node limit exceeded")
)

// Relation compares the weighted variable sum of a constraint against its
// right-hand side.
type Relation int

const (
	Equal Relation = iota
	LessEqual
	GreaterEqual
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "=="
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	}
	return "?"
}

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// VarType declares the admissible values of a variable. Binary and
// Integer variables are implicitly bounded below by zero; Binary variables
// are additionally bounded above by one.
type VarType int

const (
	Continuous VarType = iota
	Binary
	Integer
)

// Constraint is one linear constraint with sparse coefficients.
type Constraint struct {
	// Coeffs maps variable index to its coefficient; absent variables
	// have coefficient zero.
	Coeffs   map[int]float64
	Relation Relation
	Value    float64
}

// NewConstraint returns an empty constraint with the given relation and
// right-hand side.
func NewConstraint(rel Relation, value float64) *Constraint {
	return &Constraint{
		Coeffs:   make(map[int]float64),
		Relation: rel,
		Value:    value,
	}
}

// SetCoefficient assigns the coefficient of one variable.
func (c *Constraint) SetCoefficient(v int, coeff float64) {
	c.Coeffs[v] = coeff
}

// Problem is a complete linear program with variable-type hints. Variables
// are indexed 0..NumVars-1; the objective vector has exactly NumVars
// entries.
type Problem struct {
	NumVars     int
	Objective   []float64
	Sense       Sense
	Constraints []*Constraint
	VarTypes    []VarType
}

// NewProblem creates a problem with numVars continuous variables and a
// zero objective.
func NewProblem(numVars int) *Problem {
	return &Problem{
		NumVars:   numVars,
		Objective: make([]float64, numVars),
		VarTypes:  make([]VarType, numVars),
	}
}

// SetVariableType overrides the type of one variable.
func (p *Problem) SetVariableType(v int, t VarType) {
	p.VarTypes[v] = t
}

// SetAllVariableTypes sets every variable to the same type.
func (p *Problem) SetAllVariableTypes(t VarType) {
	for i := range p.VarTypes {
		p.VarTypes[i] = t
	}
}

// AddConstraint appends a constraint to the problem.
func (p *Problem) AddConstraint(c *Constraint) {
	p.Constraints = append(p.Constraints, c)
}

// Solution is the assignment returned by a backend, indexed exactly like
// the problem's variables.
type Solution struct {
	Values    []float64
	Objective float64
}

// Solver is a blocking, one-shot ILP solving capability. A failed solve
// (infeasibility, unboundedness, resource limits) is reported through the
// error; there are no partial results.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}
