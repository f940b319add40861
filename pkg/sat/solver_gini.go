package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

const pollInterval = 5 * time.Millisecond

// giniSolver runs the CDCL solver in-process, so no external executable is needed
type giniSolver struct{}

func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	if ctx.Err() != nil {
		return nil, ErrIndeterminate
	}

	g := gini.New()
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			g.Add(toLit(literal))
		}
		g.Add(z.LitNull)
	}

	result, err := wait(ctx, g.GoSolve())
	if err != nil {
		return nil, err
	}

	switch result {
	case 1:
	case -1:
		return nil, nil
	default:
		return nil, ErrIndeterminate
	}

	solution := make(SATSolution, 0, sat.Variables)
	maxVar := g.MaxVar()
	for variable := int64(1); variable <= int64(sat.Variables); variable++ {
		// Variables absent from every clause are unconstrained and reported as false
		if z.Var(variable) <= maxVar && g.Value(toLit(variable)) {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}

// wait polls the running solve until it finishes or the context is done, in which case the solve is stopped
func wait(ctx context.Context, solve inter.Solve) (int, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if result, done := solve.Test(); done {
			return result, nil
		}
		select {
		case <-ctx.Done():
			solve.Stop()
			return 0, ErrIndeterminate
		case <-ticker.C:
		}
	}
}

func toLit(literal int64) z.Lit {
	if literal < 0 {
		return z.Var(-literal).Neg()
	}
	return z.Var(literal).Pos()
}
