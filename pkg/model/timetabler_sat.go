package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/limaJavier/coursetabling/pkg/sat"
)

// satTimetabler encodes the constraint set as CNF and delegates the search to a SAT solver
type satTimetabler struct {
	solver sat.SATSolver
}

func NewSatTimetabler(solver sat.SATSolver) Timetabler {
	return &satTimetabler{
		solver: solver,
	}
}

func (timetabler *satTimetabler) Build(ctx context.Context, input ModelInput) (Result, error) {
	start := time.Now()
	stats := func() Stats {
		return Stats{Strategy: StrategySat, Duration: time.Since(start)}
	}

	//** Build SAT instance
	constraints := NewConstraintSet(input)
	satInstance := constraints.ToSAT()

	//** Solve SAT instance
	solution, err := timetabler.solver.Solve(ctx, satInstance)
	if errors.Is(err, sat.ErrIndeterminate) {
		return failed(StatusDeadlineExceeded, stats()), nil
	} else if err != nil {
		return Result{}, fmt.Errorf("sat solver failed: %w", err)
	} else if solution == nil { // The SAT instance is not satisfiable
		return failed(StatusInfeasible, stats()), nil
	}

	assignments := constraints.Decode(solution)
	return Result{Status: StatusSolved, Assignments: assignments, Stats: stats()}, nil
}

func (timetabler *satTimetabler) Verify(timetable []Assignment, input ModelInput) bool {
	return verify(timetable, input)
}
