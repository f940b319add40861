package model

import (
	"context"
	"fmt"
	"time"
)

// isolatedRoomTimetabler branches over (teacher, slot) candidates bounded by a per-slot room counter and assigns the rooms once every course is placed
type isolatedRoomTimetabler struct {
	budget Budget
}

func NewIsolatedRoomTimetabler(budget Budget) Timetabler {
	return &isolatedRoomTimetabler{
		budget: budget,
	}
}

func (timetabler *isolatedRoomTimetabler) Build(ctx context.Context, input ModelInput) (Result, error) {
	//** Search
	searcher := newSearcher(ctx, input, timetabler.budget, false)
	outcome, duration := searcher.run()

	switch outcome {
	case outcomeExhausted:
		return failed(StatusInfeasible, searcher.stats(StrategyIsolated, duration)), nil
	case outcomeAborted:
		return failed(StatusDeadlineExceeded, searcher.stats(StrategyIsolated, duration)), nil
	}

	//** Assign rooms
	start := time.Now()
	commitments, err := roomAssignment(searcher.commitments, searcher.rooms)
	if err != nil {
		// The room counter guarantees a perfect matching, so failing here is a malfunction
		return Result{}, fmt.Errorf("cannot assign rooms: %w", err)
	}

	return solved(input, commitments, searcher.stats(StrategyIsolated, duration+time.Since(start))), nil
}

func (timetabler *isolatedRoomTimetabler) Verify(timetable []Assignment, input ModelInput) bool {
	return verify(timetable, input)
}
