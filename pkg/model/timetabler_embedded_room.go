package model

import "context"

// embeddedRoomTimetabler branches over full (teacher, room, slot) candidates
type embeddedRoomTimetabler struct {
	budget Budget
}

func NewEmbeddedRoomTimetabler(budget Budget) Timetabler {
	return &embeddedRoomTimetabler{
		budget: budget,
	}
}

func (timetabler *embeddedRoomTimetabler) Build(ctx context.Context, input ModelInput) (Result, error) {
	//** Search
	searcher := newSearcher(ctx, input, timetabler.budget, true)
	outcome, duration := searcher.run()
	stats := searcher.stats(StrategyEmbedded, duration)

	//** Report
	switch outcome {
	case outcomeSolved:
		return solved(input, searcher.commitments, stats), nil
	case outcomeExhausted:
		return failed(StatusInfeasible, stats), nil
	}
	return failed(StatusDeadlineExceeded, stats), nil
}

func (timetabler *embeddedRoomTimetabler) Verify(timetable []Assignment, input ModelInput) bool {
	return verify(timetable, input)
}
