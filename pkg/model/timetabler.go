package model

import "context"

type Timetabler interface {
	// Build returns a non-nil error only when the timetabler malfunctions; infeasibility and exhausted budgets are reported through Result.Status
	Build(
		ctx context.Context,
		input ModelInput,
	) (Result, error)

	Verify(
		timetable []Assignment,
		input ModelInput,
	) bool
}

// Budget bounds a search by the number of candidate commitments it may make. Zero means unlimited
type Budget struct {
	MaxSteps uint64
}

const (
	StrategyEmbedded = "embedded"
	StrategyIsolated = "isolated"
	StrategySat      = "sat"
)
