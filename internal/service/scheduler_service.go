package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/internal/apperrors"
	"github.com/limaJavier/coursetabling/internal/config"
	applog "github.com/limaJavier/coursetabling/internal/logger"
	"github.com/limaJavier/coursetabling/pkg/model"
	"github.com/limaJavier/coursetabling/pkg/sat"
)

type solveRecorder interface {
	ObserveSolve(strategy, status string, steps uint64, duration time.Duration)
}

type scheduleRenderer interface {
	Render(entries []model.ScheduleEntry, title string) ([]byte, error)
}

// Solution is a finished solve: the engine result plus its display form
type Solution struct {
	SolveID  string                `json:"solve_id"`
	Result   model.Result          `json:"result"`
	Schedule []model.ScheduleEntry `json:"schedule,omitempty"`
}

// SchedulerService runs one timetabler per request, bounded by the configured timeout.
type SchedulerService struct {
	timetabler model.Timetabler
	strategy   string
	timeout    time.Duration
	metrics    solveRecorder
	renderer   scheduleRenderer
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTimetabler selects the strategy and, for sat, the backend named by the configuration.
func NewTimetabler(cfg config.SolverConfig) (model.Timetabler, error) {
	budget := model.Budget{MaxSteps: cfg.MaxSteps}
	switch cfg.Strategy {
	case config.StrategyEmbedded:
		return model.NewEmbeddedRoomTimetabler(budget), nil
	case config.StrategyIsolated:
		return model.NewIsolatedRoomTimetabler(budget), nil
	case config.StrategySat:
		switch cfg.Backend {
		case config.BackendGini, "":
			return model.NewSatTimetabler(sat.NewGiniSolver()), nil
		case config.BackendKissat:
			return model.NewSatTimetabler(sat.NewKissatSolver(cfg.KissatPath)), nil
		}
		return nil, fmt.Errorf("unknown sat backend %q", cfg.Backend)
	}
	return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(
	cfg config.SolverConfig,
	metrics solveRecorder,
	renderer scheduleRenderer,
	validate *validator.Validate,
	logger *zap.Logger,
) (*SchedulerService, error) {
	timetabler, err := NewTimetabler(cfg)
	if err != nil {
		return nil, err
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{
		timetabler: timetabler,
		strategy:   cfg.Strategy,
		timeout:    cfg.Timeout,
		metrics:    metrics,
		renderer:   renderer,
		validator:  validate,
		logger:     logger,
	}, nil
}

// Solve validates the instance and builds a timetable. Infeasible and timed-out solves return the solution
// alongside an *apperrors.Error carrying the stats.
func (s *SchedulerService) Solve(ctx context.Context, raw model.RawModelInput) (*Solution, error) {
	input, err := model.ProcessRawInput(raw)
	if err != nil {
		return nil, apperrors.FromValidation(err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	solveID := uuid.NewString()
	logger := s.logger.With(zap.String("solve_id", solveID), zap.String("strategy", s.strategy))
	logger.Info("solve_started", applog.InstanceFields(input)...)

	start := time.Now()
	result, err := s.timetabler.Build(ctx, input)
	if err != nil {
		logger.Error("solve_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "timetabler malfunction")
	}
	if s.metrics != nil {
		s.metrics.ObserveSolve(s.strategy, result.Status.String(), result.Stats.Steps, time.Since(start))
	}
	logger.Info("solve_finished", applog.ResultFields(result)...)

	solution := &Solution{SolveID: solveID, Result: result}
	if result.Status != model.StatusSolved {
		return solution, apperrors.FromResult(result)
	}
	if !s.timetabler.Verify(result.Assignments, input) {
		logger.Error("solve_unverified")
		return nil, apperrors.ErrUnverified
	}
	solution.Schedule = model.Describe(input, result.Assignments)
	return solution, nil
}

// Render validates the entries and renders them as a PDF document
func (s *SchedulerService) Render(entries []model.ScheduleEntry, title string) ([]byte, error) {
	if len(entries) == 0 {
		return nil, apperrors.ErrValidation.WithMessage("at least one schedule entry is required")
	}
	for i, entry := range entries {
		if err := s.validator.Struct(entry); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrValidation, fmt.Sprintf("invalid schedule entry %d", i))
		}
	}
	if s.renderer == nil {
		return nil, apperrors.ErrInternal.WithMessage("pdf rendering is not configured")
	}

	document, err := s.renderer.Render(entries, title)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "cannot render schedule")
	}
	return document, nil
}
