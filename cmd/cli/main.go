package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/csvio"
	"github.com/limaJavier/coursetabling/internal/export"
	"github.com/limaJavier/coursetabling/internal/logger"
	"github.com/limaJavier/coursetabling/internal/service"
	"github.com/limaJavier/coursetabling/pkg/model"
)

const (
	exitSolved           = 10
	exitInfeasible       = 20
	exitDeadlineExceeded = 30
	exitUnverified       = 15
	exitUsage            = 1
)

var validFormats = []string{"json", "csv", "pdf"}

type options struct {
	solver   config.SolverConfig
	file     string
	csvDir   string
	out      string
	format   string
	dimacs   string
	title    string
	logLevel string
}

type output struct {
	Result   model.Result          `json:"result"`
	Schedule []model.ScheduleEntry `json:"schedule,omitempty"`
}

func main() {
	// Define arguments
	configPtr := flag.String("config", "", "Configuration file supplying the solver defaults (json, yaml or env); .env is used when empty")
	strategyPtr := flag.String("strategy", "", `Strategy to build the timetable. Allowed values are:
- "embedded" (backtracking over full (teacher, room, slot) candidates),
- "isolated" (backtracking over (teacher, slot) candidates, rooms are matched afterwards per slot) and
- "sat" (the constraints are encoded as CNF and handed to a SAT solver)`)
	solverPtr := flag.String("solver", "", `SAT-Solver used by the "sat" strategy. Allowed values are: "gini" (in-process) and "kissat" (external binary)`)
	filePathPtr := flag.String("file", "", "Path to a JSON problem instance")
	csvDirPtr := flag.String("csv", "", "Path to a CSV catalogue directory (courses.csv, teachers.csv, rooms.csv, slots.csv and optionally groups.csv, students.csv, enrollments.csv)")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	formatPtr := flag.String("format", "json", `Output format. Allowed values are: "json", "csv" and "pdf"`)
	timeoutPtr := flag.Duration("timeout", 0, "Wall-clock limit of the search (e.g. 30s); overrides the configured SOLVER_TIMEOUT")
	stepsPtr := flag.Uint64("steps", 0, "Maximum number of search steps, where 0 means unlimited; overrides the configured SOLVER_MAX_STEPS")
	dimacsPtr := flag.String("dimacs", "", "Path to the file where the CNF encoding of the instance will be written in DIMACS format")
	titlePtr := flag.String("title", "Timetable", "Title of the PDF output")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	// Explicit flags take precedence over the configuration
	opts := options{
		solver:   cfg.Solver,
		file:     *filePathPtr,
		csvDir:   *csvDirPtr,
		out:      *outFilePathPtr,
		format:   strings.ToLower(*formatPtr),
		dimacs:   *dimacsPtr,
		title:    *titlePtr,
		logLevel: cfg.Log.Level,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			opts.solver.Strategy = strings.ToLower(*strategyPtr)
		case "solver":
			opts.solver.Backend = strings.ToLower(*solverPtr)
		case "timeout":
			opts.solver.Timeout = *timeoutPtr
		case "steps":
			opts.solver.MaxSteps = *stepsPtr
		}
	})

	logr, err := logger.New(config.LogConfig{Level: opts.logLevel, Format: "console"}, cfg.Env)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	code, err := run(context.Background(), opts, os.Stdout, logr)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func run(ctx context.Context, opts options, stdout io.Writer, logr *zap.Logger) (int, error) {
	// Validate arguments
	if !slices.Contains(validFormats, opts.format) {
		return exitUsage, fmt.Errorf("%v is not a valid format", opts.format)
	} else if (opts.file == "") == (opts.csvDir == "") {
		return exitUsage, errors.New("exactly one of -file and -csv must be specified")
	}

	timetabler, err := service.NewTimetabler(opts.solver)
	if err != nil {
		return exitUsage, err
	}

	// Extract input
	input, err := readInput(opts)
	if err != nil {
		return exitUsage, fmt.Errorf("cannot read input: %w", err)
	}

	if opts.dimacs != "" {
		cnf := model.NewConstraintSet(input).ToSAT()
		if err := os.WriteFile(opts.dimacs, []byte(cnf.ToDIMACS()), 0666); err != nil {
			return exitUsage, fmt.Errorf("an error occurred while writing the dimacs file: %w", err)
		}
	}

	if opts.solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.solver.Timeout)
		defer cancel()
	}

	// Build timetable
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		return exitUsage, fmt.Errorf("an error occurred during timetable construction: %w", err)
	}
	logr.With(zap.String("strategy", result.Stats.Strategy)).Info("timetable built", logger.ResultFields(result)...)

	switch result.Status {
	case model.StatusInfeasible:
		return exitInfeasible, nil
	case model.StatusDeadlineExceeded:
		return exitDeadlineExceeded, nil
	}

	// Verify timetable correctness
	if !timetabler.Verify(result.Assignments, input) {
		return exitUnverified, nil
	}

	content, err := render(opts, output{Result: result, Schedule: model.Describe(input, result.Assignments)})
	if err != nil {
		return exitUsage, err
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if opts.out == "" {
		if _, err := stdout.Write(content); err != nil {
			return exitUsage, err
		}
	} else if err := os.WriteFile(opts.out, content, 0666); err != nil {
		return exitUsage, fmt.Errorf("an error occurred while writing to the output file: %w", err)
	}

	return exitSolved, nil
}

func readInput(opts options) (model.ModelInput, error) {
	if opts.file != "" {
		return model.InputFromJson(opts.file)
	}
	raw, err := csvio.LoadCatalogue(opts.csvDir)
	if err != nil {
		return model.ModelInput{}, err
	}
	return model.ProcessRawInput(raw)
}

func render(opts options, out output) ([]byte, error) {
	switch opts.format {
	case "csv":
		str, err := csvio.ExportScheduleString(out.Schedule)
		return []byte(str), err
	case "pdf":
		return export.NewPDFRenderer().Render(out.Schedule, opts.title)
	}

	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("an error occurred while building output json: %w", err)
	}
	return append(content, '\n'), nil
}
