package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/service"
	"github.com/limaJavier/coursetabling/pkg/model"
)

type Scenario struct {
	Name    string
	Seed    uint64
	Options model.GeneratorOptions
}

type BenchmarkResult struct {
	Strategy   string `csv:"strategy"`
	Scenario   string `csv:"scenario"`
	Seed       uint64 `csv:"seed"`
	Courses    int    `csv:"courses"`
	Teachers   int    `csv:"teachers"`
	Rooms      int    `csv:"rooms"`
	Students   int    `csv:"students"`
	Slots      int    `csv:"slots"`
	Status     string `csv:"status"`
	Steps      uint64 `csv:"steps"`
	Backtracks uint64 `csv:"backtracks"`
	Duration   int64  `csv:"duration_ms"`
	Verified   bool   `csv:"verified"`
}

var strategies = []string{config.StrategyEmbedded, config.StrategyIsolated, config.StrategySat}

func main() {
	outFilePtr := flag.String("out", "benchmark_results.csv", "Path to the CSV file where the results will be written")
	seedPtr := flag.Uint64("seed", 1, "Seed of the first generated instance")
	instancesPtr := flag.Int("instances", 3, "Number of instances generated per scenario")
	timeoutPtr := flag.Duration("timeout", 30*time.Second, "Wall-clock limit of every solve")
	flag.Parse()

	scenarios := getScenarios(*seedPtr, *instancesPtr)
	fmt.Printf("Benchmarking %v instances with strategies %v\n", len(scenarios), strategies)

	results, err := benchmark(context.Background(), scenarios, strategies, *timeoutPtr)
	if err != nil {
		log.Fatalf("an error occurred during the benchmark: %v", err)
	}

	file, err := os.Create(*outFilePtr)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := toCsv(file, results); err != nil {
		log.Panicf("cannot write CSV: %v", err)
	}
}

func getScenarios(seed uint64, instances int) []Scenario {
	sizes := []struct {
		name    string
		options model.GeneratorOptions
	}{
		{"small", model.GeneratorOptions{Courses: 8, Teachers: 3, Rooms: 2, Groups: 2, Students: 20, Days: 2, Periods: 3, MaxLoad: 3}},
		{"medium", model.GeneratorOptions{Courses: 20, Teachers: 6, Rooms: 4, Groups: 4, Students: 80, Days: 5, Periods: 3, MaxLoad: 4}},
		{"tight", model.GeneratorOptions{Courses: 15, Teachers: 3, Rooms: 3, Groups: 3, Students: 60, Days: 5, Periods: 1, MaxLoad: 3}},
	}

	scenarios := make([]Scenario, 0, len(sizes)*instances)
	for _, size := range sizes {
		for i := range instances {
			scenarios = append(scenarios, Scenario{
				Name:    size.name,
				Seed:    seed + uint64(i),
				Options: size.options,
			})
		}
	}
	return scenarios
}

// benchmark solves every scenario with every strategy concurrently; each solve owns its input and timetabler
func benchmark(ctx context.Context, scenarios []Scenario, strategies []string, timeout time.Duration) ([]*BenchmarkResult, error) {
	results := make([]*BenchmarkResult, len(scenarios)*len(strategies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, scenario := range scenarios {
		for j, strategy := range strategies {
			g.Go(func() error {
				result, err := measure(ctx, scenario, strategy, timeout)
				if err != nil {
					return fmt.Errorf("scenario %q (seed %v) with strategy %q: %w", scenario.Name, scenario.Seed, strategy, err)
				}
				results[i*len(strategies)+j] = result
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func measure(ctx context.Context, scenario Scenario, strategy string, timeout time.Duration) (*BenchmarkResult, error) {
	rng := rand.New(rand.NewPCG(scenario.Seed, scenario.Seed))
	input, err := model.ProcessRawInput(model.GenerateInput(rng, scenario.Options))
	if err != nil {
		return nil, err
	}

	timetabler, err := service.NewTimetabler(config.SolverConfig{Strategy: strategy, Backend: config.BackendGini})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		return nil, err
	}

	return &BenchmarkResult{
		Strategy:   strategy,
		Scenario:   scenario.Name,
		Seed:       scenario.Seed,
		Courses:    len(input.Courses),
		Teachers:   len(input.Teachers),
		Rooms:      len(input.Rooms),
		Students:   len(input.Students),
		Slots:      len(input.Slots),
		Status:     result.Status.String(),
		Steps:      result.Stats.Steps,
		Backtracks: result.Stats.Backtracks,
		Duration:   result.Stats.Duration.Milliseconds(),
		Verified:   result.Status == model.StatusSolved && timetabler.Verify(result.Assignments, input),
	}, nil
}

func toCsv(w io.Writer, results []*BenchmarkResult) error {
	rows := lo.Filter(results, func(result *BenchmarkResult, _ int) bool { return result != nil })
	return gocsv.Marshal(&rows, w)
}
