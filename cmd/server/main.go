package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/export"
	"github.com/limaJavier/coursetabling/internal/handler"
	"github.com/limaJavier/coursetabling/internal/logger"
	"github.com/limaJavier/coursetabling/internal/metrics"
	"github.com/limaJavier/coursetabling/internal/service"
)

func main() {
	configFile := flag.String("config", "", "Configuration file (json, yaml or env); .env is used when empty")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Log, cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	metricsSvc := metrics.NewService()
	scheduler, err := service.NewSchedulerService(cfg.Solver, metricsSvc, export.NewPDFRenderer(), nil, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init scheduler", "error", err)
	}

	r := handler.NewRouter(cfg, logr, metricsSvc, scheduler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "strategy", cfg.Solver.Strategy, "timeout", cfg.Solver.Timeout)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
