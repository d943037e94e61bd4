// Command enginectl is the operator-facing replay and inspection harness
// for the engine: it loads an admin configuration, optionally seeds and
// replays a YAML scenario script against a fresh in-memory engine, and
// optionally serves a read-only HTTP surface over the result — a small
// flag-driven binary wrapping one library package.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"perpcore/config"
	"perpcore/core/state"
	"perpcore/engine"
	"perpcore/observability/logging"
)

func main() {
	var (
		configPath   string
		scenarioPath string
		listenAddr   string
	)
	flag.StringVar(&configPath, "config", "./config.toml", "path to the engine admin configuration")
	flag.StringVar(&scenarioPath, "scenario", "", "path to a YAML scenario script to replay")
	flag.StringVar(&listenAddr, "listen", "", "address to serve the read-only HTTP API on (empty disables it)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("PERPCORE_ENV"))
	logger := logging.Setup("enginectl", env)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(*cfg); err != nil {
		logger.Error("validate config", "error", err)
		os.Exit(1)
	}

	st := state.New()
	eng := engine.New(st, *cfg, logger)
	rec := newRecorder(1024)
	st.SetEmitter(rec)

	if scenarioPath != "" {
		s, err := loadScenario(scenarioPath)
		if err != nil {
			logger.Error("load scenario", "error", err)
			os.Exit(1)
		}
		for _, opErr := range applyScenario(eng, st, s) {
			logger.Warn("scenario operation rejected", "error", opErr)
		}
		if err := eng.RefreshMetrics(); err != nil {
			logger.Error("refresh metrics", "error", err)
		}
		fmt.Fprintf(os.Stdout, "replayed %d operations against %d assets\n", len(s.Operations), len(s.Assets))
	}

	if listenAddr == "" {
		return
	}

	logger.Info("serving read-only API", "addr", listenAddr)
	if err := http.ListenAndServe(listenAddr, newRouter(st, rec)); err != nil {
		logger.Error("http server exited", "error", err)
		os.Exit(1)
	}
}
