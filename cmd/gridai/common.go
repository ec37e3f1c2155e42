package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridai/gridai/internal/config"
	"github.com/gridai/gridai/internal/monitoring"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/cmd/gridai/cli"
)

// exitConfig/exitEmergencyStop/exitSignal are spec.md §6's exit codes:
// 0 success, 1 missing required credentials or config, 2 EMERGENCY_STOP,
// 130 SIGINT.
const (
	exitOK             = 0
	exitConfig         = 1
	exitEmergencyStop  = 2
	exitSignal         = 130
)

// loadConfig runs the common profile -> override -> env layering every
// subcommand starts with, returning the loaded config, a stdout logger,
// or a wrapped error on any failure.
func loadConfig(c *cli.CommonFlags) (*config.Config, *telemetry.Logger, error) {
	mgr := config.NewManager()
	cfg, err := mgr.Load(*c.ConfigDir, *c.Profile, *c.OverrideFile, *c.EnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	log := telemetry.NewStdout(cfg.Monitoring.LogLevel == "debug")
	return cfg, log, nil
}

// startMonitoringServers serves the Prometheus and health-check HTTP
// surfaces spec.md §7 names, returning the HealthChecker the control
// loop records ticks against. Both listeners run detached; a failure to
// bind is logged but not fatal, matching the teacher's best-effort
// metrics server startup.
func startMonitoringServers(cfg *config.Config, log *telemetry.Logger) *monitoring.HealthChecker {
	health := monitoring.NewHealthChecker()

	if cfg.Monitoring.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Monitoring.MetricsAddr, mux); err != nil {
				log.Warn("metrics server stopped: %v", err)
			}
		}()
	}
	if cfg.Monitoring.HealthAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", health.ServeHTTP)
			if err := http.ListenAndServe(cfg.Monitoring.HealthAddr, mux); err != nil {
				log.Warn("health server stopped: %v", err)
			}
		}()
	}
	return health
}

func fatalConfig(format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return exitConfig
}
