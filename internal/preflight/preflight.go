package preflight

import (
	"context"

	"signalgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// HealthChecker is satisfied by the generation service client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RunAll executes every preflight check for the given config. The state
// directory is only checked when session persistence is enabled.
func RunAll(ctx context.Context, cfg *config.Config, service HealthChecker) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Session.Persist {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if service != nil {
		results = append(results, CheckService(ctx, service))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
