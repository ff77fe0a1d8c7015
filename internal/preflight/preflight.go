package preflight

import (
	"context"

	"mediasort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckMonitorRoot(cfg.Paths.MonitorDir)}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	roots := []struct {
		name string
		path string
	}{
		{"TV directory", cfg.Paths.TVDir},
		{"Movie directory", cfg.Paths.MovieDir},
		{"Music directory", cfg.Paths.MusicDir},
		{"Other directory", cfg.Paths.OtherDir},
	}
	for _, root := range roots {
		if root.path == "" {
			continue
		}
		results = append(results, CheckCategoryRoot(root.name, root.path))
	}

	if cfg.TMDB.APIKey != "" {
		results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))
	}
	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
