package preflight

import (
	"filesort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the configured source and destination.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return Run(cfg.Paths.SourceDir, cfg.Paths.DestinationDir)
}

// Run executes every check for an explicit source and destination.
func Run(source, destination string) []Result {
	results := []Result{
		CheckSourceAccess("Source directory", source),
		CheckDestinationAccess("Destination directory", destination),
	}
	if target := nearestExisting(destination); target != "" {
		results = append(results, CheckFreeSpace("Destination free space", target, source))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
