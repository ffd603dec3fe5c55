package logger

// OutputCategory defines a category of CLI output that can be enabled or
// disabled by verbosity, independent of log severity.
//
//	0 (default) - results, errors with hints, final status
//	1 (-v)      - + one line per job, unchanged files
//	2 (-vv)     - + timing, resolved config
//	3 (-vvv)    - + formatter output, value dumps
type OutputCategory int

const (
	// Level 0 - Always shown
	OutputResults    OutputCategory = iota // Files written, check diffs
	OutputErrors                           // Errors with hints
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v)
	OutputProgress  // One line per job
	OutputUnchanged // Files skipped because the content matched

	// Level 2 (-vv)
	OutputTiming // Per-job durations
	OutputConfig // Resolved configuration

	// Level 3 (-vvv)
	OutputFormatter // Formatter stdout/stderr
	OutputDataDump  // Parsed value trees
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress:  VerbosityInfo,
	OutputUnchanged: VerbosityInfo,

	OutputTiming: VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputFormatter: VerbosityTrace,
	OutputDataDump:  VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputUserStatus: "status",
	OutputProgress:   "progress",
	OutputUnchanged:  "unchanged",
	OutputTiming:     "timing",
	OutputConfig:     "config",
	OutputFormatter:  "formatter",
	OutputDataDump:   "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
