package domain

// Reserved markers recognised in raw parameter documents.
const (
	// IncludeKey lists the parameter sets a document inherits from.
	IncludeKey = "@include"

	// RefPrefix marks a string value as a cross-reference into the resolved tree.
	RefPrefix = "@ref:"

	// DefaultRunName is used when the resolved tree names no run.
	DefaultRunName = "UntitledRun"
)

// Keys consulted when deriving a run name from the resolved tree.
const (
	KeyRunName        = "run_name"
	KeyExperimentName = "experiment_name"
)
