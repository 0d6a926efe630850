package domain

const (
	// Duplicate detection constants
	DUPLICATE_MAX_SPAN_DAYS = 3

	// Time series constants
	DEFAULT_WINDOW_SHORT  = 7
	DEFAULT_WINDOW_MEDIUM = 14
	DEFAULT_WINDOW_LONG   = 28

	// Build steps
	STEP_DEDUP      = "dedup"
	STEP_HOLDER     = "holder"
	STEP_KPI        = "kpi"
	STEP_TIMESERIES = "timeseries"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)

// DefaultWindows returns the default moving-window lengths in days
func DefaultWindows() []int {
	return []int{DEFAULT_WINDOW_SHORT, DEFAULT_WINDOW_MEDIUM, DEFAULT_WINDOW_LONG}
}

// BuildSteps returns the build steps in dependency order
func BuildSteps() []string {
	return []string{STEP_DEDUP, STEP_HOLDER, STEP_KPI, STEP_TIMESERIES}
}
