package recorder

// RunSummary holds the scalar summary of one simulation run.
type RunSummary struct {
	Label          string
	Route          string
	Compound       string
	DoseMg         float64
	DurationH      float64
	Supplements    string // comma-joined supplement ids
	PeakNadCytUM   float64
	PeakNadMitoUM  float64
	FinalNadCytUM  float64
	PrecursorCmax  float64
	PrecursorTmaxH float64
	WarningCount   int
}

// FitEvent holds the outcome of one calibration attempt.
type FitEvent struct {
	Dataset       string
	Supplements   string
	Success       bool
	NotApplicable bool
	Objective     float64
	Iterations    int
	Message       string
	Coefficients  string // JSON object, rule id -> coefficient
}

// Recorder persists run and calibration history for analysis.
type Recorder interface {
	RecordRun(s *RunSummary) error
	RecordFit(e *FitEvent) error
	Close() error
}
