package contracts

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MetricSignalRate = "signal_rate"

	// DefaultVersion is reported when the config never yielded a version
	DefaultVersion = "v1"
)

// ResultRecord is the single artifact a run produces.
// It is either a *SuccessRecord or an *ErrorRecord.
type ResultRecord interface {
	RecordStatus() string
	ExitCode() int
}

// SuccessRecord is written when every stage completed.
// Field order is the serialized key order.
type SuccessRecord struct {
	Version       string  `json:"version"`
	RowsProcessed int     `json:"rows_processed"`
	Metric        string  `json:"metric"`
	Value         float64 `json:"value"`
	LatencyMS     int64   `json:"latency_ms"`
	Seed          int64   `json:"seed"`
	Status        string  `json:"status"`
}

func (r *SuccessRecord) RecordStatus() string { return r.Status }

func (r *SuccessRecord) ExitCode() int { return 0 }

// ErrorRecord is written when any stage failed
type ErrorRecord struct {
	Version      string `json:"version"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (r *ErrorRecord) RecordStatus() string { return r.Status }

func (r *ErrorRecord) ExitCode() int { return 1 }
