package audit

import "time"

// Entry is one stored provider call.
type Entry struct {
	Provider   string
	Model      string
	Outcome    string
	Reason     string
	DurationMS int64
	CreatedAt  time.Time
}

// SummaryRow counts calls for one provider and outcome.
type SummaryRow struct {
	Provider      string  `json:"provider"`
	Outcome       string  `json:"outcome"`
	Calls         int64   `json:"calls"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}
