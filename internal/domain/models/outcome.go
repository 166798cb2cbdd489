package models

import "time"

// Failure kinds recorded on an Outcome.
const (
	FailureValidation  = "validation"
	FailureTransport   = "transport"
	FailureApplication = "application"
)

// Outcome is the archived summary of one completed request.
type Outcome struct {
	SubmissionID   string    `json:"submission_id"`
	Generation     uint64    `json:"generation"`
	AssetID        string    `json:"asset_id"`
	TimeframeID    string    `json:"timeframe_id"`
	Kind           StateKind `json:"kind"`
	FailureKind    string    `json:"failure_kind,omitempty"`
	Message        string    `json:"message,omitempty"`
	TargetPrice    float64   `json:"target_price,omitempty"`
	TargetDate     string    `json:"target_date,omitempty"`
	LastHistorical float64   `json:"last_historical,omitempty"`
	PercentChange  *float64  `json:"percent_change,omitempty"`
	IsUp           *bool     `json:"is_up,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}
