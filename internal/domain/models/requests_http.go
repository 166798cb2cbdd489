package models

// Requests for the presentation HTTP endpoints.

type PredictRequest struct {
	Crypto    string `json:"crypto" default:"bitcoin" validate:"required,max=32"`
	Timeframe string `json:"timeframe" default:"7d" validate:"required,max=16"`
}

type LatestOutcomeRequest struct {
	Crypto    string `query:"crypto" json:"crypto" validate:"required,max=32"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"7d" validate:"required,max=16"`
}

type OutcomeHistoryRequest struct {
	Crypto    string `query:"crypto" json:"crypto" validate:"required,max=32"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"7d" validate:"required,max=16"`
	Limit     int    `query:"limit" json:"limit" default:"20" validate:"min=1,max=500"`
}
