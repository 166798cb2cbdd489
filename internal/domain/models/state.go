package models

import "time"

// StateKind tags the variant held by a RequestState.
type StateKind string

const (
	StateIdle    StateKind = "idle"
	StatePending StateKind = "pending"
	StateSuccess StateKind = "success"
	StateFailure StateKind = "failure"
)

// RequestState is the lifecycle of the current prediction request.
// Response is only set for StateSuccess, Message only for StateFailure.
// Build values with the constructors below so the variants stay consistent.
type RequestState struct {
	Kind         StateKind           `json:"kind"`
	Generation   uint64              `json:"generation"`
	SubmissionID string              `json:"submission_id,omitempty"`
	AssetID      string              `json:"asset_id,omitempty"`
	TimeframeID  string              `json:"timeframe_id,omitempty"`
	Response     *PredictionResponse `json:"response,omitempty"`
	Message      string              `json:"message,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RequestRef identifies the submission a state belongs to.
type RequestRef struct {
	Generation   uint64
	SubmissionID string
	AssetID      string
	TimeframeID  string
}

func IdleState(at time.Time) RequestState {
	return RequestState{Kind: StateIdle, UpdatedAt: at}
}

func PendingState(ref RequestRef, at time.Time) RequestState {
	return ref.state(StatePending, at)
}

func SuccessState(ref RequestRef, resp PredictionResponse, at time.Time) RequestState {
	s := ref.state(StateSuccess, at)
	s.Response = &resp
	return s
}

func FailureState(ref RequestRef, message string, at time.Time) RequestState {
	s := ref.state(StateFailure, at)
	s.Message = message
	return s
}

func (r RequestRef) state(kind StateKind, at time.Time) RequestState {
	return RequestState{
		Kind:         kind,
		Generation:   r.Generation,
		SubmissionID: r.SubmissionID,
		AssetID:      r.AssetID,
		TimeframeID:  r.TimeframeID,
		UpdatedAt:    at,
	}
}

// StateView is what the presentation API and the websocket feed publish.
// View is only set for a successful state.
type StateView struct {
	State RequestState    `json:"state"`
	View  *PredictionView `json:"view,omitempty"`
}

// SubmitReceipt acknowledges an accepted predict request.
type SubmitReceipt struct {
	SubmissionID string       `json:"submission_id"`
	Generation   uint64       `json:"generation"`
	State        RequestState `json:"state"`
}
