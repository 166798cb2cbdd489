package models

// PredictionRequest is the body sent to a per-asset prediction service.
type PredictionRequest struct {
	Crypto    string `json:"crypto"`
	Timeframe string `json:"timeframe"`
}

// Series is an ordered run of dated prices. Dates and Prices are expected
// to have the same length; callers must not rely on it.
type Series struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

type ChartData struct {
	Historical  Series `json:"historical"`
	Predictions Series `json:"predictions"`
}

// PredictionPoint is the target the model forecasts for the horizon end.
type PredictionPoint struct {
	Price float64 `json:"price"`
	Date  string  `json:"date"`
}

type PredictionResult struct {
	ChartData  ChartData       `json:"chart_data"`
	Prediction PredictionPoint `json:"prediction"`
	Timeframe  string          `json:"timeframe,omitempty"` // e.g. "7 days"
}

// PredictionResponse is the envelope returned by a prediction service.
// Result is set when Success is true, Error when it is false.
type PredictionResponse struct {
	Success   bool              `json:"success"`
	Crypto    string            `json:"crypto,omitempty"`
	Timeframe string            `json:"timeframe,omitempty"`
	Result    *PredictionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Historical returns the historical sub-series, empty when Result is missing.
func (r PredictionResponse) Historical() Series {
	if r.Result == nil {
		return Series{}
	}
	return r.Result.ChartData.Historical
}

// Predicted returns the predicted sub-series, empty when Result is missing.
func (r PredictionResponse) Predicted() Series {
	if r.Result == nil {
		return Series{}
	}
	return r.Result.ChartData.Predictions
}

// Target returns the forecast target point and whether one is present.
func (r PredictionResponse) Target() (PredictionPoint, bool) {
	if r.Result == nil {
		return PredictionPoint{}, false
	}
	return r.Result.Prediction, true
}
