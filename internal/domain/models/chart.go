package models

// ChartDataset is the merged, renderable view of one prediction.
// Predicted holds nil for every label in the historical region.
type ChartDataset struct {
	Labels     []string   `json:"labels"`
	Historical []float64  `json:"historical"`
	Predicted  []*float64 `json:"predicted"`
}

// TrendResult compares the last historical price with the target price.
type TrendResult struct {
	PercentChange float64 `json:"percent_change"`
	IsUp          bool    `json:"is_up"`
}

// Direction returns "up" or "down".
func (t TrendResult) Direction() string {
	if t.IsUp {
		return "up"
	}
	return "down"
}

// SeriesStyle is the visual encoding of one plotted series.
type SeriesStyle struct {
	Label           string  `json:"label"`
	BorderColor     string  `json:"border_color"`
	BackgroundColor string  `json:"background_color"`
	BorderDash      []int   `json:"border_dash,omitempty"`
	Tension         float64 `json:"tension"`
	Fill            bool    `json:"fill"`
	PointRadius     int     `json:"point_radius"`
	BorderWidth     int     `json:"border_width"`
}

// TrendIndicator is the badge rendered next to the predicted price.
type TrendIndicator struct {
	Value     string `json:"value"`
	Direction string `json:"direction"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
}

type LegendItem struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// TooltipEntry is one series line of the hover tooltip.
type TooltipEntry struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// ChartPoint carries the x-axis tick and hover tooltip for one label.
type ChartPoint struct {
	Tick    string         `json:"tick"`
	Title   string         `json:"title"`
	Entries []TooltipEntry `json:"entries"`
}

// PredictionView bundles everything the presentation layer needs to
// render a successful prediction.
type PredictionView struct {
	Title      string          `json:"title"`
	Subtitle   string          `json:"subtitle"`
	PriceText  string          `json:"price_text"`
	ExpectedOn string          `json:"expected_on"`
	Dataset    ChartDataset    `json:"dataset"`
	Points     []ChartPoint    `json:"points"`
	YTicks     []string        `json:"y_ticks"`
	Historical SeriesStyle     `json:"historical_style"`
	Predicted  SeriesStyle     `json:"predicted_style"`
	Trend      *TrendResult    `json:"trend,omitempty"`
	Indicator  *TrendIndicator `json:"indicator,omitempty"`
	Legend     []LegendItem    `json:"legend"`
}
