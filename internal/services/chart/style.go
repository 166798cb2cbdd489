package chart

import "CryptoCast/internal/domain/models"

const (
	ColorHistorical     = "rgba(54, 162, 235, 1)"
	ColorHistoricalFill = "rgba(54, 162, 235, 0.2)"
	ColorUp             = "rgba(75, 192, 112, 1)"
	ColorUpFill         = "rgba(75, 192, 112, 0.2)"
	ColorDown           = "rgba(255, 99, 132, 1)"
	ColorDownFill       = "rgba(255, 99, 132, 0.2)"
)

const (
	LabelHistorical = "Historical Price"
	LabelPredicted  = "Predicted Price"
	LegendHistory   = "Historical Data"
	legendPredicted = "Predicted Trend"
	lineTension     = 0.4
)

// HistoricalStyle is the encoding of the observed price line.
func HistoricalStyle() models.SeriesStyle {
	return models.SeriesStyle{
		Label:           LabelHistorical,
		BorderColor:     ColorHistorical,
		BackgroundColor: ColorHistoricalFill,
		Tension:         lineTension,
		Fill:            true,
		PointRadius:     0,
		BorderWidth:     2,
	}
}

// PredictedStyle colors the dashed forecast line by trend direction.
// An unknown trend falls back to the historical color.
func PredictedStyle(trend models.TrendResult, known bool) models.SeriesStyle {
	border, fill := TrendColors(trend, known)
	return models.SeriesStyle{
		Label:           LabelPredicted,
		BorderColor:     border,
		BackgroundColor: fill,
		BorderDash:      []int{5, 5},
		Tension:         lineTension,
		Fill:            false,
		PointRadius:     3,
		BorderWidth:     2,
	}
}

// TrendColors returns the line and fill colors for a trend.
func TrendColors(trend models.TrendResult, known bool) (string, string) {
	switch {
	case !known:
		return ColorHistorical, ColorHistoricalFill
	case trend.IsUp:
		return ColorUp, ColorUpFill
	default:
		return ColorDown, ColorDownFill
	}
}

// Indicator builds the change badge, or nil when the trend is unknown.
func Indicator(trend models.TrendResult, known bool) *models.TrendIndicator {
	if !known {
		return nil
	}
	color, _ := TrendColors(trend, known)
	return &models.TrendIndicator{
		Value:     FormatPercent(trend.PercentChange),
		Direction: trend.Direction(),
		Icon:      "arrow-" + trend.Direction(),
		Color:     color,
	}
}

// Legend lists both series with the predicted entry named by direction.
func Legend(trend models.TrendResult, known bool) []models.LegendItem {
	color, _ := TrendColors(trend, known)
	text := legendPredicted
	if known {
		if trend.IsUp {
			text += " (Up)"
		} else {
			text += " (Down)"
		}
	}
	return []models.LegendItem{
		{Text: LegendHistory, Color: ColorHistorical},
		{Text: text, Color: color},
	}
}

// TooltipColor is the label color for a series in the hover tooltip.
func TooltipColor(seriesLabel string, trend models.TrendResult, known bool) string {
	if seriesLabel == LabelPredicted {
		color, _ := TrendColors(trend, known)
		return color
	}
	return ColorHistorical
}
