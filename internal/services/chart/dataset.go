package chart

import "CryptoCast/internal/domain/models"

// BuildDataset merges the historical and predicted sub-series of a
// successful response into one chart dataset.
//
// Labels are historical dates followed by predicted dates, duplicates kept.
// Historical is not padded; the renderer plots it under the first
// len(Historical) labels. Predicted starts with one nil per historical
// price so the two lines never overlap. Mismatched or empty sub-series
// are passed through as-is.
func BuildDataset(resp models.PredictionResponse) models.ChartDataset {
	hist := resp.Historical()
	pred := resp.Predicted()

	labels := make([]string, 0, len(hist.Dates)+len(pred.Dates))
	labels = append(labels, hist.Dates...)
	labels = append(labels, pred.Dates...)

	historical := make([]float64, len(hist.Prices))
	copy(historical, hist.Prices)

	predicted := make([]*float64, len(hist.Prices), len(hist.Prices)+len(pred.Prices))
	for _, p := range pred.Prices {
		predicted = append(predicted, &p)
	}

	return models.ChartDataset{
		Labels:     labels,
		Historical: historical,
		Predicted:  predicted,
	}
}
