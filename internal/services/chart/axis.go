package chart

import "CryptoCast/internal/domain/models"

const yTickCount = 5

// Points builds the x-axis tick and tooltip of every label in ds. A
// tooltip lists each series that has a value under the label.
func Points(ds models.ChartDataset, trend models.TrendResult, known bool) []models.ChartPoint {
	points := make([]models.ChartPoint, len(ds.Labels))
	for i, label := range ds.Labels {
		p := models.ChartPoint{
			Tick:  FormatTickDate(label),
			Title: FormatTooltipDate(label),
		}
		if i < len(ds.Historical) {
			v := ds.Historical[i]
			p.Entries = append(p.Entries, models.TooltipEntry{
				Text:  TooltipLabel(LabelHistorical, &v),
				Color: TooltipColor(LabelHistorical, trend, known),
			})
		}
		if i < len(ds.Predicted) && ds.Predicted[i] != nil {
			p.Entries = append(p.Entries, models.TooltipEntry{
				Text:  TooltipLabel(LabelPredicted, ds.Predicted[i]),
				Color: TooltipColor(LabelPredicted, trend, known),
			})
		}
		points[i] = p
	}
	return points
}

// YTicks spreads yTickCount labels evenly between the lowest and highest
// plotted price. A flat series yields one tick, an empty one none.
func YTicks(ds models.ChartDataset) []string {
	var lo, hi float64
	seen := false
	observe := func(v float64) {
		if !finite(v) {
			return
		}
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}
	for _, v := range ds.Historical {
		observe(v)
	}
	for _, v := range ds.Predicted {
		if v != nil {
			observe(*v)
		}
	}

	switch {
	case !seen:
		return nil
	case lo == hi:
		return []string{FormatTick(lo)}
	}
	step := (hi - lo) / float64(yTickCount-1)
	ticks := make([]string, yTickCount)
	for i := range ticks {
		ticks[i] = FormatTick(lo + step*float64(i))
	}
	return ticks
}
