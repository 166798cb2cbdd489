package chart

import "CryptoCast/internal/domain/models"

// BuildView derives the full presentation of a successful prediction.
// Nothing here is cached; call it again for every state read.
func BuildView(asset models.Asset, tf models.Timeframe, resp models.PredictionResponse) models.PredictionView {
	trend, known := Classify(resp)
	target, _ := resp.Target()
	ds := BuildDataset(resp)

	v := models.PredictionView{
		Title:      "Predicted Price for " + asset.Name,
		Subtitle:   tf.Label + " forecast",
		PriceText:  FormatPrice(target.Price),
		ExpectedOn: "Expected on " + FormatExpectedDate(target.Date),
		Dataset:    ds,
		Points:     Points(ds, trend, known),
		YTicks:     YTicks(ds),
		Historical: HistoricalStyle(),
		Predicted:  PredictedStyle(trend, known),
		Indicator:  Indicator(trend, known),
		Legend:     Legend(trend, known),
	}
	if known {
		v.Trend = &trend
	}
	return v
}

// EncodeState wraps st for publishing, attaching the view when st holds a
// successful response.
func EncodeState(st models.RequestState, asset models.Asset, tf models.Timeframe) models.StateView {
	out := models.StateView{State: st}
	if st.Kind == models.StateSuccess && st.Response != nil {
		v := BuildView(asset, tf, *st.Response)
		out.View = &v
	}
	return out
}
