package service

import (
	"context"

	"CryptoCast/internal/domain/models"
)

// PredictionClient requests a forecast from the asset's prediction service.
type PredictionClient interface {
	Fetch(ctx context.Context, asset models.Asset, tf models.Timeframe) (models.PredictionResponse, error)
}
