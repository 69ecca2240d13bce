package port

import (
	"context"

	"qhedge/internal/domain/model"
)

// CalibrationRepository persists the formation dataset between runs. The
// storage format (flat file, embedded store, remote store) is swappable
// without touching calibration logic.
type CalibrationRepository interface {
	// Load returns the persisted dataset, or model.ErrNoCalibration if
	// nothing has been saved yet (which triggers a full recalibration).
	Load(ctx context.Context) (model.FormationDataset, error)

	// Save replaces the persisted dataset wholesale.
	Save(ctx context.Context, dataset model.FormationDataset) error

	Close() error
}

// HistorySource supplies daily close series for calibration and beta
// estimation. Retrieval itself (data vendor, web page, broker history) is
// an external collaborator behind this port.
type HistorySource interface {
	// DailyCloses returns up to lookback most recent daily closes per
	// symbol, oldest first.
	DailyCloses(ctx context.Context, symbols []string, lookback int) (map[string][]float64, error)
}
