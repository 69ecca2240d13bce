// Package csvfile persists the formation dataset as a flat CSV file, one
// row per pair. This is the default calibration store; sqlite and others
// implement the same repository port.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"qhedge/internal/domain/model"
)

var header = []string{"pair", "hedge_ratio", "spread_mean", "spread_std"}

type Repo struct {
	path string
}

func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Close() error { return nil }

// Load reads the persisted dataset. A missing file is not an error: it
// returns model.ErrNoCalibration so the caller runs a fresh calibration.
func (r *Repo) Load(ctx context.Context) (model.FormationDataset, error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return model.FormationDataset{}, model.ErrNoCalibration
	}
	if err != nil {
		return model.FormationDataset{}, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return model.FormationDataset{}, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(rows) == 0 {
		return model.FormationDataset{}, model.ErrNoCalibration
	}

	var dataset model.FormationDataset
	for i, row := range rows[1:] { // skip header
		if len(row) != len(header) {
			return model.FormationDataset{}, fmt.Errorf("%s row %d: want %d columns, got %d",
				r.path, i+2, len(header), len(row))
		}
		pair, err := model.ParsePairKey(row[0])
		if err != nil {
			return model.FormationDataset{}, fmt.Errorf("%s row %d: %w", r.path, i+2, err)
		}
		hedge, err1 := strconv.ParseFloat(row[1], 64)
		mean, err2 := strconv.ParseFloat(row[2], 64)
		std, err3 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return model.FormationDataset{}, fmt.Errorf("%s row %d: malformed float", r.path, i+2)
		}
		dataset.Records = append(dataset.Records, model.CalibrationRecord{
			Pair:       pair,
			HedgeRatio: hedge,
			SpreadMean: mean,
			SpreadStd:  std,
		})
	}
	return dataset, nil
}

// Save writes the dataset atomically (temp file + rename) so a crash
// mid-write never leaves a truncated calibration on disk.
func (r *Repo) Save(ctx context.Context, dataset model.FormationDataset) error {
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, rec := range dataset.Records {
		row := []string{
			rec.Pair.Key(),
			strconv.FormatFloat(rec.HedgeRatio, 'g', -1, 64),
			strconv.FormatFloat(rec.SpreadMean, 'g', -1, 64),
			strconv.FormatFloat(rec.SpreadStd, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
