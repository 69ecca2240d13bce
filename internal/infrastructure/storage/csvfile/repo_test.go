package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qhedge/internal/domain/model"
)

func sampleDataset(t *testing.T) model.FormationDataset {
	t.Helper()
	ab, err := model.NewPair("AAPL", "MSFT")
	if err != nil {
		t.Fatal(err)
	}
	cd, err := model.NewPair("KO", "PEP")
	if err != nil {
		t.Fatal(err)
	}
	return model.FormationDataset{Records: []model.CalibrationRecord{
		{Pair: ab, HedgeRatio: 1.2345678901234567, SpreadMean: -0.001, SpreadStd: 0.0123},
		{Pair: cd, HedgeRatio: 0.98, SpreadMean: 0.25, SpreadStd: 0.1},
	}}
}

func TestRepoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs-data.csv")
	repo := New(path)
	defer repo.Close()

	want := sampleDataset(t)
	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("want %d records, got %d", want.Len(), got.Len())
	}
	for i := range want.Records {
		// floats must round-trip exactly through the text encoding
		if got.Records[i] != want.Records[i] {
			t.Errorf("record %d: want %+v, got %+v", i, want.Records[i], got.Records[i])
		}
	}
}

func TestRepoMissingFile(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := repo.Load(context.Background()); !errors.Is(err, model.ErrNoCalibration) {
		t.Fatalf("missing file: want ErrNoCalibration, got %v", err)
	}
}

func TestRepoSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs-data.csv")
	repo := New(path)

	if err := repo.Save(context.Background(), sampleDataset(t)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	p, _ := model.NewPair("GE", "F")
	smaller := model.FormationDataset{Records: []model.CalibrationRecord{
		{Pair: p, HedgeRatio: 1, SpreadMean: 0, SpreadStd: 0.5},
	}}
	if err := repo.Save(context.Background(), smaller); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != 1 || got.Records[0].Pair.Key() != "GE|F" {
		t.Errorf("save must replace wholesale, got %+v", got.Records)
	}
}

func TestRepoCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "pairs-data.csv")
	repo := New(path)

	if err := repo.Save(context.Background(), sampleDataset(t)); err != nil {
		t.Fatalf("save into missing directory: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestRepoRejectsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs-data.csv")
	content := "pair,hedge_ratio,spread_mean,spread_std\nAAPL|MSFT,not-a-float,0,0.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path).Load(context.Background()); err == nil {
		t.Fatal("malformed float must be rejected")
	}
}
