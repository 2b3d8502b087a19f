package indicators

import (
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func series(closes []float64, volumes []uint64) []*models.Enhanced {
	out := make([]*models.Enhanced, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		out[i] = &models.Enhanced{
			OHLCV: models.OHLCV{
				Time:   base.AddDate(0, 0, i),
				Close:  closes[i],
				Volume: volumes[i],
			},
		}
	}
	return out
}

func TestComputeMANullBeforeWindow(t *testing.T) {
	closes := make([]float64, 15)
	volumes := make([]uint64, 15)
	for i := range closes {
		closes[i] = float64(i + 1)
		volumes[i] = uint64(i + 1)
	}
	recs := series(closes, volumes)
	Compute(recs)

	for i := 0; i < 9; i++ {
		if recs[i].MA10 != nil {
			t.Fatalf("index %d: expected MA10 nil before window, got %v", i, *recs[i].MA10)
		}
	}
	want := 0.0
	for i := 0; i < 10; i++ {
		want += closes[i]
	}
	want /= 10
	if recs[9].MA10 == nil {
		t.Fatal("expected MA10 set at index 9")
	}
	if diff := *recs[9].MA10 - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("MA10 at index 9 = %v, want %v", *recs[9].MA10, want)
	}
}

func TestComputeCloseChangedFirstRowNil(t *testing.T) {
	recs := series([]float64{100, 110, 99}, []uint64{10, 20, 15})
	Compute(recs)

	if recs[0].CloseChanged != nil {
		t.Fatal("expected index 0 close_changed to be nil")
	}
	if recs[1].CloseChanged == nil {
		t.Fatal("expected index 1 close_changed to be set")
	}
	want := (110.0 - 100.0) / 100.0 * 100.0
	if *recs[1].CloseChanged != want {
		t.Fatalf("close_changed = %v, want %v", *recs[1].CloseChanged, want)
	}
}

func TestComputeTotalMoneyChanged(t *testing.T) {
	recs := series([]float64{100, 105}, []uint64{10, 20})
	Compute(recs)
	want := (105.0 - 100.0) * 20.0
	if recs[1].TotalMoneyChanged == nil || *recs[1].TotalMoneyChanged != want {
		t.Fatalf("total_money_changed = %v, want %v", recs[1].TotalMoneyChanged, want)
	}
}
