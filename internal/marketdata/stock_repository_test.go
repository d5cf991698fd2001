package marketdata

import (
	"context"
	"testing"
)

func TestStockRepository_GetByTicker(t *testing.T) {
	pool := testPool(t)
	repo := NewStockRepository(pool)
	ctx := context.Background()

	stockID := seedStock(t, pool, "ZZRT04")

	stock, err := repo.GetByTicker(ctx, "ZZRT04")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if stock.ID != stockID {
		t.Errorf("ID = %d, want %d", stock.ID, stockID)
	}
	if stock.Market != "KOSPI" {
		t.Errorf("Market = %q, want KOSPI", stock.Market)
	}

	if _, err := repo.GetByTicker(ctx, "ZZNOPE"); err == nil {
		t.Error("GetByTicker for unknown ticker must return an error")
	}
}

func TestStockRepository_GetAll(t *testing.T) {
	pool := testPool(t)
	repo := NewStockRepository(pool)
	ctx := context.Background()

	seedStock(t, pool, "ZZRT05")

	stocks, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	var found bool
	for i, s := range stocks {
		if i > 0 && stocks[i-1].Ticker > s.Ticker {
			t.Fatal("GetAll not ordered by ticker")
		}
		if s.Ticker == "ZZRT05" {
			found = true
		}
	}
	if !found {
		t.Error("GetAll missing seeded stock")
	}
}
