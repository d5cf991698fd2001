package marketdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonhee/rscreen/internal/contracts"
)

// StockRepository implements contracts.StockRepository.
// The stocks table is owned by the ingestion collaborator; this engine only
// reads it.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new stock repository.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// GetAll returns every stock in the universe ordered by ticker.
func (r *StockRepository) GetAll(ctx context.Context) ([]contracts.Stock, error) {
	query := `
		SELECT id, ticker, name, market
		FROM stocks
		ORDER BY ticker
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []contracts.Stock
	for rows.Next() {
		var s contracts.Stock
		if err := rows.Scan(&s.ID, &s.Ticker, &s.Name, &s.Market); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// GetByTicker returns one stock by its ticker.
func (r *StockRepository) GetByTicker(ctx context.Context, ticker string) (*contracts.Stock, error) {
	query := `
		SELECT id, ticker, name, market
		FROM stocks
		WHERE ticker = $1
	`

	var s contracts.Stock
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&s.ID, &s.Ticker, &s.Name, &s.Market)
	if err != nil {
		return nil, fmt.Errorf("query stock %s: %w", ticker, err)
	}
	return &s, nil
}
