package commands

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonhee/rscreen/internal/analysis"
	"github.com/wonhee/rscreen/internal/marketdata"
	"github.com/wonhee/rscreen/internal/pipeline"
	"github.com/wonhee/rscreen/internal/ranking"
	"github.com/wonhee/rscreen/internal/screener"
	"github.com/wonhee/rscreen/pkg/config"
	"github.com/wonhee/rscreen/pkg/database"
	"github.com/wonhee/rscreen/pkg/logger"
	"github.com/wonhee/rscreen/pkg/redis"
)

// deps holds the shared wiring every command starts from
// ⭐ SSOT: 의존성 조립은 여기서만
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	rdb    *redis.Client
	stocks *marketdata.StockRepository
	prices *marketdata.PriceRepository
	orch   *pipeline.Orchestrator
}

// workersOverride replaces the configured worker count when positive.
// Set by command flags before initDeps runs.
var workersOverride int

// initDeps loads config, connects infrastructure and assembles the pipeline
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if workersOverride > 0 {
		cfg.Analysis.Workers = workersOverride
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Create repositories
	stocks := marketdata.NewStockRepository(db.Pool)
	prices := marketdata.NewPriceRepository(db.Pool)

	// 6. Create write throttle (0 disables)
	var limiter *rate.Limiter
	if cfg.Analysis.WriteRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Analysis.WriteRate), 1)
	}

	// 7. Assemble pipeline stages
	calc := analysis.NewCalculator(prices, limiter, log)
	ranker := ranking.NewRanker(prices, log)
	scr := screener.NewScreener(prices, ranker, log)
	if rdb.Enabled() {
		scr = scr.WithCache(redis.NewCache(rdb, "rscreen"))
	}

	orch := pipeline.NewOrchestrator(stocks, prices, calc, ranker, scr, cfg.Analysis.Workers, log)

	return &deps{
		cfg:    cfg,
		log:    log,
		db:     db,
		rdb:    rdb,
		stocks: stocks,
		prices: prices,
		orch:   orch,
	}, nil
}

// Close releases all connections
func (d *deps) Close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// screenParams builds screener params from config and command flags.
// A negative flag value keeps the configured default.
func (d *deps) screenParams(minPrice, minGrade float64, limit int) screener.Params {
	params := screener.Params{
		MinPrice: d.cfg.Analysis.MinPrice,
		MinGrade: d.cfg.Analysis.MinGrade,
		Limit:    d.cfg.Analysis.ScreenLimit,
	}
	if minPrice >= 0 {
		params.MinPrice = minPrice
	}
	if minGrade >= 0 {
		params.MinGrade = minGrade
	}
	if limit >= 0 {
		params.Limit = limit
	}
	return params
}

// parseDate parses a YYYY-MM-DD flag value. Empty means the latest date.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return date, nil
}
