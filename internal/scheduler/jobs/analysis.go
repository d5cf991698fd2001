package jobs

import (
	"context"
	"fmt"

	"github.com/wonhee/rscreen/internal/pipeline"
	"github.com/wonhee/rscreen/internal/screener"
	"github.com/wonhee/rscreen/pkg/logger"
)

// DailyAnalysisJob runs the full momentum pipeline after the close
// ⭐ SSOT: 일일 분석 스케줄은 이 Job에서만
type DailyAnalysisJob struct {
	orchestrator *pipeline.Orchestrator
	params       screener.Params
	schedule     string
	logger       *logger.Logger
}

// NewDailyAnalysisJob creates a new daily analysis job
func NewDailyAnalysisJob(orch *pipeline.Orchestrator, params screener.Params, schedule string, log *logger.Logger) *DailyAnalysisJob {
	return &DailyAnalysisJob{
		orchestrator: orch,
		params:       params,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *DailyAnalysisJob) Name() string {
	return "daily_analysis"
}

// Schedule returns the cron schedule (with seconds, after market close)
func (j *DailyAnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes the momentum, ranking, and screen passes in order
func (j *DailyAnalysisJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily analysis")

	result, err := j.orchestrator.RunAll(ctx, j.params)
	if err != nil {
		return fmt.Errorf("daily analysis: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":       result.Date.Format("2006-01-02"),
		"processed":  result.Momentum.Total,
		"failed":     result.Momentum.Failed,
		"ranked":     result.Ranked,
		"candidates": len(result.Candidates),
	}).Info("Daily analysis completed")

	return nil
}
