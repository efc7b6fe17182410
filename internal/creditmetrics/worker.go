// Package creditmetrics periodically gauges per-plan credit consumption.
package creditmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/seology-ai/seology/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.ChatMetrics
	Config  Config `optional:"true"`
}

type Worker struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.ChatMetrics
	cfg     Config
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		db:      p.DB,
		log:     p.Log.Named("creditmetrics"),
		metrics: p.Metrics,
		cfg:     cfg,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("credit metrics run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type planConsumption struct {
	Plan        string `gorm:"column:plan"`
	CreditsUsed int64  `gorm:"column:credits_used"`
}

// RunOnce gauges per-plan consumption for the current period. The query is
// bounded by both the 5s timeout and the caller's context, so shutdown
// cancels an in-flight poll.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if w.db == nil || w.metrics == nil {
		return errors.New("credit_metrics_unavailable")
	}

	now := time.Now().UTC()
	var rows []planConsumption
	err := w.db.WithContext(ctx).
		Table("credit_usages").
		Select("accounts.plan AS plan, SUM(credit_usages.credits_used) AS credits_used").
		Joins("JOIN accounts ON accounts.id = credit_usages.account_id").
		Where("credit_usages.period_start <= ? AND credit_usages.period_end > ?", now, now).
		Group("accounts.plan").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		w.metrics.SetCreditsUsed(row.Plan, row.CreditsUsed)
	}
	return nil
}
