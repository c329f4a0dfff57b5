package jobs

import (
	"context"
	"fmt"
	"time"

	"cryptopredict/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepBatchSize = 200

// SettlementSweeper drives deferred settlement. Each tick it scans the
// persisted due-time index for matured, unsettled predictions and gives
// each one settlement attempt, so pending settlements survive process
// restarts and oracle outages.
type SettlementSweeper struct {
	cron        *cron.Cron
	settlements *services.SettlementService
	interval    time.Duration
	logger      *zap.Logger
	baseCtx     context.Context
}

// NewSettlementSweeper creates a new SettlementSweeper. ctx bounds every
// sweep the cron schedule runs.
func NewSettlementSweeper(ctx context.Context, settlements *services.SettlementService, interval time.Duration, logger *zap.Logger) *SettlementSweeper {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SettlementSweeper{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		settlements: settlements,
		interval:    interval,
		logger:      logger,
		baseCtx:     ctx,
	}
}

// Start registers the sweep schedule and begins ticking
func (sw *SettlementSweeper) Start() error {
	spec := fmt.Sprintf("@every %s", sw.interval)
	if _, err := sw.cron.AddFunc(spec, sw.sweep); err != nil {
		return fmt.Errorf("failed to schedule settlement sweep: %w", err)
	}

	sw.cron.Start()
	sw.logger.Info("settlement sweeper started", zap.Duration("interval", sw.interval))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (sw *SettlementSweeper) Stop() {
	ctx := sw.cron.Stop()
	<-ctx.Done()
	sw.logger.Info("settlement sweeper stopped")
}

func (sw *SettlementSweeper) sweep() {
	settled, err := sw.settlements.SettleDue(sw.baseCtx, sweepBatchSize)
	if err != nil {
		sw.logger.Error("settlement sweep failed", zap.Error(err))
		return
	}
	if settled > 0 {
		sw.logger.Info("settlement sweep completed", zap.Int("settled", settled))
	}
}
