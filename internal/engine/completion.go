package engine

import (
	"context"

	"go.uber.org/zap"

	"PulseCast/internal/metrics"
)

// checkCompletion runs after every delivery outcome. The store performs the
// processed-vs-total check and the sending -> completed transition under a
// campaign-scoped lock, so exactly one of the racing invocations flips the
// status.
func (e *Engine) checkCompletion(ctx context.Context, campaignID string) {
	completed, err := e.campaigns.CompleteIfDone(ctx, campaignID)
	if err != nil {
		e.log.Error("completion check failed",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return
	}

	if completed {
		metrics.CampaignsCompleted.Inc()
		e.log.Info("campaign completed", zap.String("campaign_id", campaignID))
	}
}
