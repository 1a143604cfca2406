package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"PulseCast/internal/models"
)

// StartCampaign takes the eligible-recipient snapshot, freezes it as the
// campaign's total while moving the campaign to sending, and schedules one
// delivery job per recipient. It returns the number of scheduled jobs.
//
// The snapshot is taken exactly once: recipients added afterwards are never
// delivered to for this campaign, and recipients removed afterwards may still
// receive an attempt.
func (e *Engine) StartCampaign(ctx context.Context, campaignID string) (int, error) {
	if _, err := e.campaigns.GetCampaign(ctx, campaignID); err != nil {
		return 0, err
	}

	recipientIDs, err := e.recipients.ListEligible(ctx)
	if err != nil {
		return 0, fmt.Errorf("list eligible recipients: %w", err)
	}

	// total_recipients and the draft -> sending transition commit together,
	// so workers never observe a sending campaign with a stale total.
	if err := e.campaigns.BeginSending(ctx, campaignID, len(recipientIDs)); err != nil {
		return 0, err
	}

	scheduled := 0
	for _, recipientID := range recipientIDs {
		select {
		case e.jobs <- models.DeliveryJob{CampaignID: campaignID, RecipientID: recipientID}:
			scheduled++
		case <-ctx.Done():
			return scheduled, ctx.Err()
		}
	}

	e.log.Info("campaign dispatched",
		zap.String("campaign_id", campaignID),
		zap.Int("recipients", scheduled),
	)

	return scheduled, nil
}
