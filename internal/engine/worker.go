package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"PulseCast/internal/metrics"
	"PulseCast/internal/models"
)

// errSendRejected marks a transport call that returned false without an
// error; it enters the retry path like any thrown transport error.
var errSendRejected = errors.New("transport rejected send")

// StartPool launches the delivery workers. Workers share the engine's job
// queue and rate limiter and exit when the context is cancelled or the queue
// is closed and drained.
func (e *Engine) StartPool(ctx context.Context, wg *sync.WaitGroup, workers int) {
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			e.log.Info("delivery worker started", zap.Int("worker_id", id))

			for {
				select {

				case <-ctx.Done():
					e.log.Info("delivery worker shutting down", zap.Int("worker_id", id))
					return

				case job, ok := <-e.jobs:
					if !ok {
						e.log.Info("job queue closed", zap.Int("worker_id", id))
						return
					}

					err := e.Deliver(ctx, job.CampaignID, job.RecipientID)
					switch {
					case err == nil:
					case errors.Is(err, ErrAlreadyDelivered):
						e.log.Debug("delivery skipped, outcome already recorded",
							zap.String("campaign_id", job.CampaignID),
							zap.String("recipient_id", job.RecipientID),
						)
					case ctx.Err() != nil:
						e.log.Warn("delivery interrupted by shutdown",
							zap.String("campaign_id", job.CampaignID),
							zap.String("recipient_id", job.RecipientID),
						)
						return
					default:
						e.log.Error("delivery aborted",
							zap.String("campaign_id", job.CampaignID),
							zap.String("recipient_id", job.RecipientID),
							zap.Error(err),
						)
					}
				}
			}
		}(i)
	}
}

// Deliver executes one recipient's delivery end to end: idempotency guard,
// rate-limited send with retry, exactly one terminal log row, one atomic
// counter increment, then a completion check.
//
// Send failures are absorbed into a failed outcome and do not surface as
// errors; only missing campaign/recipient records, storage errors and
// shutdown do.
func (e *Engine) Deliver(ctx context.Context, campaignID, recipientID string) error {
	campaign, err := e.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if _, err := e.recipients.GetRecipient(ctx, recipientID); err != nil {
		return err
	}

	// Idempotency guard: cache fast path first, log store as source of truth.
	if e.dedupe != nil {
		delivered, err := e.dedupe.IsDelivered(ctx, campaignID, recipientID)
		if err != nil {
			e.log.Debug("dedupe cache unavailable, falling back to log store", zap.Error(err))
		} else if delivered {
			return ErrAlreadyDelivered
		}
	}
	exists, err := e.logs.HasLog(ctx, campaignID, recipientID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyDelivered
	}

	sendErr := e.sendWithRetry(ctx, campaign.Message, recipientID)
	if sendErr != nil && ctx.Err() != nil {
		// Shutdown, not a delivery verdict; leave the recipient unprocessed.
		return ctx.Err()
	}

	entry := &models.DeliveryLog{
		CampaignID:  campaignID,
		RecipientID: recipientID,
		Status:      models.DeliverySuccess,
		SentAt:      time.Now(),
	}
	if sendErr != nil {
		entry.Status = models.DeliveryFailed
		entry.ErrorMessage = sendErr.Error()
	}

	inserted, err := e.logs.InsertLog(ctx, entry)
	if err != nil {
		return err
	}
	if !inserted {
		// Lost the insert race to a concurrent delivery for the same
		// recipient; the winner owns the counter increment.
		return ErrAlreadyDelivered
	}

	if e.dedupe != nil {
		if err := e.dedupe.MarkDelivered(ctx, campaignID, recipientID); err != nil {
			e.log.Debug("dedupe cache mark failed", zap.Error(err))
		}
	}

	if sendErr != nil {
		e.log.Warn("delivery failed",
			zap.String("campaign_id", campaignID),
			zap.String("recipient_id", recipientID),
			zap.Error(sendErr),
		)
		if err := e.campaigns.IncrementFailed(ctx, campaignID); err != nil {
			return err
		}
		metrics.DeliveryFailures.Inc()
	} else {
		e.log.Info("delivery succeeded",
			zap.String("campaign_id", campaignID),
			zap.String("recipient_id", recipientID),
		)
		if err := e.campaigns.IncrementSent(ctx, campaignID); err != nil {
			return err
		}
		metrics.DeliveriesSent.Inc()
	}

	e.checkCompletion(ctx, campaignID)

	return nil
}

// sendWithRetry performs up to MaxAttempts transport calls with exponential
// backoff. Every attempt, retries included, waits on the shared rate limiter
// before touching the transport.
func (e *Engine) sendWithRetry(ctx context.Context, message, recipientID string) error {
	operation := func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		metrics.SendAttempts.Inc()

		sendCtx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
		defer cancel()

		ok, err := e.sender.SendText(sendCtx, recipientID, message)
		if err != nil {
			return err
		}
		if !ok {
			return errSendRejected
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.opts.InitialBackoff

	notify := func(err error, next time.Duration) {
		metrics.SendRetries.Inc()
		e.log.Debug("send retry scheduled",
			zap.String("recipient_id", recipientID),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}

	return backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.opts.MaxAttempts-1)), ctx),
		notify,
	)
}
