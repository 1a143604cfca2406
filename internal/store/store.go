package store

import (
	"context"
	"errors"
	"time"

	"PulseCast/internal/models"
)

var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrCampaignNotDraft is returned by BeginSending when the campaign has
	// already left the draft state. Dispatching the same campaign twice would
	// reset its recipient snapshot, so the transition is guarded.
	ErrCampaignNotDraft = errors.New("campaign is not in draft state")
)

// CampaignStore is the durable record of a broadcast's message, recipient
// snapshot size and running counters/status.
type CampaignStore interface {
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)

	// BeginSending atomically freezes the recipient snapshot size, stamps
	// started_at and moves the campaign draft -> sending. It fails with
	// ErrCampaignNotDraft if the campaign has already been dispatched.
	BeginSending(ctx context.Context, id string, totalRecipients int) error

	// Counter updates are atomic adds against the store, never
	// read-modify-write, so concurrent workers cannot lose increments.
	IncrementSent(ctx context.Context, id string) error
	IncrementFailed(ctx context.Context, id string) error

	// CompleteIfDone checks, under a campaign-scoped exclusive lock, whether
	// every recipient has a terminal outcome and if so performs the one-time
	// sending -> completed transition. It reports whether this call flipped
	// the status.
	CompleteIfDone(ctx context.Context, id string) (bool, error)

	// ListDueScheduled returns ids of draft campaigns whose scheduled_at has
	// passed.
	ListDueScheduled(ctx context.Context, now time.Time) ([]string, error)
}

// DeliveryLogStore holds one immutable outcome row per (campaign, recipient).
type DeliveryLogStore interface {
	// InsertLog writes a terminal outcome. Uniqueness of
	// (campaign_id, recipient_id) is enforced by the store; when a row
	// already exists the insert is a no-op and inserted is false.
	InsertLog(ctx context.Context, entry *models.DeliveryLog) (inserted bool, err error)

	HasLog(ctx context.Context, campaignID, recipientID string) (bool, error)

	// ListLogs returns a campaign's recorded outcomes for audit, newest first.
	ListLogs(ctx context.Context, campaignID string, limit int) ([]models.DeliveryLog, error)

	// CampaignStats returns per-status delivery counts for reporting.
	CampaignStats(ctx context.Context, campaignID string) (map[string]int, error)
}

// RecipientDirectory is the recipient side of dispatch: the eligible set is
// listed once per campaign, and individual recipients are looked up by
// workers before sending.
type RecipientDirectory interface {
	ListEligible(ctx context.Context) ([]string, error)
	GetRecipient(ctx context.Context, id string) (*models.Recipient, error)
	UpsertRecipient(ctx context.Context, r *models.Recipient) error
}
