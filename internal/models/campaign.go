package models

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignSending   CampaignStatus = "sending"
	CampaignCompleted CampaignStatus = "completed"
)

// Campaign is one broadcast unit: a message plus its recipient snapshot
// and progress counters. Status only ever moves draft -> sending -> completed.
type Campaign struct {
	ID      string         `json:"id"`
	Message string         `json:"message"`
	Status  CampaignStatus `json:"status"`

	// TotalRecipients is frozen when dispatch takes the recipient snapshot.
	TotalRecipients int `json:"total_recipients"`
	SentCount       int `json:"sent_count"`
	FailedCount     int `json:"failed_count"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Processed is the number of recipients with a terminal outcome.
func (c *Campaign) Processed() int {
	return c.SentCount + c.FailedCount
}
