package models

import "time"

type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryLog records the terminal outcome of one delivery. At most one row
// exists per (campaign, recipient); it is never mutated after insert.
type DeliveryLog struct {
	CampaignID   string         `json:"campaign_id"`
	RecipientID  string         `json:"recipient_id"`
	Status       DeliveryStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	SentAt       time.Time      `json:"sent_at"`
}

// DeliveryJob is one unit of fan-out work: deliver one campaign's message
// to one recipient.
type DeliveryJob struct {
	CampaignID  string `json:"campaign_id"`
	RecipientID string `json:"recipient_id"`
}
