package models

import "time"

// Recipient is an addressable delivery target. Eligibility (active and not
// banned) is evaluated once, at dispatch time.
type Recipient struct {
	ID        string    `json:"id"`
	IsActive  bool      `json:"is_active"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Recipient) Eligible() bool {
	return r.IsActive && !r.IsBanned
}
