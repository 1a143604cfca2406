package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"PulseCast/internal/models"
)

// Memory implements all three stores with a single mutex. It backs tests and
// local development without Postgres; the locking mirrors the row-lock
// semantics of the Postgres implementation.
type Memory struct {
	mu         sync.Mutex
	campaigns  map[string]*models.Campaign
	logs       map[string]*models.DeliveryLog
	recipients map[string]*models.Recipient
}

func NewMemory() *Memory {
	return &Memory{
		campaigns:  make(map[string]*models.Campaign),
		logs:       make(map[string]*models.DeliveryLog),
		recipients: make(map[string]*models.Recipient),
	}
}

func logKey(campaignID, recipientID string) string {
	return campaignID + "/" + recipientID
}

// ----------------------------
// CampaignStore
// ----------------------------

func (s *Memory) CreateCampaign(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	cp.Status = models.CampaignDraft
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.campaigns[cp.ID] = &cp

	return nil
}

func (s *Memory) GetCampaign(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	cp := *c

	return &cp, nil
}

func (s *Memory) BeginSending(_ context.Context, id string, totalRecipients int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return ErrCampaignNotFound
	}
	if c.Status != models.CampaignDraft {
		return ErrCampaignNotDraft
	}

	now := time.Now()
	c.Status = models.CampaignSending
	c.TotalRecipients = totalRecipients
	c.StartedAt = &now

	return nil
}

func (s *Memory) IncrementSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return ErrCampaignNotFound
	}
	c.SentCount++

	return nil
}

func (s *Memory) IncrementFailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return ErrCampaignNotFound
	}
	c.FailedCount++

	return nil
}

func (s *Memory) CompleteIfDone(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return false, ErrCampaignNotFound
	}

	if c.Status != models.CampaignSending || c.Processed() < c.TotalRecipients {
		return false, nil
	}

	now := time.Now()
	c.Status = models.CampaignCompleted
	c.CompletedAt = &now

	return true, nil
}

func (s *Memory) ListDueScheduled(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, c := range s.campaigns {
		if c.Status == models.CampaignDraft && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// ----------------------------
// DeliveryLogStore
// ----------------------------

func (s *Memory) InsertLog(_ context.Context, entry *models.DeliveryLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := logKey(entry.CampaignID, entry.RecipientID)
	if _, exists := s.logs[key]; exists {
		return false, nil
	}

	cp := *entry
	s.logs[key] = &cp

	return true, nil
}

func (s *Memory) HasLog(_ context.Context, campaignID, recipientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.logs[logKey(campaignID, recipientID)]

	return exists, nil
}

func (s *Memory) GetLog(_ context.Context, campaignID, recipientID string) (*models.DeliveryLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.logs[logKey(campaignID, recipientID)]
	if !ok {
		return nil, false
	}
	cp := *entry

	return &cp, true
}

func (s *Memory) ListLogs(_ context.Context, campaignID string, limit int) ([]models.DeliveryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	var entries []models.DeliveryLog
	for _, entry := range s.logs {
		if entry.CampaignID == campaignID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SentAt.After(entries[j].SentAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (s *Memory) CampaignStats(_ context.Context, campaignID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]int{
		string(models.DeliverySuccess): 0,
		string(models.DeliveryFailed):  0,
	}
	for _, entry := range s.logs {
		if entry.CampaignID == campaignID {
			stats[string(entry.Status)]++
		}
	}

	return stats, nil
}

// ----------------------------
// RecipientDirectory
// ----------------------------

func (s *Memory) ListEligible(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, r := range s.recipients {
		if r.Eligible() {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (s *Memory) GetRecipient(_ context.Context, id string) (*models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipients[id]
	if !ok {
		return nil, ErrRecipientNotFound
	}
	cp := *r

	return &cp, nil
}

func (s *Memory) UpsertRecipient(_ context.Context, r *models.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.recipients[cp.ID] = &cp

	return nil
}

var (
	_ CampaignStore      = (*Memory)(nil)
	_ DeliveryLogStore   = (*Memory)(nil)
	_ RecipientDirectory = (*Memory)(nil)
)
