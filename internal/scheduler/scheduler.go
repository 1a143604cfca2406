package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PulseCast/internal/store"
)

// Starter is the dispatch entry point the scheduler drives.
type Starter interface {
	StartCampaign(ctx context.Context, campaignID string) (int, error)
}

// Scheduler starts draft campaigns whose scheduled_at has passed. It polls
// on a fixed cron interval rather than arming a timer per campaign, so a
// restart never loses pending schedules.
type Scheduler struct {
	campaigns store.CampaignStore
	starter   Starter
	log       *zap.Logger
	cron      *cron.Cron
}

func New(campaigns store.CampaignStore, starter Starter, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		campaigns: campaigns,
		starter:   starter,
		log:       logger,
	}
}

func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if interval < time.Second {
		interval = time.Second
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule poll job: %w", err)
	}
	c.Start()
	s.cron = c

	s.log.Info("campaign scheduler started", zap.Duration("interval", interval))
	return nil
}

// Stop halts polling and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce starts every due campaign and is safe to call concurrently with
// the cron ticks: BeginSending's draft guard makes a duplicate start a no-op.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ids, err := s.campaigns.ListDueScheduled(ctx, time.Now())
	if err != nil {
		s.log.Error("list due campaigns failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		scheduled, err := s.starter.StartCampaign(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrCampaignNotDraft) {
				continue
			}
			s.log.Error("scheduled campaign start failed",
				zap.String("campaign_id", id),
				zap.Error(err),
			)
			continue
		}

		s.log.Info("scheduled campaign started",
			zap.String("campaign_id", id),
			zap.Int("recipients", scheduled),
		)
	}
}
