package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseCast/internal/models"
	"PulseCast/internal/store"
)

func newSendingCampaign(t *testing.T, mem *store.Memory, total int) string {
	t.Helper()
	ctx := context.Background()

	c := &models.Campaign{ID: "c1", Message: "hi"}
	require.NoError(t, mem.CreateCampaign(ctx, c))
	require.NoError(t, mem.BeginSending(ctx, c.ID, total))

	return c.ID
}

func TestConcurrentIncrementsLoseNoUpdates(t *testing.T) {
	mem := store.NewMemory()
	id := newSendingCampaign(t, mem, 200)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = mem.IncrementSent(context.Background(), id)
		}()
		go func() {
			defer wg.Done()
			_ = mem.IncrementFailed(context.Background(), id)
		}()
	}
	wg.Wait()

	c, err := mem.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, c.SentCount)
	assert.Equal(t, 100, c.FailedCount)
}

func TestCompleteIfDoneFlipsExactlyOnce(t *testing.T) {
	mem := store.NewMemory()
	id := newSendingCampaign(t, mem, 2)

	require.NoError(t, mem.IncrementSent(context.Background(), id))

	// Not all recipients processed yet.
	done, err := mem.CompleteIfDone(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, mem.IncrementFailed(context.Background(), id))

	var flips int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done, err := mem.CompleteIfDone(context.Background(), id)
			if err == nil && done {
				atomic.AddInt64(&flips, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), flips, "sending -> completed must happen exactly once")

	c, err := mem.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCompleted, c.Status)
	assert.NotNil(t, c.CompletedAt)
}

func TestInsertLogEnforcesUniqueness(t *testing.T) {
	mem := store.NewMemory()

	entry := &models.DeliveryLog{
		CampaignID:  "c1",
		RecipientID: "r1",
		Status:      models.DeliverySuccess,
		SentAt:      time.Now(),
	}

	var inserted int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp := *entry
			ok, err := mem.InsertLog(context.Background(), &cp)
			if err == nil && ok {
				atomic.AddInt64(&inserted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), inserted, "only one writer may win the insert race")

	exists, err := mem.HasLog(context.Background(), "c1", "r1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBeginSendingGuards(t *testing.T) {
	mem := store.NewMemory()

	err := mem.BeginSending(context.Background(), "ghost", 3)
	assert.ErrorIs(t, err, store.ErrCampaignNotFound)

	c := &models.Campaign{ID: "c1", Message: "hi"}
	require.NoError(t, mem.CreateCampaign(context.Background(), c))
	require.NoError(t, mem.BeginSending(context.Background(), c.ID, 3))

	err = mem.BeginSending(context.Background(), c.ID, 5)
	assert.ErrorIs(t, err, store.ErrCampaignNotDraft)

	got, err := mem.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSending, got.Status)
	assert.Equal(t, 3, got.TotalRecipients, "snapshot must not be reset")
	assert.NotNil(t, got.StartedAt)
}

func TestListDueScheduled(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, mem.CreateCampaign(ctx, &models.Campaign{ID: "due", Message: "m", ScheduledAt: &past}))
	require.NoError(t, mem.CreateCampaign(ctx, &models.Campaign{ID: "later", Message: "m", ScheduledAt: &future}))
	require.NoError(t, mem.CreateCampaign(ctx, &models.Campaign{ID: "manual", Message: "m"}))

	// A campaign already sending is never due again.
	require.NoError(t, mem.CreateCampaign(ctx, &models.Campaign{ID: "running", Message: "m", ScheduledAt: &past}))
	require.NoError(t, mem.BeginSending(ctx, "running", 1))

	ids, err := mem.ListDueScheduled(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, ids)
}

func TestCampaignStats(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	for _, e := range []models.DeliveryLog{
		{CampaignID: "c1", RecipientID: "r1", Status: models.DeliverySuccess},
		{CampaignID: "c1", RecipientID: "r2", Status: models.DeliveryFailed, ErrorMessage: "boom"},
		{CampaignID: "c2", RecipientID: "r1", Status: models.DeliverySuccess},
	} {
		e := e
		ok, err := mem.InsertLog(ctx, &e)
		require.NoError(t, err)
		require.True(t, ok)
	}

	stats, err := mem.CampaignStats(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats[string(models.DeliverySuccess)])
	assert.Equal(t, 1, stats[string(models.DeliveryFailed)])
}

func TestEligibilityFilter(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.UpsertRecipient(ctx, &models.Recipient{ID: "ok", IsActive: true}))
	require.NoError(t, mem.UpsertRecipient(ctx, &models.Recipient{ID: "inactive", IsActive: false}))
	require.NoError(t, mem.UpsertRecipient(ctx, &models.Recipient{ID: "banned", IsActive: true, IsBanned: true}))

	ids, err := mem.ListEligible(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, ids)
}
