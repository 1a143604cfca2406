package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"PulseCast/internal/models"
)

// Postgres backs all three stores with a single pgx pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, conn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}

	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

// ----------------------------
// CampaignStore
// ----------------------------

func (s *Postgres) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO campaigns
		 (id, message, status, total_recipients, sent_count, failed_count, scheduled_at, created_at)
		 VALUES ($1,$2,$3,0,0,0,$4,NOW())`,
		c.ID,
		c.Message,
		models.CampaignDraft,
		c.ScheduledAt,
	)

	return err
}

func (s *Postgres) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign

	err := s.Pool.QueryRow(ctx,
		`SELECT id, message, status, total_recipients, sent_count, failed_count,
		        scheduled_at, created_at, started_at, completed_at
		 FROM campaigns
		 WHERE id=$1`,
		id,
	).Scan(
		&c.ID, &c.Message, &c.Status, &c.TotalRecipients, &c.SentCount,
		&c.FailedCount, &c.ScheduledAt, &c.CreatedAt, &c.StartedAt, &c.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (s *Postgres) BeginSending(ctx context.Context, id string, totalRecipients int) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE campaigns
		 SET status=$1,
		     total_recipients=$2,
		     started_at=NOW()
		 WHERE id=$3 AND status=$4`,
		models.CampaignSending,
		totalRecipients,
		id,
		models.CampaignDraft,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a missing campaign from one already dispatched.
	if _, err := s.GetCampaign(ctx, id); err != nil {
		return err
	}
	return ErrCampaignNotDraft
}

func (s *Postgres) IncrementSent(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE campaigns
		 SET sent_count = sent_count + 1
		 WHERE id=$1`,
		id,
	)

	return err
}

func (s *Postgres) IncrementFailed(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE campaigns
		 SET failed_count = failed_count + 1
		 WHERE id=$1`,
		id,
	)

	return err
}

func (s *Postgres) CompleteIfDone(ctx context.Context, id string) (bool, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// Row lock makes the read-check-transition atomic across workers; the
	// contending detector blocks here until the winner commits.
	var (
		status models.CampaignStatus
		total  int
		sent   int
		failed int
	)
	err = tx.QueryRow(ctx,
		`SELECT status, total_recipients, sent_count, failed_count
		 FROM campaigns
		 WHERE id=$1
		 FOR UPDATE`,
		id,
	).Scan(&status, &total, &sent, &failed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrCampaignNotFound
		}
		return false, err
	}

	if status != models.CampaignSending || sent+failed < total {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE campaigns
		 SET status=$1,
		     completed_at=NOW()
		 WHERE id=$2`,
		models.CampaignCompleted,
		id,
	)
	if err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (s *Postgres) ListDueScheduled(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id
		 FROM campaigns
		 WHERE status=$1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		 ORDER BY scheduled_at`,
		models.CampaignDraft,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ----------------------------
// DeliveryLogStore
// ----------------------------

func (s *Postgres) InsertLog(ctx context.Context, entry *models.DeliveryLog) (bool, error) {
	tag, err := s.Pool.Exec(ctx,
		`INSERT INTO delivery_logs (campaign_id, recipient_id, status, error_message, sent_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (campaign_id, recipient_id) DO NOTHING`,
		entry.CampaignID,
		entry.RecipientID,
		entry.Status,
		entry.ErrorMessage,
		entry.SentAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (s *Postgres) HasLog(ctx context.Context, campaignID, recipientID string) (bool, error) {
	var exists bool

	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM delivery_logs WHERE campaign_id=$1 AND recipient_id=$2
		 )`,
		campaignID,
		recipientID,
	).Scan(&exists)

	return exists, err
}

func (s *Postgres) ListLogs(ctx context.Context, campaignID string, limit int) ([]models.DeliveryLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT campaign_id, recipient_id, status, error_message, sent_at
		 FROM delivery_logs
		 WHERE campaign_id=$1
		 ORDER BY sent_at DESC
		 LIMIT $2`,
		campaignID,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DeliveryLog
	for rows.Next() {
		var e models.DeliveryLog
		if err := rows.Scan(&e.CampaignID, &e.RecipientID, &e.Status, &e.ErrorMessage, &e.SentAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Postgres) CampaignStats(ctx context.Context, campaignID string) (map[string]int, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT status, COUNT(*)
		 FROM delivery_logs
		 WHERE campaign_id=$1
		 GROUP BY status`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		string(models.DeliverySuccess): 0,
		string(models.DeliveryFailed):  0,
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}

	return stats, rows.Err()
}

// ----------------------------
// RecipientDirectory
// ----------------------------

func (s *Postgres) ListEligible(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id
		 FROM recipients
		 WHERE is_active = TRUE AND is_banned = FALSE`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *Postgres) GetRecipient(ctx context.Context, id string) (*models.Recipient, error) {
	var r models.Recipient

	err := s.Pool.QueryRow(ctx,
		`SELECT id, is_active, is_banned, created_at
		 FROM recipients
		 WHERE id=$1`,
		id,
	).Scan(&r.ID, &r.IsActive, &r.IsBanned, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	return &r, nil
}

func (s *Postgres) UpsertRecipient(ctx context.Context, r *models.Recipient) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO recipients (id, is_active, is_banned, created_at)
		 VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET is_active=EXCLUDED.is_active,
		     is_banned=EXCLUDED.is_banned`,
		r.ID,
		r.IsActive,
		r.IsBanned,
	)

	return err
}

var (
	_ CampaignStore      = (*Postgres)(nil)
	_ DeliveryLogStore   = (*Postgres)(nil)
	_ RecipientDirectory = (*Postgres)(nil)
)
