package engine

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"PulseCast/internal/cache"
	"PulseCast/internal/models"
	"PulseCast/internal/store"
	"PulseCast/internal/transport"
)

// ErrAlreadyDelivered reports that a recipient already has a recorded outcome
// for the campaign. It is a benign no-op signal, not a failure.
var ErrAlreadyDelivered = errors.New("already delivered")

type Options struct {
	// MaxAttempts bounds transport attempts per delivery, first try included.
	MaxAttempts int

	// SendTimeout bounds each individual transport attempt.
	SendTimeout time.Duration

	// InitialBackoff seeds the exponential backoff between attempts.
	InitialBackoff time.Duration

	// QueueSize is the fan-out job buffer shared by dispatchers and workers.
	QueueSize int
}

func (o *Options) defaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 10 * time.Second
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1000
	}
}

// Engine fans a campaign's message out to its recipient snapshot: one
// delivery job per recipient, executed by a worker pool behind a shared rate
// limiter, with per-recipient retry and race-free completion detection.
type Engine struct {
	campaigns  store.CampaignStore
	logs       store.DeliveryLogStore
	recipients store.RecipientDirectory
	dedupe     cache.DeliveryCache // optional fast path, may be nil
	sender     transport.Sender

	// limiter is shared by every worker; per-worker limiters would multiply
	// the effective rate.
	limiter *rate.Limiter

	jobs chan models.DeliveryJob
	opts Options
	log  *zap.Logger
}

func New(
	campaigns store.CampaignStore,
	logs store.DeliveryLogStore,
	recipients store.RecipientDirectory,
	dedupe cache.DeliveryCache,
	sender transport.Sender,
	limiter *rate.Limiter,
	logger *zap.Logger,
	opts Options,
) *Engine {
	opts.defaults()

	return &Engine{
		campaigns:  campaigns,
		logs:       logs,
		recipients: recipients,
		dedupe:     dedupe,
		sender:     sender,
		limiter:    limiter,
		jobs:       make(chan models.DeliveryJob, opts.QueueSize),
		opts:       opts,
		log:        logger,
	}
}

// Close stops accepting new jobs; running workers drain the queue and exit.
func (e *Engine) Close() {
	close(e.jobs)
}
