package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/metrics"
	"github.com/edelguur/admin-backend/pkg/outbox/registry"
	"github.com/edelguur/admin-backend/pkg/pubsub"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	sendTimeout        = 15 * time.Second
	maxErrorBackoff    = 10 * time.Second
	backoffJitter      = 250 * time.Millisecond
)

type store interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type sender interface {
	Ping(context.Context) error
	Send(ctx context.Context, topic string, msg pubsub.Message) error
}

type eventRows interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetters interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type RelayParams struct {
	Outbox      config.OutboxConfig
	DomainTopic string
	Logger      *logger.Logger
	DB          store
	Sender      sender
	Events      eventRows
	DLQ         deadLetters
	Registry    resolver
	Metrics     *metrics.PublisherMetrics
}

// Relay moves committed outbox rows to Pub/Sub. Each batch is claimed, sent and
// settled inside one transaction so a crash leaves rows pending, never lost.
type Relay struct {
	logg        *logger.Logger
	db          store
	sender      sender
	events      eventRows
	dlq         deadLetters
	registry    resolver
	metrics     *metrics.PublisherMetrics
	domainTopic string
	batchSize   int
	maxAttempts int
	poll        time.Duration
}

func NewRelay(p RelayParams) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database is required")
	case p.Sender == nil:
		return nil, errors.New("pubsub sender is required")
	case p.Events == nil:
		return nil, errors.New("outbox repository is required")
	case p.DLQ == nil:
		return nil, errors.New("dlq repository is required")
	case p.Registry == nil:
		return nil, errors.New("event registry is required")
	}
	return &Relay{
		logg:        p.Logger,
		db:          p.DB,
		sender:      p.Sender,
		events:      p.Events,
		dlq:         p.DLQ,
		registry:    p.Registry,
		metrics:     p.Metrics,
		domainTopic: p.DomainTopic,
		batchSize:   orDefault(p.Outbox.BatchSize, defaultBatchSize),
		maxAttempts: orDefault(p.Outbox.MaxAttempts, defaultMaxAttempts),
		poll:        time.Duration(orDefault(p.Outbox.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Run drains batches until ctx is done. An empty batch waits one poll interval;
// a failed batch waits on a capped exponential backoff.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if err := r.sender.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping: %w", err)
	}

	backoff := r.errorBackoff()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		claimed, err := r.drain(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox batch failed", err)
			wait, _ = backoff.Next()
		case claimed > 0:
			backoff = r.errorBackoff()
			continue
		default:
			backoff = r.errorBackoff()
			wait = r.poll
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Relay) errorBackoff() retry.Backoff {
	b := retry.NewExponential(r.poll)
	b = retry.WithCappedDuration(maxErrorBackoff, b)
	return retry.WithJitter(backoffJitter, b)
}

// drain claims one batch and settles every row in it. It reports the claim size.
func (r *Relay) drain(ctx context.Context) (int, error) {
	started := time.Now()
	defer func() { r.metrics.ObserveBatch(time.Since(started)) }()

	var claimed int
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.events.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}
		claimed = len(rows)
		for _, row := range rows {
			if err := r.settle(ctx, tx, row, r.deliver(ctx, row)); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

// delivery is the result of trying to send one row. A non-empty deadLetter
// reason means the row must not be retried.
type delivery struct {
	topic      string
	eventID    string
	err        error
	deadLetter enums.OutboxDLQErrorReason
}

func (r *Relay) deliver(ctx context.Context, row models.OutboxEvent) delivery {
	resolved, err := r.registry.Resolve(row)
	if err != nil {
		return delivery{err: err, deadLetter: enums.OutboxDLQReasonNonRetryable}
	}

	d := delivery{topic: resolved.Descriptor.Topic, eventID: resolved.Envelope.EventID}
	topics := []string{d.topic}
	if r.domainTopic != "" && r.domainTopic != d.topic {
		topics = append(topics, r.domainTopic)
	}
	msg := pubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       d.eventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID,
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}

	for _, topic := range topics {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := r.sender.Send(sendCtx, topic, msg)
		cancel()
		if err == nil {
			continue
		}
		d.err = fmt.Errorf("send to %s: %w", topic, err)
		var nonRetryable registry.NonRetryableError
		switch {
		case errors.Is(err, pubsub.ErrUnknownTopic), errors.As(err, &nonRetryable):
			d.deadLetter = enums.OutboxDLQReasonNonRetryable
		case row.AttemptCount+1 >= r.maxAttempts:
			d.deadLetter = enums.OutboxDLQReasonMaxAttempts
		}
		return d
	}
	return d
}

func (r *Relay) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, d delivery) error {
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID,
		"attempt_count":  row.AttemptCount,
		"event_id":       d.eventID,
		"topic":          d.topic,
	})
	eventType := string(row.EventType)

	if d.err == nil {
		if err := r.events.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		r.metrics.IncPublished(eventType)
		r.logg.Info(logCtx, "outbox event published")
		return nil
	}

	logCtx = r.logg.WithField(logCtx, "error", d.err.Error())
	if d.deadLetter == "" {
		r.metrics.IncFailed(eventType)
		r.logg.Warn(logCtx, "outbox publish failed, will retry")
		if err := r.events.MarkFailedTx(tx, row.ID, d.err); err != nil {
			return fmt.Errorf("mark failed %s: %w", row.ID, err)
		}
		return nil
	}

	msg := d.err.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   d.deadLetter,
		ErrorMessage:  &msg,
		AttemptCount:  row.AttemptCount + 1,
		FailedAt:      time.Now().UTC(),
	}
	if err := r.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", row.ID, err)
	}
	if err := r.events.MarkTerminalTx(tx, row.ID, d.err, r.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", row.ID, err)
	}
	r.metrics.IncDeadLettered(eventType)
	r.logg.Warn(r.logg.WithField(logCtx, "error_reason", d.deadLetter), "outbox event dead-lettered")
	return nil
}
