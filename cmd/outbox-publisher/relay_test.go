package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/outbox"
	"github.com/edelguur/admin-backend/pkg/outbox/payloads"
	"github.com/edelguur/admin-backend/pkg/outbox/registry"
	"github.com/edelguur/admin-backend/pkg/pubsub"
)

type sent struct {
	topic string
	msg   pubsub.Message
}

type recordingSender struct {
	sent    []sent
	fail    map[string]error
	pingErr error
}

func (s *recordingSender) Ping(context.Context) error { return s.pingErr }

func (s *recordingSender) Send(_ context.Context, topic string, msg pubsub.Message) error {
	if err := s.fail[topic]; err != nil {
		return err
	}
	s.sent = append(s.sent, sent{topic: topic, msg: msg})
	return nil
}

type relayHarness struct {
	db     *db.Client
	sender *recordingSender
	relay  *Relay
}

func newRelayHarness(t *testing.T, domainTopic string, maxAttempts int) *relayHarness {
	t.Helper()
	client := dbtest.Open(t, &models.OutboxEvent{}, &models.OutboxDLQ{})
	reg, err := registry.NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.NoError(t, err)

	sender := &recordingSender{fail: map[string]error{}}
	relay, err := NewRelay(RelayParams{
		Outbox:      config.OutboxConfig{BatchSize: 10, MaxAttempts: maxAttempts, PollIntervalMS: 1},
		DomainTopic: domainTopic,
		Logger:      logger.New(logger.Options{ServiceName: "relay-test", Output: io.Discard}),
		DB:          client,
		Sender:      sender,
		Events:      outbox.NewRepository(client.DB()),
		DLQ:         outbox.NewDLQRepository(client.DB()),
		Registry:    reg,
	})
	require.NoError(t, err)
	return &relayHarness{db: client, sender: sender, relay: relay}
}

func (h *relayHarness) emitOrderCreated(t *testing.T, orderID int64) {
	t.Helper()
	svc := outbox.NewService(outbox.NewRepository(h.db.DB()), nil)
	require.NoError(t, h.db.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          payloads.OrderCreatedEvent{OrderID: orderID, Name: "Bold", Phone: "99001122", Total: decimal.NewFromInt(9), ItemCount: 1},
		})
	}))
}

func (h *relayHarness) rows(t *testing.T) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, h.db.DB().Order("aggregate_id").Find(&rows).Error)
	return rows
}

func (h *relayHarness) deadLetters(t *testing.T) []models.OutboxDLQ {
	t.Helper()
	var rows []models.OutboxDLQ
	require.NoError(t, h.db.DB().Find(&rows).Error)
	return rows
}

func TestDrainPublishesAndMirrorsToDomainTopic(t *testing.T) {
	h := newRelayHarness(t, "domain", 3)
	h.emitOrderCreated(t, 1)
	h.emitOrderCreated(t, 2)

	claimed, err := h.relay.drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, claimed)

	require.Len(t, h.sender.sent, 4)
	assert.Equal(t, "orders", h.sender.sent[0].topic)
	assert.Equal(t, "domain", h.sender.sent[1].topic)
	attrs := h.sender.sent[0].msg.Attributes
	assert.Equal(t, "order_created", attrs["event_type"])
	assert.Equal(t, "order", attrs["aggregate_type"])
	assert.NotEmpty(t, attrs["event_id"])

	var env outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(h.sender.sent[0].msg.Data, &env))
	assert.Equal(t, attrs["event_id"], env.EventID)

	for _, row := range h.rows(t) {
		assert.NotNil(t, row.PublishedAt, row.AggregateID)
	}

	claimed, err = h.relay.drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, claimed)
}

func TestDrainRetriesThenDeadLetters(t *testing.T) {
	h := newRelayHarness(t, "", 2)
	h.emitOrderCreated(t, 5)
	h.sender.fail["orders"] = errors.New("deadline exceeded")

	_, err := h.relay.drain(context.Background())
	require.NoError(t, err)
	rows := h.rows(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PublishedAt)
	assert.Equal(t, 1, rows[0].AttemptCount)
	require.NotNil(t, rows[0].LastError)
	assert.Contains(t, *rows[0].LastError, "deadline exceeded")
	assert.Empty(t, h.deadLetters(t))

	_, err = h.relay.drain(context.Background())
	require.NoError(t, err)
	dlq := h.deadLetters(t)
	require.Len(t, dlq, 1)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq[0].ErrorReason)
	assert.Equal(t, 2, dlq[0].AttemptCount)
	assert.Equal(t, 2, h.rows(t)[0].AttemptCount)

	claimed, err := h.relay.drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, claimed, "exhausted rows are not claimed again")
}

func TestDrainDeadLettersUnresolvableRows(t *testing.T) {
	h := newRelayHarness(t, "", 5)
	require.NoError(t, h.db.WithTx(context.Background(), func(tx *gorm.DB) error {
		return outbox.NewRepository(h.db.DB()).Insert(tx, models.OutboxEvent{
			EventType:     "order_exploded",
			AggregateType: enums.AggregateOrder,
			AggregateID:   "3",
			Payload:       json.RawMessage(`{}`),
		})
	}))

	_, err := h.relay.drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.sender.sent)

	dlq := h.deadLetters(t)
	require.Len(t, dlq, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq[0].ErrorReason)
	assert.Equal(t, 5, h.rows(t)[0].AttemptCount)
}

func TestDrainDeadLettersUnknownTopic(t *testing.T) {
	h := newRelayHarness(t, "", 5)
	h.emitOrderCreated(t, 8)
	h.sender.fail["orders"] = pubsub.ErrUnknownTopic

	_, err := h.relay.drain(context.Background())
	require.NoError(t, err)
	dlq := h.deadLetters(t)
	require.Len(t, dlq, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq[0].ErrorReason)
}

func TestRunChecksDependenciesAndStops(t *testing.T) {
	h := newRelayHarness(t, "", 3)
	h.sender.pingErr = errors.New("no creds")
	assert.ErrorContains(t, h.relay.Run(context.Background()), "pubsub ping")

	h.sender.pingErr = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.relay.Run(ctx), context.Canceled)
}

func TestNewRelayValidates(t *testing.T) {
	_, err := NewRelay(RelayParams{})
	assert.Error(t, err)
}

func TestErrorBackoffIsCapped(t *testing.T) {
	h := newRelayHarness(t, "", 3)
	b := h.relay.errorBackoff()
	var last int64
	for i := 0; i < 40; i++ {
		next, stop := b.Next()
		require.False(t, stop)
		last = int64(next)
	}
	assert.LessOrEqual(t, last, int64(maxErrorBackoff+backoffJitter))
}
