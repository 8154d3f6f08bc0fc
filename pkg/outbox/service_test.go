package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/outbox"
)

func TestEmitStoresEnvelopeInTransaction(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{}, &models.OutboxDLQ{})
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   41,
			Actor:         &outbox.ActorRef{UserID: 1},
			Data:          map[string]any{"order_id": 41},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "41", rows[0].AggregateID)

	var env outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"order_id":41}`, string(env.Data))
}

func TestEmitRolledBackWithCaller(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{})
	svc := outbox.NewService(outbox.NewRepository(client.DB()), nil)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   2,
			Data:          map[string]string{"to": "shipped"},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmitValidatesInput(t *testing.T) {
	svc := outbox.NewService(outbox.NewRepository(nil), nil)
	assert.Error(t, svc.Emit(context.Background(), nil, outbox.DomainEvent{EventType: enums.EventOrderCreated}))

	client := dbtest.Open(t, &models.OutboxEvent{})
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{EventType: "nope"})
	})
	assert.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{})
	repo := outbox.NewRepository(client.DB())
	ctx := context.Background()

	first := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: "1", Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: "2", Payload: json.RawMessage(`{}`)}
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.Insert(tx, first); err != nil {
			return err
		}
		return repo.Insert(tx, second)
	}))

	var pending []models.OutboxEvent
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		pending, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, pending, 2)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.MarkPublishedTx(tx, pending[0].ID); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, pending[1].ID, errors.New("bad"), 3)
	}))

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		pending, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	assert.Empty(t, pending)
}

func TestRepositoryMarkFailedIncrementsAttempts(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{})
	repo := outbox.NewRepository(client.DB())
	ctx := context.Background()

	event := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: "5", Payload: json.RawMessage(`{}`)}
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error { return repo.Insert(tx, event) }))

	var stored models.OutboxEvent
	require.NoError(t, client.DB().First(&stored).Error)
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.MarkFailedTx(tx, stored.ID, errors.New("timeout"))
	}))

	require.NoError(t, client.DB().First(&stored, "id = ?", stored.ID).Error)
	assert.Equal(t, 1, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "timeout", *stored.LastError)
}

func TestDLQRepositoryTruncatesMessages(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxDLQ{})
	dlq := outbox.NewDLQRepository(client.DB())

	long := make([]byte, 4096)
	for i := range long {
		long[i] = 'x'
	}
	msg := string(long)
	entry := models.OutboxDLQ{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   "1",
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
	}
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, entry)
	}))

	rows, err := dlq.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, *rows[0].ErrorMessage, 1024)
}

func TestDiscardWritesNothing(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{})

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return outbox.Discard.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   1,
		})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxEvent{})
	repo := outbox.NewRepository(client.DB())
	ctx := context.Background()

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-48 * time.Hour)
	fresh := cutoff.Add(time.Hour)
	rows := []models.OutboxEvent{
		{AggregateID: "old-published", PublishedAt: &old, CreatedAt: old},
		{AggregateID: "fresh-published", PublishedAt: &fresh, CreatedAt: old},
		{AggregateID: "old-exhausted", AttemptCount: 10, CreatedAt: old},
		{AggregateID: "old-pending", AttemptCount: 2, CreatedAt: old},
		{AggregateID: "new-exhausted", AttemptCount: 10, CreatedAt: fresh},
	}
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		for _, row := range rows {
			row.EventType = enums.EventOrderCreated
			row.AggregateType = enums.AggregateOrder
			row.Payload = json.RawMessage(`{}`)
			if err := repo.Insert(tx, row); err != nil {
				return err
			}
		}
		return nil
	}))

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = repo.DeletePublishedBefore(tx, cutoff, 10)
		return err
	}))
	assert.EqualValues(t, 2, deleted)

	var left []string
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Order("aggregate_id").Pluck("aggregate_id", &left).Error)
	assert.Equal(t, []string{"fresh-published", "new-exhausted", "old-pending"}, left)
}

func TestDLQRepositoryDeleteFailedBefore(t *testing.T) {
	client := dbtest.Open(t, &models.OutboxDLQ{})
	dlq := outbox.NewDLQRepository(client.DB())
	ctx := context.Background()

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, failedAt := range []time.Time{cutoff.Add(-time.Hour), cutoff.Add(time.Hour)} {
		entry := models.OutboxDLQ{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   string(rune('a' + i)),
			Payload:       json.RawMessage(`{}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			FailedAt:      failedAt,
		}
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error { return dlq.InsertTx(tx, entry) }))
	}

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = dlq.DeleteFailedBefore(tx, cutoff)
		return err
	}))
	assert.EqualValues(t, 1, deleted)

	rows, err := dlq.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].AggregateID)
}
