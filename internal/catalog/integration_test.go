//go:build integration

package catalog

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/migrate"
	"github.com/edelguur/admin-backend/pkg/storage/storagetest"
)

func setupPostgres(t *testing.T) *db.Client {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("edelguur"),
		postgres.WithUsername("edelguur"),
		postgres.WithPassword("edelguur"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "integration", Output: io.Discard})
	client, err := db.New(ctx, config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(ctx, sqlDB, "../../pkg/migrate/migrations"))
	return client
}

func TestPostgresRenameAndDeleteGuard(t *testing.T) {
	client := setupPostgres(t)
	ctx := context.Background()

	svc, err := NewService(ServiceParams{
		DB:     client,
		Store:  storagetest.New(),
		Logger: logger.New(logger.Options{ServiceName: "integration", Output: io.Discard}),
	})
	require.NoError(t, err)

	brand, err := svc.Create(ctx, KindBrand, EntryInput{Name: "Acme"})
	require.NoError(t, err)

	name := "Acme"
	product := models.Product{Name: "Tea", BrandID: &brand.ID, BrandName: &name}
	require.NoError(t, client.DB().Create(&product).Error)

	_, err = svc.Update(ctx, KindBrand, brand.ID, EntryInput{Name: "Acme Co"})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, client.DB().First(&reloaded, product.ID).Error)
	assert.Equal(t, "Acme Co", *reloaded.BrandName)

	err = svc.Delete(ctx, KindBrand, brand.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
