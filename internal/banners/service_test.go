package banners

import (
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage/storagetest"
)

func newTestService(t *testing.T) (*Service, *storagetest.Store) {
	t.Helper()
	client := dbtest.Open(t, &models.Banner{})
	store := storagetest.New()
	svc, err := NewService(ServiceParams{
		DB:     client,
		Store:  store,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, store
}

func pngHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	return storagetest.FormFiles(t, "image", storagetest.File{Name: "hero.png", Body: storagetest.PNG})[0]
}

func strPtr(v string) *string { return &v }

func TestCreateBanner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, Input{Description: strPtr("Spring sale"), Image: pngHeader(t)})
	require.NoError(t, err)
	require.NotNil(t, res.Banner)
	assert.Equal(t, "edelguur/banner/asset-1", res.Banner.PublicID)
	assert.Equal(t, "https://assets.test/edelguur/banner/asset-1", res.Banner.ImageURL)
	assert.Contains(t, store.Objects, "edelguur/banner/asset-1")

	_, err = svc.Create(ctx, Input{Description: strPtr("no image")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListBannersNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, Input{Image: pngHeader(t)})
	require.NoError(t, err)
	second, err := svc.Create(ctx, Input{Image: pngHeader(t)})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Banner.ID, list[0].ID)
	assert.Equal(t, first.Banner.ID, list[1].ID)
}

func TestUpdateBannerSwapsImage(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Description: strPtr("old"), Image: pngHeader(t)})
	require.NoError(t, err)

	textOnly, err := svc.Update(ctx, created.Banner.ID, Input{Description: strPtr("new copy")})
	require.NoError(t, err)
	assert.Equal(t, "new copy", *textOnly.Banner.Description)
	assert.Equal(t, created.Banner.PublicID, textOnly.Banner.PublicID)
	assert.Empty(t, store.DeletedIDs())

	swapped, err := svc.Update(ctx, created.Banner.ID, Input{Description: strPtr("new copy"), Image: pngHeader(t)})
	require.NoError(t, err)
	assert.Equal(t, "edelguur/banner/asset-2", swapped.Banner.PublicID)
	assert.Equal(t, []string{created.Banner.PublicID}, store.DeletedIDs())
}

func TestUpdateBannerToleratesRemoteDeleteFailure(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Image: pngHeader(t)})
	require.NoError(t, err)
	store.FailDelete[created.Banner.PublicID] = true

	res, err := svc.Update(ctx, created.Banner.ID, Input{Image: pngHeader(t)})
	require.NoError(t, err)
	assert.NotEqual(t, created.Banner.PublicID, res.Banner.PublicID)
}

func TestUpdateMissingBanner(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Update(context.Background(), 42, Input{Image: pngHeader(t)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, store.Uploads)
}

func TestDeleteBanner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Image: pngHeader(t)})
	require.NoError(t, err)
	store.FailDelete[created.Banner.PublicID] = true

	_, err = svc.Delete(ctx, created.Banner.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Delete(ctx, created.Banner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
