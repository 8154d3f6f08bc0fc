package variants

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edelguur/admin-backend/internal/images"
	product "github.com/edelguur/admin-backend/internal/products"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage/storagetest"
)

func newTestService(t *testing.T) (*Service, *db.Client, *storagetest.Store) {
	t.Helper()
	client := dbtest.Open(t)
	store := storagetest.New()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	rec, err := images.NewReconciler(store, logg)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{DB: client, Reconciler: rec, Store: store, Logger: logg})
	require.NoError(t, err)
	return svc, client, store
}

func seedProduct(t *testing.T, client *db.Client) int64 {
	t.Helper()
	p := models.Product{Name: "Shirt"}
	require.NoError(t, client.DB().Create(&p).Error)
	return p.ID
}

func img(id string) images.ImageRef {
	return images.ImageRef{ImageURL: "https://assets.test/" + id, PublicID: id}
}

func TestCreateVariantWithImages(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, client)

	sku := "SH-RED-M"
	res, err := svc.Create(ctx, VariantInput{
		ProductID: productID,
		Attribute: map[string]any{"color": "red", "size": "M"},
		Price:     product.NewFlexDecimal(decimal.RequireFromString("19.90")),
		SKU:       &sku,
		Images:    []images.ImageRef{img("v1"), img("v2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.AddedImages)
	require.NotNil(t, res.Data)
	assert.Equal(t, "red", res.Data.Attribute["color"])
	assert.Len(t, res.Data.Images, 2)

	list, err := svc.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []images.ImageRef{img("v1"), img("v2")}, list[0].Images)
	assert.True(t, list[0].Price.Equal(decimal.RequireFromString("19.9")))
}

func TestCreateVariantRequiresProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), VariantInput{ProductID: 77})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateVariantReconcilesOnlyItsImages(t *testing.T) {
	svc, client, store := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, client)
	require.NoError(t, images.NewRepository(client.DB()).Insert(ctx, images.Scope{ProductID: productID}, []images.ImageRef{img("p1")}))

	created, err := svc.Create(ctx, VariantInput{ProductID: productID, Images: []images.ImageRef{img("v1")}})
	require.NoError(t, err)

	res, err := svc.Update(ctx, created.Data.ID, VariantInput{
		Attribute: map[string]any{"size": "L"},
		Stock:     product.NewFlexInt(3),
		Images:    []images.ImageRef{img("v2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedImages)
	assert.Equal(t, 1, res.AddedImages)
	assert.Equal(t, 3, res.Data.Stock)
	assert.Equal(t, []string{"v1"}, store.DeletedIDs())

	rows, err := images.NewRepository(client.DB()).ListForProduct(ctx, productID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://assets.test/p1", "https://assets.test/v2"}, images.URLs(rows))

	_, err = svc.Update(ctx, created.Data.ID+1, VariantInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteVariant(t *testing.T) {
	svc, client, store := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, client)

	created, err := svc.Create(ctx, VariantInput{ProductID: productID, Images: []images.ImageRef{img("v1"), img("v2")}})
	require.NoError(t, err)
	store.FailDelete["v2"] = true

	res, err := svc.Delete(ctx, created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DeletedImages)
	assert.Equal(t, []string{"v1"}, store.DeletedIDs())

	list, err := svc.ListByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Delete(ctx, created.Data.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteVariantKeepsAssetsWhenRowsSurvive(t *testing.T) {
	svc, client, store := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, client)

	created, err := svc.Create(ctx, VariantInput{ProductID: productID, Images: []images.ImageRef{img("v1")}})
	require.NoError(t, err)
	require.NoError(t, client.DB().Exec(
		`CREATE TRIGGER keep_variants BEFORE DELETE ON product_variants BEGIN SELECT RAISE(ABORT, 'locked'); END`,
	).Error)

	_, err = svc.Delete(ctx, created.Data.ID)
	require.Error(t, err)
	assert.Empty(t, store.DeletedIDs())

	list, err := svc.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Images, 1)
}

func TestVariantInputDecodesLooseValues(t *testing.T) {
	var in VariantInput
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":1,"price":"","stock":"7"}`), &in))
	assert.False(t, in.Price.Valid)
	assert.Equal(t, int64(7), in.Stock.Value)

	in = VariantInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"9.5","stock":""}`), &in))
	assert.True(t, in.Price.Decimal.Equal(decimal.RequireFromString("9.5")))
	assert.False(t, in.Stock.Valid)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"cheap"}`), &in))
}

func TestCreateVariantDefaultsBlankPriceAndStock(t *testing.T) {
	svc, client, _ := newTestService(t)
	productID := seedProduct(t, client)

	var in VariantInput
	require.NoError(t, json.Unmarshal([]byte(`{"price":"","stock":""}`), &in))
	in.ProductID = productID

	res, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	assert.True(t, res.Data.Price.IsZero())
	assert.Equal(t, 0, res.Data.Stock)
}
