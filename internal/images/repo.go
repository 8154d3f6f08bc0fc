package images

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/repo"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// Repository reads and writes product_images.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.On(tx)}
}

// ListForProduct returns every image of the product, variant images included.
func (r *Repository) ListForProduct(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.DB(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListForProducts groups the images of many products by product id.
func (r *Repository) ListForProducts(ctx context.Context, productIDs []int64) (map[int64][]models.ProductImage, error) {
	out := make(map[int64][]models.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.ProductImage
	if err := r.DB(ctx).Where("product_id IN ?", productIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row)
	}
	return out, nil
}

// ListForVariants groups variant images by variant id.
func (r *Repository) ListForVariants(ctx context.Context, variantIDs []int64) (map[int64][]models.ProductImage, error) {
	out := make(map[int64][]models.ProductImage, len(variantIDs))
	if len(variantIDs) == 0 {
		return out, nil
	}
	var rows []models.ProductImage
	if err := r.DB(ctx).Where("product_variant_id IN ?", variantIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[*row.ProductVariantID] = append(out[*row.ProductVariantID], row)
	}
	return out, nil
}

// ListScope returns the rows owned by scope.
func (r *Repository) ListScope(ctx context.Context, scope Scope) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.scoped(ctx, scope).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Insert(ctx context.Context, scope Scope, refs []ImageRef) error {
	if len(refs) == 0 {
		return nil
	}
	rows := ToModels(scope, refs)
	return r.DB(ctx).Create(&rows).Error
}

func (r *Repository) DeleteByPublicID(ctx context.Context, scope Scope, publicID string) error {
	return r.scoped(ctx, scope).Where("public_id = ?", publicID).Delete(&models.ProductImage{}).Error
}

// DeleteScope removes every row owned by scope.
func (r *Repository) DeleteScope(ctx context.Context, scope Scope) error {
	return r.scoped(ctx, scope).Delete(&models.ProductImage{}).Error
}

// DeleteForProduct removes every image of the product, variant images included.
func (r *Repository) DeleteForProduct(ctx context.Context, productID int64) error {
	return r.DB(ctx).Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error
}

func (r *Repository) scoped(ctx context.Context, scope Scope) *gorm.DB {
	q := r.DB(ctx).Model(&models.ProductImage{}).Where("product_id = ?", scope.ProductID)
	if scope.VariantID == nil {
		return q.Where("product_variant_id IS NULL")
	}
	return q.Where("product_variant_id = ?", *scope.VariantID)
}

// URLs flattens rows to their image urls.
func URLs(rows []models.ProductImage) []string {
	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		urls = append(urls, row.ImageURL)
	}
	return urls
}

// Refs converts rows to the client shape.
func Refs(rows []models.ProductImage) []ImageRef {
	refs := make([]ImageRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, ImageRef{ImageURL: row.ImageURL, PublicID: row.PublicID})
	}
	return refs
}

// ImageDTO is the public shape of one product_images row.
type ImageDTO struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	VariantID *int64    `json:"product_variant_id"`
	ImageURL  string    `json:"image_url"`
	PublicID  string    `json:"public_id"`
	CreatedAt time.Time `json:"created_at"`
}

func DTOs(rows []models.ProductImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImageDTO{
			ID:        row.ID,
			ProductID: row.ProductID,
			VariantID: row.ProductVariantID,
			ImageURL:  row.ImageURL,
			PublicID:  row.PublicID,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
