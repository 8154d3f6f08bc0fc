package variants

import (
	"context"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/repo"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.On(tx)}
}

func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.DB(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.ProductVariant, error) {
	var row models.ProductVariant
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.ProductVariant) error {
	return r.DB(ctx).Create(row).Error
}

// Save writes every column of row.
func (r *Repository) Save(ctx context.Context, row *models.ProductVariant) error {
	return r.DB(ctx).Save(row).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.ProductVariant{})
	return res.RowsAffected, res.Error
}
