package product

import (
	"context"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/repo"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// Repository persists products.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.On(tx)}
}

// listQuery narrows a product listing. Zero values mean no filter.
type listQuery struct {
	Order      string
	Limit      int
	StatusID   int64
	CategoryID int64
}

func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Product, error) {
	query := r.DB(ctx).Model(&models.Product{})
	if q.StatusID > 0 {
		query = query.Where("status_id = ?", q.StatusID)
	}
	if q.CategoryID > 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.Order == "" {
		q.Order = "id DESC"
	}
	query = query.Order(q.Order)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var rows []models.Product
	err := query.Find(&rows).Error
	return rows, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, row *models.Product) error {
	return r.DB(ctx).Create(row).Error
}

// Update overwrites every editable column, nulls included.
func (r *Repository) Update(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteVariants(ctx context.Context, productID int64) error {
	return r.DB(ctx).Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error
}
