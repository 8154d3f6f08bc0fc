package banners

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

func (r *Repository) List(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.DB(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.Banner, error) {
	var row models.Banner
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Banner) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) Update(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.Banner{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Banner{})
	return res.RowsAffected, res.Error
}
