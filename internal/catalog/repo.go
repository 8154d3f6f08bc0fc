package catalog

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/repo"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// Repository issues the descriptor-driven statements shared by every lookup table.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.On(tx)}
}

func (r *Repository) List(ctx context.Context, d Descriptor) ([]Entry, error) {
	var rows []Entry
	err := r.DB(ctx).Table(d.Table).Order(d.orderBy()).Find(&rows).Error
	return rows, err
}

func (r *Repository) Get(ctx context.Context, d Descriptor, id int64) (*Entry, error) {
	var row Entry
	if err := r.DB(ctx).Table(d.Table).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, d Descriptor, row *Entry) error {
	return r.DB(ctx).Table(d.Table).Create(row).Error
}

// UpdateRow applies fields and stamps updated_at. It returns the affected row count.
func (r *Repository) UpdateRow(ctx context.Context, d Descriptor, id int64, fields map[string]any, now time.Time) (int64, error) {
	fields["updated_at"] = now
	res := r.DB(ctx).Table(d.Table).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteRow(ctx context.Context, d Descriptor, id int64) (int64, error) {
	res := r.DB(ctx).Exec("DELETE FROM "+d.Table+" WHERE id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) Exists(ctx context.Context, d Descriptor, id int64) (bool, error) {
	var count int64
	err := r.DB(ctx).Table(d.Table).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Name returns the name of row id, or gorm.ErrRecordNotFound.
func (r *Repository) Name(ctx context.Context, d Descriptor, id int64) (string, error) {
	var names []string
	if err := r.DB(ctx).Table(d.Table).Where("id = ?", id).Limit(1).Pluck("name", &names).Error; err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return names[0], nil
}

// RenameProducts rewrites the cached name on every product pointing at id.
func (r *Repository) RenameProducts(ctx context.Context, d Descriptor, id int64, name string) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where(d.ProductIDColumn+" = ?", id).
		UpdateColumn(d.ProductNameColumn, name).Error
}

func (r *Repository) CountProducts(ctx context.Context, d Descriptor, id int64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Product{}).Where(d.ProductIDColumn+" = ?", id).Count(&count).Error
	return count, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.DB(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var row models.Category
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateCategory(ctx context.Context, row *models.Category) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) CountSubcategories(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Subcategory{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *Repository) ListSubcategoryRefs(ctx context.Context) ([]models.Subcategory, error) {
	var rows []models.Subcategory
	err := r.DB(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateSubcategory(ctx context.Context, row *models.Subcategory) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) joinedSubcategories(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("sub_categories AS s").
		Select("s.id, s.name, s.description, s.category_id, c.name AS category_name, s.created_at, s.updated_at").
		Joins("JOIN categories AS c ON c.id = s.category_id")
}

func (r *Repository) ListSubcategories(ctx context.Context) ([]SubcategoryDTO, error) {
	var rows []SubcategoryDTO
	err := r.joinedSubcategories(ctx).Order("s.id DESC").Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetSubcategory(ctx context.Context, id int64) (*SubcategoryDTO, error) {
	var rows []SubcategoryDTO
	if err := r.joinedSubcategories(ctx).Where("s.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}
