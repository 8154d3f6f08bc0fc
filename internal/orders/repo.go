package orders

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/repo"
	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
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

type listFilter struct {
	Q      string
	Status *enums.OrderStatus
	Offset int
	Limit  int
}

func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

// CreateItems inserts every line in a single statement.
func (r *Repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.Order, error) {
	var row models.Order
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var rows []models.OrderItem
	err := r.DB(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// List returns one page of orders, newest first, plus the unpaged match count.
func (r *Repository) List(ctx context.Context, f listFilter) ([]models.Order, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := q.Order("created_at DESC").Order("id DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error
	return rows, total, err
}

// All streams every order newest first for exports.
func (r *Repository) All(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (int64, error) {
	res := r.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *Repository) filtered(ctx context.Context, f listFilter) *gorm.DB {
	q := r.DB(ctx).Model(&models.Order{})
	if term := strings.TrimSpace(f.Q); term != "" {
		like := "%" + term + "%"
		if q.Dialector.Name() == "postgres" {
			q = q.Where("(name ILIKE ? OR email ILIKE ? OR CAST(id AS TEXT) ILIKE ?)", like, like, like)
		} else {
			q = q.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR CAST(id AS TEXT) LIKE ?)", like, like, like)
		}
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}
