package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edelguur/admin-backend/pkg/enums"
)

type Order struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string            `gorm:"column:name;not null"`
	Email     *string           `gorm:"column:email"`
	Phone1    string            `gorm:"column:phone1;not null"`
	Phone2    *string           `gorm:"column:phone2"`
	Message   *string           `gorm:"column:message"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:pending"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the product at order time; ProductID is not a live reference.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	ProductID   *int64          `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
}

func (OrderItem) TableName() string { return "order_items" }
