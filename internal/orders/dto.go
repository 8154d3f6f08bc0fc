package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
	"github.com/edelguur/admin-backend/pkg/pagination"
)

// CartLine is one line of a storefront cart. ID is the product id at checkout time.
type CartLine struct {
	ID    *int64          `json:"id"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty" validate:"min=1"`
}

type CreateOrderInput struct {
	Name    string     `json:"name" validate:"required"`
	Email   *string    `json:"email" validate:"omitempty,email"`
	Phone1  string     `json:"phone1" validate:"required"`
	Phone2  *string    `json:"phone2"`
	Message *string    `json:"message"`
	Cart    []CartLine `json:"cart" validate:"required,min=1,dive"`
}

type CreateResult struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"order_id"`
}

// ListParams filters the admin order listing. Q matches name, email or id.
type ListParams struct {
	Page   int
	Limit  int
	Q      string
	Status string
}

type OrderDTO struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Email     *string           `json:"email"`
	Phone1    string            `json:"phone1"`
	Phone2    *string           `json:"phone2"`
	Message   *string           `json:"message"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ItemDTO struct {
	ID          int64           `json:"id"`
	ProductID   *int64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type ListResult struct {
	Items []OrderDTO      `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

type DetailResult struct {
	Order OrderDTO  `json:"order"`
	Items []ItemDTO `json:"items"`
}

type StatusResult struct {
	Order OrderDTO `json:"order"`
}

func FromModel(m models.Order) OrderDTO {
	return OrderDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone1:    m.Phone1,
		Phone2:    m.Phone2,
		Message:   m.Message,
		Status:    m.Status,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func itemFromModel(m models.OrderItem) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		Price:       m.Price,
	}
}
