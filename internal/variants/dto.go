package variants

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edelguur/admin-backend/internal/images"
	product "github.com/edelguur/admin-backend/internal/products"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// VariantDTO is a variant with the images scoped to it.
type VariantDTO struct {
	ID        int64             `json:"id"`
	ProductID int64             `json:"product_id"`
	Attribute map[string]any    `json:"attribute"`
	Price     decimal.Decimal   `json:"price"`
	Stock     int               `json:"stock"`
	SKU       *string           `json:"sku"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Images    []images.ImageRef `json:"images"`
}

// VariantInput is the body of create and update. ProductID is ignored on update.
// Attribute is stored as sent.
type VariantInput struct {
	ProductID int64               `json:"product_id"`
	Attribute map[string]any      `json:"attribute"`
	Price     product.FlexDecimal `json:"price"`
	Stock     product.FlexInt     `json:"stock"`
	SKU       *string             `json:"sku"`
	Images    []images.ImageRef   `json:"images"`
}

type MutationResult struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	Data          *VariantDTO `json:"data,omitempty"`
	AddedImages   int         `json:"added_images"`
	DeletedImages int         `json:"deleted_images"`
}

func fromModel(m models.ProductVariant, imgs []models.ProductImage) VariantDTO {
	attr := m.Attribute
	if attr == nil {
		attr = map[string]any{}
	}
	return VariantDTO{
		ID:        m.ID,
		ProductID: m.ProductID,
		Attribute: attr,
		Price:     m.Price,
		Stock:     m.Stock,
		SKU:       m.SKU,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Images:    images.Refs(imgs),
	}
}
