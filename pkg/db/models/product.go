package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product carries both the foreign id and the cached name of every lookup it
// references. The cached names are kept current by the catalog rename path.
type Product struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string          `gorm:"column:name;not null"`
	Description     *string         `gorm:"column:description"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Stock           int             `gorm:"column:stock;not null;default:0"`
	CategoryID      *int64          `gorm:"column:category_id;index"`
	CategoryName    *string         `gorm:"column:category_name"`
	SubcategoryID   *int64          `gorm:"column:subcategory_id;index"`
	SubcategoryName *string         `gorm:"column:subcategory_name"`
	BrandID         *int64          `gorm:"column:brand_id;index"`
	BrandName       *string         `gorm:"column:brand_name"`
	UnitID          *int64          `gorm:"column:unit_id;index"`
	UnitName        *string         `gorm:"column:unit_name"`
	StatusID        *int64          `gorm:"column:status_id;index"`
	StatusName      *string         `gorm:"column:status_name"`
	TypeID          *int64          `gorm:"column:type_id;index"`
	TypeName        *string         `gorm:"column:type_name"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// ProductImage is owned by a product and, optionally, one of its variants.
type ProductImage struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID        int64     `gorm:"column:product_id;not null;index"`
	ProductVariantID *int64    `gorm:"column:product_variant_id;index"`
	ImageURL         string    `gorm:"column:image_url;not null"`
	PublicID         string    `gorm:"column:public_id;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductVariant stores its attribute set verbatim.
type ProductVariant struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Attribute map[string]any  `gorm:"column:attribute;type:jsonb;serializer:json"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	SKU       *string         `gorm:"column:sku"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductVariant) TableName() string { return "product_variants" }
