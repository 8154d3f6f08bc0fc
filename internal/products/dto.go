package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/db/models"
)

// ProductDTO is a product row as the storefront reads it.
type ProductDTO struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	CategoryID      *int64          `json:"category_id"`
	CategoryName    *string         `json:"category_name"`
	SubcategoryID   *int64          `json:"subcategory_id"`
	SubcategoryName *string         `json:"subcategory_name"`
	BrandID         *int64          `json:"brand_id"`
	BrandName       *string         `json:"brand_name"`
	UnitID          *int64          `json:"unit_id"`
	UnitName        *string         `json:"unit_name"`
	StatusID        *int64          `json:"status_id"`
	StatusName      *string         `json:"status_name"`
	TypeID          *int64          `json:"type_id"`
	TypeName        *string         `json:"type_name"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductWithImages adds the hosted image urls.
type ProductWithImages struct {
	ProductDTO
	ImageURLs []string `json:"image_urls"`
}

func FromModel(m models.Product) ProductDTO {
	return ProductDTO{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           m.Price,
		Stock:           m.Stock,
		CategoryID:      m.CategoryID,
		CategoryName:    m.CategoryName,
		SubcategoryID:   m.SubcategoryID,
		SubcategoryName: m.SubcategoryName,
		BrandID:         m.BrandID,
		BrandName:       m.BrandName,
		UnitID:          m.UnitID,
		UnitName:        m.UnitName,
		StatusID:        m.StatusID,
		StatusName:      m.StatusName,
		TypeID:          m.TypeID,
		TypeName:        m.TypeName,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FlexInt accepts a JSON number, a numeric string, an empty string or null.
// Zero counts as absent so optional references can be cleared with 0 or "".
type FlexInt struct {
	Value int64
	Valid bool
}

func NewFlexInt(v int64) FlexInt {
	return FlexInt{Value: v, Valid: v != 0}
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = FlexInt{}
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", string(data))
	}
	*f = NewFlexInt(v)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Ptr returns nil for an absent value.
func (f FlexInt) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexDecimal accepts a JSON number, a numeric string, an empty string or null.
// Blank and null are absent.
type FlexDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func NewFlexDecimal(d decimal.Decimal) FlexDecimal {
	return FlexDecimal{Decimal: d, Valid: true}
}

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*f = FlexDecimal{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = FlexDecimal{}
			return nil
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("expected a number, got %s", string(data))
	}
	*f = NewFlexDecimal(d)
	return nil
}

func (f FlexDecimal) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(f.Decimal.String()), nil
}

// ProductInput is the body of product create and update. Cached reference names
// are resolved from the ids, never taken from the client.
type ProductInput struct {
	Name          string            `json:"name" validate:"required"`
	Description   *string           `json:"description"`
	Price         FlexDecimal       `json:"price"`
	Stock         FlexInt           `json:"stock"`
	CategoryID    FlexInt           `json:"category_id"`
	SubcategoryID FlexInt           `json:"subcategory_id"`
	BrandID       FlexInt           `json:"brand_id"`
	UnitID        FlexInt           `json:"unit_id"`
	StatusID      FlexInt           `json:"status_id"`
	TypeID        FlexInt           `json:"type_id"`
	Images        []images.ImageRef `json:"images"`
}

func (in ProductInput) references() []reference {
	return []reference{
		{kind: catalog.KindCategory, id: in.CategoryID},
		{kind: catalog.KindSubcategory, id: in.SubcategoryID},
		{kind: catalog.KindBrand, id: in.BrandID},
		{kind: catalog.KindUnit, id: in.UnitID},
		{kind: catalog.KindStatus, id: in.StatusID},
		{kind: catalog.KindType, id: in.TypeID},
	}
}

type reference struct {
	kind catalog.Kind
	id   FlexInt
}

type CreateResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ProductID   int64  `json:"product_id"`
	AddedImages int    `json:"added_images"`
}

type UpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
	Added   int    `json:"added"`
}

// CategoryProducts is the storefront listing for one category.
type CategoryProducts struct {
	CategoryName string              `json:"category_name"`
	Products     []ProductWithImages `json:"products"`
}

// CategoryDetail is the category page: every category, the selected one and its products.
type CategoryDetail struct {
	Categories []catalog.CategorySummary `json:"categories"`
	Category   catalog.CategorySummary   `json:"category"`
	Products   []ProductWithImages       `json:"products"`
}
