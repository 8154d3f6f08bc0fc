package catalog

import (
	"mime/multipart"
	"time"
)

// Entry is a row of any flat lookup table.
type Entry struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// EntryInput is the body accepted by create and update of a flat table.
type EntryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type CategoryDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryInput carries the form fields and the optional image of a category write.
type CategoryInput struct {
	Name        string
	Description *string
	Image       *multipart.FileHeader
}

// CategorySummary is the storefront shape of a category.
type CategorySummary struct {
	CategoryID    int64   `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	CategoryImage *string `json:"category_image"`
}

type SubcategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryTree is a category with its subcategories.
type CategoryTree struct {
	CategorySummary
	Subcategories []SubcategoryRef `json:"subcategories"`
}

// SubcategoryDTO joins the parent category name.
type SubcategoryDTO struct {
	ID           int64     `gorm:"column:id" json:"id"`
	Name         string    `gorm:"column:name" json:"name"`
	Description  *string   `gorm:"column:description" json:"description"`
	CategoryID   int64     `gorm:"column:category_id" json:"category_id"`
	CategoryName string    `gorm:"column:category_name" json:"category_name"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

type SubcategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
}
