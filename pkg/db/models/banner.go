package models

import "time"

type Banner struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Description *string   `gorm:"column:description"`
	ImageURL    string    `gorm:"column:image_url;not null"`
	PublicID    string    `gorm:"column:public_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Banner) TableName() string { return "banners" }
