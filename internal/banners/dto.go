package banners

import (
	"mime/multipart"
	"time"

	"github.com/edelguur/admin-backend/pkg/db/models"
)

type BannerDTO struct {
	ID          int64     `json:"id"`
	Description *string   `json:"description"`
	ImageURL    string    `json:"image_url"`
	PublicID    string    `json:"public_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the multipart form of a banner write. Image may be nil on update.
type Input struct {
	Description *string
	Image       *multipart.FileHeader
}

type MutationResult struct {
	Message string     `json:"message"`
	Banner  *BannerDTO `json:"banner,omitempty"`
}

func fromModel(m models.Banner) BannerDTO {
	return BannerDTO{
		ID:          m.ID,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		PublicID:    m.PublicID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
