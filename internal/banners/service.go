// Package banners manages the storefront hero banners and their hosted images.
package banners

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

// Folder is where banner images live in the asset store.
const Folder = "edelguur/banner"

type ServiceParams struct {
	DB     *db.Client
	Store  storage.AssetStore
	Logger *logger.Logger
}

type Service struct {
	db    *db.Client
	repo  *Repository
	store storage.AssetStore
	logg  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{
		db:    params.DB,
		repo:  NewRepository(params.DB.DB()),
		store: params.Store,
		logg:  params.Logger,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// Create uploads the image and stores the banner. The asset is removed again if the insert fails.
func (s *Service) Create(ctx context.Context, in Input) (*MutationResult, error) {
	if in.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	asset, err := images.UploadFile(ctx, s.store, Folder, in.Image)
	if err != nil {
		return nil, err
	}

	row := &models.Banner{Description: in.Description, ImageURL: asset.URL, PublicID: asset.PublicID}
	if err := s.repo.Create(ctx, row); err != nil {
		_ = images.RemoveAssets(ctx, s.store, s.logg, asset.PublicID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create banner")
	}

	ctx = s.logg.WithResource(ctx, "banner", row.ID)
	s.logg.Info(ctx, "banner.created")
	dto := fromModel(*row)
	return &MutationResult{Message: "Banner created", Banner: &dto}, nil
}

// Update rewrites the description and, when an image is sent, swaps the hosted asset.
// The previous asset is deleted only after the new row commits.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*MutationResult, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load banner")
	}

	fields := map[string]any{"description": in.Description}
	var asset *storage.Asset
	if in.Image != nil {
		uploaded, err := images.UploadFile(ctx, s.store, Folder, in.Image)
		if err != nil {
			return nil, err
		}
		asset = &uploaded
		fields["image_url"] = uploaded.URL
		fields["public_id"] = uploaded.PublicID
	}

	var updated *models.Banner
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		n, err := repo.Update(ctx, id, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update banner")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		updated, err = repo.Get(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload banner")
		}
		return nil
	})
	if err != nil {
		if asset != nil {
			_ = images.RemoveAssets(ctx, s.store, s.logg, asset.PublicID)
		}
		return nil, err
	}

	if asset != nil && current.PublicID != "" {
		_ = images.RemoveAssets(ctx, s.store, s.logg, current.PublicID)
	}
	dto := fromModel(*updated)
	return &MutationResult{Message: "Banner updated", Banner: &dto}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*MutationResult, error) {
	var publicID string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.Get(ctx, id)
		if err != nil {
			return notFoundOr(err, "load banner")
		}
		publicID = current.PublicID
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete banner")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if publicID != "" {
		_ = images.RemoveAssets(ctx, s.store, s.logg, publicID)
	}
	ctx = s.logg.WithResource(ctx, "banner", id)
	s.logg.Info(ctx, "banner.deleted")
	return &MutationResult{Message: "Banner deleted"}, nil
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
