// Package variants manages product variants and the images scoped to them.
package variants

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/images"
	product "github.com/edelguur/admin-backend/internal/products"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

type ServiceParams struct {
	DB         *db.Client
	Reconciler *images.Reconciler
	Store      storage.AssetStore
	Logger     *logger.Logger
}

type Service struct {
	db         *db.Client
	repo       *Repository
	products   *product.Repository
	images     *images.Repository
	reconciler *images.Reconciler
	store      storage.AssetStore
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("image reconciler is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	conn := params.DB.DB()
	return &Service{
		db:         params.DB,
		repo:       NewRepository(conn),
		products:   product.NewRepository(conn),
		images:     images.NewRepository(conn),
		reconciler: params.Reconciler,
		store:      params.Store,
		logg:       params.Logger,
	}, nil
}

// ListByProduct returns the variants of a product in creation order, each with its images.
func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]VariantDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list variants")
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	byVariant, err := s.images.ListForVariants(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list variant images")
	}
	out := make([]VariantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row, byVariant[row.ID]))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in VariantInput) (*MutationResult, error) {
	if in.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	row := &models.ProductVariant{ProductID: in.ProductID}
	if err := apply(row, in); err != nil {
		return nil, err
	}

	var (
		dto    VariantDTO
		result images.Result
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.products.WithTx(tx).Exists(ctx, in.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
		}
		result, err = s.reconciler.Reconcile(ctx, tx, images.Scope{ProductID: row.ProductID, VariantID: &row.ID}, in.Images)
		if err != nil {
			return err
		}
		dto, err = s.load(ctx, tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithResource(ctx, "variant", dto.ID)
	s.logg.Info(ctx, "variant.created")
	return &MutationResult{Success: true, Message: "Variant created", Data: &dto, AddedImages: result.Added}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in VariantInput) (*MutationResult, error) {
	var (
		dto    VariantDTO
		result images.Result
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.Get(ctx, id)
		if err != nil {
			return notFoundOr(err, "load variant")
		}
		if err := apply(row, in); err != nil {
			return err
		}
		if err := repo.Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update variant")
		}
		result, err = s.reconciler.Reconcile(ctx, tx, images.Scope{ProductID: row.ProductID, VariantID: &row.ID}, in.Images)
		if err != nil {
			return err
		}
		dto, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{
		Success:       true,
		Message:       "Variant updated",
		Data:          &dto,
		AddedImages:   result.Added,
		DeletedImages: result.Deleted,
	}, nil
}

// Delete drops the variant and its image rows, then removes the hosted assets.
func (s *Service) Delete(ctx context.Context, id int64) (*MutationResult, error) {
	var publicIDs []string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.Get(ctx, id)
		if err != nil {
			return notFoundOr(err, "load variant")
		}
		scope := images.Scope{ProductID: row.ProductID, VariantID: &row.ID}
		imageRepo := s.images.WithTx(tx)
		imgs, err := imageRepo.ListScope(ctx, scope)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant images")
		}
		for _, img := range imgs {
			publicIDs = append(publicIDs, img.PublicID)
		}
		if err := imageRepo.DeleteScope(ctx, scope); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete variant images")
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete variant")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = images.RemoveAssets(ctx, s.store, s.logg, publicIDs...)
	return &MutationResult{Success: true, Message: "Variant deleted", DeletedImages: len(publicIDs)}, nil
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id int64) (VariantDTO, error) {
	row, err := s.repo.WithTx(tx).Get(ctx, id)
	if err != nil {
		return VariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload variant")
	}
	imgs, err := s.images.WithTx(tx).ListScope(ctx, images.Scope{ProductID: row.ProductID, VariantID: &row.ID})
	if err != nil {
		return VariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload variant images")
	}
	return fromModel(*row, imgs), nil
}

func apply(row *models.ProductVariant, in VariantInput) error {
	row.Attribute = in.Attribute
	if row.Attribute == nil {
		row.Attribute = map[string]any{}
	}
	row.Price = decimal.Zero
	if in.Price.Valid {
		if in.Price.Decimal.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		row.Price = in.Price.Decimal
	}
	row.Stock = 0
	if in.Stock.Valid {
		if in.Stock.Value < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		row.Stock = int(in.Stock.Value)
	}
	row.SKU = in.SKU
	return nil
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
