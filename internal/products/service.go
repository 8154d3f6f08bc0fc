package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

// ServiceParams bundles the dependencies of the product service.
type ServiceParams struct {
	DB         *db.Client
	Catalog    *catalog.Service
	Reconciler *images.Reconciler
	Store      storage.AssetStore
	Logger     *logger.Logger
	Config     config.CatalogConfig
	Now        func() time.Time
}

// Service manages products and their product-level images.
type Service struct {
	db         *db.Client
	repo       *Repository
	images     *images.Repository
	catalog    *catalog.Service
	reconciler *images.Reconciler
	store      storage.AssetStore
	logg       *logger.Logger
	cfg        config.CatalogConfig
	now        func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service is required")
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
	cfg := params.Config
	if cfg.ShowcaseLimit <= 0 {
		cfg.ShowcaseLimit = 10
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:         params.DB,
		repo:       NewRepository(params.DB.DB()),
		images:     images.NewRepository(params.DB.DB()),
		catalog:    params.Catalog,
		reconciler: params.Reconciler,
		store:      params.Store,
		logg:       params.Logger,
		cfg:        cfg,
		now:        now,
	}, nil
}

// List returns every product, newest id first, without images.
func (s *Service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, listQuery{Order: "id DESC"})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *Service) Latest(ctx context.Context) ([]ProductWithImages, error) {
	return s.showcase(ctx, listQuery{Order: "created_at DESC, id DESC", Limit: s.cfg.ShowcaseLimit})
}

// Popular lists the products flagged with the configured popular status.
func (s *Service) Popular(ctx context.Context) ([]ProductWithImages, error) {
	return s.showcase(ctx, listQuery{
		Order:    "updated_at DESC, id DESC",
		Limit:    s.cfg.ShowcaseLimit,
		StatusID: s.cfg.PopularStatusID,
	})
}

func (s *Service) All(ctx context.Context) ([]ProductWithImages, error) {
	return s.showcase(ctx, listQuery{Order: "id DESC", Limit: s.cfg.ShowcaseLimit})
}

func (s *Service) Get(ctx context.Context, id int64) (*ProductWithImages, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	out, err := s.withImages(ctx, []models.Product{*row})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ByCategory lists the products of a category, newest first.
func (s *Service) ByCategory(ctx context.Context, categoryID int64) (*CategoryProducts, error) {
	category, err := s.catalog.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	products, err := s.showcase(ctx, listQuery{Order: "created_at DESC, id DESC", CategoryID: categoryID})
	if err != nil {
		return nil, err
	}
	return &CategoryProducts{CategoryName: category.Name, Products: products}, nil
}

// CategoryDetail backs the category page.
func (s *Service) CategoryDetail(ctx context.Context, categoryID int64) (*CategoryDetail, error) {
	category, err := s.catalog.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	all, err := s.catalog.ListCategorySummaries(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.showcase(ctx, listQuery{Order: "created_at DESC, id DESC", CategoryID: categoryID})
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{
		Categories: all,
		Category: catalog.CategorySummary{
			CategoryID:    category.ID,
			CategoryName:  category.Name,
			CategoryImage: category.ImageURL,
		},
		Products: products,
	}, nil
}

// Create inserts the product and its images in one transaction.
func (s *Service) Create(ctx context.Context, in ProductInput) (*CreateResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if _, _, err := images.Diff(nil, in.Images); err != nil {
		return nil, err
	}

	var (
		productID int64
		result    images.Result
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		row := &models.Product{Name: name}
		if err := s.apply(ctx, tx, row, in); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		productID = row.ID

		var err error
		result, err = s.reconciler.Reconcile(ctx, tx, images.Scope{ProductID: row.ID}, in.Images)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithResource(ctx, "product", productID)
	s.logg.Info(ctx, "product.created")
	return &CreateResult{
		Success:     true,
		Message:     "Product created",
		ProductID:   productID,
		AddedImages: result.Added,
	}, nil
}

// Update overwrites the product and reconciles its product-level images.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*UpdateResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var result images.Result
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		row := &models.Product{Name: name}
		if err := s.apply(ctx, tx, row, in); err != nil {
			return err
		}
		if _, err := repo.Update(ctx, id, updateFields(row, s.now().UTC())); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}

		result, err = s.reconciler.Reconcile(ctx, tx, images.Scope{ProductID: id}, in.Images)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithResource(ctx, "product", id)
	ctx = s.logg.WithFields(ctx, map[string]any{"images_deleted": result.Deleted, "images_added": result.Added})
	s.logg.Info(ctx, "product.updated")
	return &UpdateResult{
		Success: true,
		Message: "Product and images updated",
		Deleted: result.Deleted,
		Added:   result.Added,
	}, nil
}

// Delete removes the product with its variants and images. The hosted assets are
// deleted after commit and failures there only get logged.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var publicIDs []string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		imageRepo := s.images.WithTx(tx)
		rows, err := imageRepo.ListForProduct(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load images")
		}
		for _, row := range rows {
			publicIDs = append(publicIDs, row.PublicID)
		}
		if err := imageRepo.DeleteForProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete images")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.DeleteVariants(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete variants")
		}
		affected, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = images.RemoveAssets(ctx, s.store, s.logg, publicIDs...)
	ctx = s.logg.WithResource(ctx, "product", id)
	s.logg.Info(ctx, "product.deleted")
	return nil
}

// apply copies the scalar fields and resolves the cached reference names.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, row *models.Product, in ProductInput) error {
	row.Description = in.Description
	row.Price = decimal.Zero
	if in.Price.Valid {
		if in.Price.Decimal.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		row.Price = in.Price.Decimal
	}
	if in.Stock.Valid {
		if in.Stock.Value < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		row.Stock = int(in.Stock.Value)
	}

	for _, ref := range in.references() {
		id := ref.id.Ptr()
		var name *string
		if id != nil {
			resolved, err := s.catalog.ResolveName(ctx, tx, ref.kind, *id)
			if err != nil {
				return err
			}
			name = &resolved
		}
		switch ref.kind {
		case catalog.KindCategory:
			row.CategoryID, row.CategoryName = id, name
		case catalog.KindSubcategory:
			row.SubcategoryID, row.SubcategoryName = id, name
		case catalog.KindBrand:
			row.BrandID, row.BrandName = id, name
		case catalog.KindUnit:
			row.UnitID, row.UnitName = id, name
		case catalog.KindStatus:
			row.StatusID, row.StatusName = id, name
		case catalog.KindType:
			row.TypeID, row.TypeName = id, name
		}
	}
	return nil
}

func updateFields(row *models.Product, now time.Time) map[string]any {
	return map[string]any{
		"name":             row.Name,
		"description":      row.Description,
		"price":            row.Price,
		"stock":            row.Stock,
		"category_id":      row.CategoryID,
		"category_name":    row.CategoryName,
		"subcategory_id":   row.SubcategoryID,
		"subcategory_name": row.SubcategoryName,
		"brand_id":         row.BrandID,
		"brand_name":       row.BrandName,
		"unit_id":          row.UnitID,
		"unit_name":        row.UnitName,
		"status_id":        row.StatusID,
		"status_name":      row.StatusName,
		"type_id":          row.TypeID,
		"type_name":        row.TypeName,
		"updated_at":       now,
	}
}

func (s *Service) showcase(ctx context.Context, q listQuery) ([]ProductWithImages, error) {
	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return s.withImages(ctx, rows)
}

func (s *Service) withImages(ctx context.Context, rows []models.Product) ([]ProductWithImages, error) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	byProduct, err := s.images.ListForProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product images")
	}
	out := make([]ProductWithImages, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductWithImages{ProductDTO: FromModel(row), ImageURLs: images.URLs(byProduct[row.ID])})
	}
	return out, nil
}

// Images lists every image row of a product, variant images included, in upload order.
func (s *Service) Images(ctx context.Context, productID int64) ([]images.ImageDTO, error) {
	rows, err := s.images.ListForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product images")
	}
	return images.DTOs(rows), nil
}
