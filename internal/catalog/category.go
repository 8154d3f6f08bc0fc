package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/storage"
)

func categoryDTO(row *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func categorySummary(row models.Category) CategorySummary {
	return CategorySummary{CategoryID: row.ID, CategoryName: row.Name, CategoryImage: row.ImageURL}
}

// ListCategoryTree returns every category with its subcategories, oldest first.
func (s *Service) ListCategoryTree(ctx context.Context) ([]CategoryTree, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	subs, err := s.repo.ListSubcategoryRefs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subcategories")
	}

	byCategory := make(map[int64][]SubcategoryRef, len(cats))
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], SubcategoryRef{ID: sub.ID, Name: sub.Name})
	}

	out := make([]CategoryTree, 0, len(cats))
	for _, c := range cats {
		refs := byCategory[c.ID]
		if refs == nil {
			refs = []SubcategoryRef{}
		}
		out = append(out, CategoryTree{CategorySummary: categorySummary(c), Subcategories: refs})
	}
	return out, nil
}

// ListCategorySummaries returns the flat storefront list of categories.
func (s *Service) ListCategorySummaries(ctx context.Context) ([]CategorySummary, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		out = append(out, categorySummary(c))
	}
	return out, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*CategoryDTO, error) {
	row, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, KindCategory, "load")
	}
	return categoryDTO(row), nil
}

// CreateCategory stores the optional image first; the asset is removed again if the insert fails.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*CategoryDTO, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}

	row := &models.Category{Name: name, Description: in.Description}
	asset, err := s.uploadCategoryImage(ctx, in)
	if err != nil {
		return nil, err
	}
	if asset != nil {
		row.ImageURL = &asset.URL
		row.ImagePublicID = &asset.PublicID
	}

	if err := s.repo.CreateCategory(ctx, row); err != nil {
		s.removeAsset(ctx, row.ImagePublicID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return categoryDTO(row), nil
}

// UpdateCategory renames the category on its products and swaps the image when a new
// one is sent. The replaced asset is deleted only after the rows commit.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*CategoryDTO, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	d, _ := Lookup(KindCategory)

	current, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, KindCategory, "load")
	}

	asset, err := s.uploadCategoryImage(ctx, in)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"name": name, "description": in.Description}
	if asset != nil {
		fields["image_url"] = asset.URL
		fields["image_public_id"] = asset.PublicID
	}

	var updated *models.Category
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.updateAndRename(ctx, repo, d, id, fields); err != nil {
			return err
		}
		updated, err = repo.GetCategory(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload category")
		}
		return nil
	})
	if err != nil {
		if asset != nil {
			s.removeAsset(ctx, &asset.PublicID)
		}
		return nil, err
	}

	if asset != nil {
		s.removeAsset(ctx, current.ImagePublicID)
	}
	return categoryDTO(updated), nil
}

// DeleteCategory refuses while products or subcategories reference the category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	d, _ := Lookup(KindCategory)

	var publicID *string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetCategory(ctx, id)
		if err != nil {
			return notFoundOr(err, KindCategory, "load")
		}
		publicID = current.ImagePublicID

		subs, err := repo.CountSubcategories(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subcategories")
		}
		if subs > 0 {
			return inUse(KindCategory, id, subs, "subcategories")
		}
		return s.guardedDelete(ctx, repo, d, id)
	})
	if err != nil {
		return err
	}

	s.removeAsset(ctx, publicID)
	ctx = s.logg.WithResource(ctx, string(KindCategory), id)
	s.logg.Info(ctx, "catalog.deleted")
	return nil
}

func (s *Service) uploadCategoryImage(ctx context.Context, in CategoryInput) (*storage.Asset, error) {
	if in.Image == nil || strings.TrimSpace(in.Image.Filename) == "" {
		return nil, nil
	}
	asset, err := images.UploadFile(ctx, s.store, CategoryFolder, in.Image)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
