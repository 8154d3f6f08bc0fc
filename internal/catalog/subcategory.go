package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

func (s *Service) ListSubcategories(ctx context.Context) ([]SubcategoryDTO, error) {
	rows, err := s.repo.ListSubcategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subcategories")
	}
	return rows, nil
}

func (s *Service) GetSubcategory(ctx context.Context, id int64) (*SubcategoryDTO, error) {
	row, err := s.repo.GetSubcategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, KindSubcategory, "load")
	}
	return row, nil
}

func (s *Service) CreateSubcategory(ctx context.Context, in SubcategoryInput) (*SubcategoryDTO, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, s.repo, in.CategoryID); err != nil {
		return nil, err
	}

	row := &models.Subcategory{Name: name, Description: in.Description, CategoryID: in.CategoryID}
	if err := s.repo.CreateSubcategory(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subcategory")
	}
	return s.GetSubcategory(ctx, row.ID)
}

// UpdateSubcategory may move the subcategory to another category.
func (s *Service) UpdateSubcategory(ctx context.Context, id int64, in SubcategoryInput) (*SubcategoryDTO, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	d, _ := Lookup(KindSubcategory)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.requireCategory(ctx, repo, in.CategoryID); err != nil {
			return err
		}
		return s.updateAndRename(ctx, repo, d, id, map[string]any{
			"name":        name,
			"description": in.Description,
			"category_id": in.CategoryID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetSubcategory(ctx, id)
}

func (s *Service) DeleteSubcategory(ctx context.Context, id int64) error {
	d, _ := Lookup(KindSubcategory)
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.guardedDelete(ctx, s.repo.WithTx(tx), d, id)
	})
}

func (s *Service) requireCategory(ctx context.Context, repo *Repository, categoryID int64) error {
	if categoryID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	d, _ := Lookup(KindCategory)
	ok, err := repo.Exists(ctx, d, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist").
			WithDetails(map[string]any{"field": "category_id", "id": categoryID})
	}
	return nil
}
