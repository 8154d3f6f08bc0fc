package catalog

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	internalcatalog "github.com/edelguur/admin-backend/internal/catalog"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type CategoryService interface {
	ListCategoryTree(ctx context.Context) ([]internalcatalog.CategoryTree, error)
	CreateCategory(ctx context.Context, in internalcatalog.CategoryInput) (*internalcatalog.CategoryDTO, error)
	UpdateCategory(ctx context.Context, id int64, in internalcatalog.CategoryInput) (*internalcatalog.CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error
}

func ListCategories(svc CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := svc.ListCategoryTree(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tree)
	}
}

// CreateCategory accepts multipart (with an optional "image" file) or JSON.
func CreateCategory(svc CategoryService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := categoryInput(w, r, maxUpload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.CreateCategory(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, row)
	}
}

func UpdateCategory(svc CategoryService, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, err := categoryInput(w, r, maxUpload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateCategory(r.Context(), id, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func DeleteCategory(svc CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "category deleted"})
	}
}

func categoryInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (internalcatalog.CategoryInput, error) {
	if validators.IsMultipart(r) {
		if err := validators.ParseMultipart(w, r, maxUpload); err != nil {
			return internalcatalog.CategoryInput{}, err
		}
		in := internalcatalog.CategoryInput{
			Name:        validators.FormString(r, "name"),
			Description: validators.FormOptional(r, "description"),
			Image:       validators.FormFile(r, "image"),
		}
		if in.Name == "" {
			return in, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"name": "is required"})
		}
		return in, nil
	}

	var body internalcatalog.EntryInput
	if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
		return internalcatalog.CategoryInput{}, err
	}
	return internalcatalog.CategoryInput{Name: body.Name, Description: body.Description}, nil
}
