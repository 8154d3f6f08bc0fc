package catalog

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	internalcatalog "github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type SubcategoryService interface {
	ListSubcategories(ctx context.Context) ([]internalcatalog.SubcategoryDTO, error)
	GetSubcategory(ctx context.Context, id int64) (*internalcatalog.SubcategoryDTO, error)
	CreateSubcategory(ctx context.Context, in internalcatalog.SubcategoryInput) (*internalcatalog.SubcategoryDTO, error)
	UpdateSubcategory(ctx context.Context, id int64, in internalcatalog.SubcategoryInput) (*internalcatalog.SubcategoryDTO, error)
	DeleteSubcategory(ctx context.Context, id int64) error
}

func ListSubcategories(svc SubcategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListSubcategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetSubcategory(svc SubcategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.GetSubcategory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CreateSubcategory(svc SubcategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internalcatalog.SubcategoryInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.CreateSubcategory(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, row)
	}
}

func UpdateSubcategory(svc SubcategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body internalcatalog.SubcategoryInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateSubcategory(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func DeleteSubcategory(svc SubcategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSubcategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "subcategory deleted"})
	}
}
