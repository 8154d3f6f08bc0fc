// Package products serves products, their uploaded images and their variants.
package products

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	"github.com/edelguur/admin-backend/internal/images"
	product "github.com/edelguur/admin-backend/internal/products"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type Service interface {
	List(ctx context.Context) ([]product.ProductDTO, error)
	Latest(ctx context.Context) ([]product.ProductWithImages, error)
	Popular(ctx context.Context) ([]product.ProductWithImages, error)
	All(ctx context.Context) ([]product.ProductWithImages, error)
	Get(ctx context.Context, id int64) (*product.ProductWithImages, error)
	ByCategory(ctx context.Context, categoryID int64) (*product.CategoryProducts, error)
	CategoryDetail(ctx context.Context, categoryID int64) (*product.CategoryDetail, error)
	Images(ctx context.Context, productID int64) ([]images.ImageDTO, error)
	Create(ctx context.Context, in product.ProductInput) (*product.CreateResult, error)
	Update(ctx context.Context, id int64, in product.ProductInput) (*product.UpdateResult, error)
	Delete(ctx context.Context, id int64) error
}

// listing adapts one of the no-argument listings to a handler.
func listing[T any](fetch func(context.Context) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fetch(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// byID adapts a lookup keyed by the chi parameter param.
func byID[T any](param string, fetch func(context.Context, int64) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := fetch(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func List(svc Service, logg *logger.Logger) http.HandlerFunc    { return listing(svc.List, logg) }
func Latest(svc Service, logg *logger.Logger) http.HandlerFunc  { return listing(svc.Latest, logg) }
func Popular(svc Service, logg *logger.Logger) http.HandlerFunc { return listing(svc.Popular, logg) }
func All(svc Service, logg *logger.Logger) http.HandlerFunc     { return listing(svc.All, logg) }

func Get(svc Service, logg *logger.Logger) http.HandlerFunc {
	return byID("id", svc.Get, logg)
}

func ByCategory(svc Service, logg *logger.Logger) http.HandlerFunc {
	return byID("id", svc.ByCategory, logg)
}

// CategoryDetail is the storefront category page: every category, the chosen one and its products.
func CategoryDetail(svc Service, logg *logger.Logger) http.HandlerFunc {
	return byID("id", svc.CategoryDetail, logg)
}

func Create(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body product.ProductInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, out)
	}
}

func Update(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body product.ProductInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Delete(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"success": true, "message": "Product deleted"})
	}
}
