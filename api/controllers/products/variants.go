package products

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	"github.com/edelguur/admin-backend/internal/variants"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type VariantService interface {
	ListByProduct(ctx context.Context, productID int64) ([]variants.VariantDTO, error)
	Create(ctx context.Context, in variants.VariantInput) (*variants.MutationResult, error)
	Update(ctx context.Context, id int64, in variants.VariantInput) (*variants.MutationResult, error)
	Delete(ctx context.Context, id int64) (*variants.MutationResult, error)
}

func ListVariants(svc VariantService, logg *logger.Logger) http.HandlerFunc {
	return byID("productId", svc.ListByProduct, logg)
}

func CreateVariant(svc VariantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body variants.VariantInput
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

func UpdateVariant(svc VariantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body variants.VariantInput
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

func DeleteVariant(svc VariantService, logg *logger.Logger) http.HandlerFunc {
	return byID("id", svc.Delete, logg)
}
