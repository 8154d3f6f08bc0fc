// Package banners serves the storefront banner carousel.
package banners

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	internalbanners "github.com/edelguur/admin-backend/internal/banners"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type Service interface {
	List(ctx context.Context) ([]internalbanners.BannerDTO, error)
	Create(ctx context.Context, in internalbanners.Input) (*internalbanners.MutationResult, error)
	Update(ctx context.Context, id int64, in internalbanners.Input) (*internalbanners.MutationResult, error)
	Delete(ctx context.Context, id int64) (*internalbanners.MutationResult, error)
}

func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Create(svc Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := formInput(w, r, maxUpload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Create(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, out)
	}
}

func Update(svc Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, err := formInput(w, r, maxUpload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Update(r.Context(), id, in)
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
		out, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func formInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (internalbanners.Input, error) {
	if err := validators.ParseMultipart(w, r, maxUpload); err != nil {
		return internalbanners.Input{}, err
	}
	return internalbanners.Input{
		Description: validators.FormOptional(r, "description"),
		Image:       validators.FormFile(r, "image"),
	}, nil
}
