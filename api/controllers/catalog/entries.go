// Package catalog serves the reference tables: brand, unit, status, type, category and subcategory.
package catalog

import (
	"context"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	internalcatalog "github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/pkg/logger"
)

// EntryService is the flat-table surface of the catalog service.
type EntryService interface {
	List(ctx context.Context, kind internalcatalog.Kind) ([]internalcatalog.Entry, error)
	Get(ctx context.Context, kind internalcatalog.Kind, id int64) (*internalcatalog.Entry, error)
	Create(ctx context.Context, kind internalcatalog.Kind, in internalcatalog.EntryInput) (*internalcatalog.Entry, error)
	Update(ctx context.Context, kind internalcatalog.Kind, id int64, in internalcatalog.EntryInput) (*internalcatalog.Entry, error)
	Delete(ctx context.Context, kind internalcatalog.Kind, id int64) error
}

func List(svc EntryService, kind internalcatalog.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Get(svc EntryService, kind internalcatalog.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), kind, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func Create(svc EntryService, kind internalcatalog.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internalcatalog.EntryInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), kind, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, row)
	}
}

func Update(svc EntryService, kind internalcatalog.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body internalcatalog.EntryInput
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Update(r.Context(), kind, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func Delete(svc EntryService, kind internalcatalog.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), kind, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": string(kind) + " deleted"})
	}
}
