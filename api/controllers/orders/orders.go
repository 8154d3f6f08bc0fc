// Package orders serves storefront checkout and the admin order desk.
package orders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	internalorders "github.com/edelguur/admin-backend/internal/orders"
	"github.com/edelguur/admin-backend/pkg/logger"
)

const maxSearchLen = 200

type Service interface {
	Create(ctx context.Context, in internalorders.CreateOrderInput) (*internalorders.CreateResult, error)
	List(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error)
	Get(ctx context.Context, id int64) (*internalorders.DetailResult, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*internalorders.StatusResult, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportXLSX(ctx context.Context, w io.Writer) error
}

type statusRequest struct {
	Status string `json:"status"`
}

func Create(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internalorders.CreateOrderInput
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

// List accepts page, limit, q and status. Out of range paging is clamped by the service.
func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, math.MinInt32, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, math.MinInt32, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		out, err := svc.List(r.Context(), internalorders.ListParams{
			Page:   page,
			Limit:  limit,
			Q:      validators.SanitizeString(query.Get("q"), maxSearchLen),
			Status: validators.SanitizeString(query.Get("status"), 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Get(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func UpdateStatus(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body statusRequest
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.UpdateStatus(r.Context(), id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ExportCSV(svc Service, logg *logger.Logger) http.HandlerFunc {
	return export(svc.ExportCSV, internalorders.CSVMIME, internalorders.CSVFilename, logg)
}

func ExportXLSX(svc Service, logg *logger.Logger) http.HandlerFunc {
	return export(svc.ExportXLSX, internalorders.XLSXMIME, internalorders.XLSXFilename, logg)
}

// export buffers the whole file before any header is written.
func export(render func(context.Context, io.Writer) error, mime, filename string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := render(r.Context(), &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			logg.Warn(r.Context(), "order export write failed")
		}
	}
}
