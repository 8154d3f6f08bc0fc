package products

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/edelguur/admin-backend/api/responses"
	"github.com/edelguur/admin-backend/api/validators"
	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/logger"
)

type Uploader interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]images.ImageRef, error)
}

// UploadImages stores the "images" files and answers with their urls and public ids.
// Nothing is written to the database until a product or variant save references them.
func UploadImages(up Uploader, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(w, r, maxUpload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		refs, err := up.Upload(r.Context(), validators.FormFiles(r, "images"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, refs)
	}
}

func ListImages(svc Service, logg *logger.Logger) http.HandlerFunc {
	return byID("productId", svc.Images, logg)
}
