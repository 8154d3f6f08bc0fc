package images

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

// ProductFolder is where product and variant images are stored.
const ProductFolder = "products"

// sniffLen matches the amount mimetype reads by default.
const sniffLen = 3072

// Uploader stores batches of product images.
type Uploader struct {
	store    storage.AssetStore
	logg     *logger.Logger
	maxFiles int
}

func NewUploader(store storage.AssetStore, logg *logger.Logger, maxFiles int) (*Uploader, error) {
	if store == nil {
		return nil, errors.New("asset store is required")
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Uploader{store: store, logg: logg, maxFiles: maxFiles}, nil
}

// MaxFiles is the largest batch Upload accepts.
func (u *Uploader) MaxFiles() int {
	return u.maxFiles
}

// Upload stores every file under ProductFolder. When one upload fails the assets
// already stored for this batch are removed before the error is returned.
func (u *Uploader) Upload(ctx context.Context, files []*multipart.FileHeader) ([]ImageRef, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if len(files) > u.maxFiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images per upload", u.maxFiles))
	}

	refs := make([]ImageRef, 0, len(files))
	for _, fh := range files {
		asset, err := UploadFile(ctx, u.store, ProductFolder, fh)
		if err != nil {
			uploaded := make([]string, 0, len(refs))
			for _, ref := range refs {
				uploaded = append(uploaded, ref.PublicID)
			}
			_ = RemoveAssets(ctx, u.store, u.logg, uploaded...)
			return nil, err
		}
		refs = append(refs, ImageRef{ImageURL: asset.URL, PublicID: asset.PublicID})
	}
	return refs, nil
}

// UploadFile sniffs fh, rejects anything that is not an image and stores it in folder.
func UploadFile(ctx context.Context, store storage.AssetStore, folder string, fh *multipart.FileHeader) (storage.Asset, error) {
	if fh == nil {
		return storage.Asset{}, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return storage.Asset{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image file")
	}
	defer f.Close()

	body := bufio.NewReaderSize(f, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && len(head) == 0 {
		return storage.Asset{}, pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}
	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return storage.Asset{}, pkgerrors.New(pkgerrors.CodeValidation, "only image files are allowed").
			WithDetails(map[string]any{"filename": fh.Filename, "content_type": detected.String()})
	}

	asset, err := store.Upload(ctx, storage.UploadInput{
		Folder:      folder,
		Filename:    fh.Filename,
		ContentType: detected.String(),
		Body:        body,
	})
	if err != nil {
		return storage.Asset{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return asset, nil
}
