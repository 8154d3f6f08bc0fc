// Package storage defines the remote asset store used for product, category and banner images.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/edelguur/admin-backend/pkg/metrics"
)

// ErrInvalidUpload is returned when an upload lacks a body or folder.
var ErrInvalidUpload = errors.New("invalid upload")

// Asset is a stored object. PublicID is the handle used to delete it later.
type Asset struct {
	URL      string `json:"image_url"`
	PublicID string `json:"public_id"`
}

// UploadInput describes one object to store.
type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Body        io.Reader
}

// AssetStore uploads and deletes remote image assets.
type AssetStore interface {
	Upload(ctx context.Context, in UploadInput) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// ObjectName builds a collision-free object name under folder, keeping the file extension.
func ObjectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// Validate checks the fields every store needs.
func (in UploadInput) Validate() error {
	if in.Body == nil {
		return errors.Join(ErrInvalidUpload, errors.New("body is required"))
	}
	if strings.TrimSpace(in.Folder) == "" {
		return errors.Join(ErrInvalidUpload, errors.New("folder is required"))
	}
	return nil
}

type instrumented struct {
	next    AssetStore
	metrics *metrics.AssetMetrics
}

// Instrumented wraps store so every call is counted on m.
func Instrumented(store AssetStore, m *metrics.AssetMetrics) AssetStore {
	if m == nil {
		return store
	}
	return &instrumented{next: store, metrics: m}
}

func (i *instrumented) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	asset, err := i.next.Upload(ctx, in)
	i.metrics.Record(metrics.AssetUpload, err)
	return asset, err
}

func (i *instrumented) Delete(ctx context.Context, publicID string) error {
	err := i.next.Delete(ctx, publicID)
	i.metrics.Record(metrics.AssetDelete, err)
	return err
}
