package images

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

// Scope selects the image rows owned by a product, or by one of its variants when
// VariantID is set. A nil VariantID means the product-level images only.
type Scope struct {
	ProductID int64
	VariantID *int64
}

// Result counts the rows a reconcile touched.
type Result struct {
	Deleted int `json:"deleted"`
	Added   int `json:"added"`
}

// Reconciler applies a desired image list to a scope inside the caller's transaction.
type Reconciler struct {
	store storage.AssetStore
	logg  *logger.Logger
}

// NewReconciler builds a reconciler that removes dropped assets from store.
func NewReconciler(store storage.AssetStore, logg *logger.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("asset store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Reconciler{store: store, logg: logg}, nil
}

// Reconcile deletes the images missing from desired and inserts the new ones.
// Remote delete failures are logged and do not fail the call; database errors do.
func (r *Reconciler) Reconcile(ctx context.Context, tx *gorm.DB, scope Scope, desired []ImageRef) (Result, error) {
	if tx == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if scope.ProductID <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	repo := NewRepository(tx)
	rows, err := repo.ListScope(ctx, scope)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load images")
	}
	current := make([]ImageRef, 0, len(rows))
	for _, row := range rows {
		current = append(current, ImageRef{ImageURL: row.ImageURL, PublicID: row.PublicID})
	}

	toDelete, toInsert, err := Diff(current, desired)
	if err != nil {
		return Result{}, err
	}

	var remoteErr error
	for _, ref := range toDelete {
		if ref.PublicID != "" {
			remoteErr = multierr.Append(remoteErr, r.store.Delete(ctx, ref.PublicID))
		}
		if err := repo.DeleteByPublicID(ctx, scope, ref.PublicID); err != nil {
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete image row")
		}
	}
	if remoteErr != nil {
		r.logRemoteFailures(ctx, remoteErr)
	}

	if err := repo.Insert(ctx, scope, toInsert); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert images")
	}
	return Result{Deleted: len(toDelete), Added: len(toInsert)}, nil
}

// RemoveAssets deletes publicIDs from the store, skipping blanks. Failures are
// logged and returned combined so callers may ignore them.
func RemoveAssets(ctx context.Context, store storage.AssetStore, logg *logger.Logger, publicIDs ...string) error {
	var errs error
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		errs = multierr.Append(errs, store.Delete(ctx, id))
	}
	if errs != nil && logg != nil {
		ctx = logg.WithField(ctx, "failed_deletes", len(multierr.Errors(errs)))
		logg.Warn(ctx, "images.remote_delete_failed")
	}
	return errs
}

func (r *Reconciler) logRemoteFailures(ctx context.Context, err error) {
	failures := multierr.Errors(err)
	ctx = r.logg.WithFields(ctx, map[string]any{
		"failed_deletes": len(failures),
		"error":          err.Error(),
	})
	r.logg.Warn(ctx, "images.remote_delete_failed")
}

// ToModels turns refs into rows for scope.
func ToModels(scope Scope, refs []ImageRef) []models.ProductImage {
	rows := make([]models.ProductImage, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, models.ProductImage{
			ProductID:        scope.ProductID,
			ProductVariantID: scope.VariantID,
			ImageURL:         ref.ImageURL,
			PublicID:         ref.PublicID,
		})
	}
	return rows
}
