package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/pkg/db"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/storage"
)

// CategoryFolder holds category images in the asset store.
const CategoryFolder = "edelguur/categories"

// ServiceParams bundles the dependencies of the catalog service.
type ServiceParams struct {
	DB     *db.Client
	Store  storage.AssetStore
	Logger *logger.Logger
	Now    func() time.Time
}

// Service owns every write to the lookup tables, keeping the names cached on
// products in step with renames.
type Service struct {
	db    *db.Client
	repo  *Repository
	store storage.AssetStore
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:    params.DB,
		repo:  NewRepository(params.DB.DB()),
		store: params.Store,
		logg:  params.Logger,
		now:   now,
	}, nil
}

func (s *Service) List(ctx context.Context, kind Kind) ([]Entry, error) {
	d, err := flatDescriptor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, d)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("list %s", kind))
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Entry, error) {
	d, err := flatDescriptor(kind)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, d, id)
	if err != nil {
		return nil, notFoundOr(err, kind, "load")
	}
	return row, nil
}

func (s *Service) Create(ctx context.Context, kind Kind, in EntryInput) (*Entry, error) {
	d, err := flatDescriptor(kind)
	if err != nil {
		return nil, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	row := &Entry{Name: name, Description: in.Description}
	if err := s.repo.Create(ctx, d, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("create %s", kind))
	}
	return row, nil
}

// Update renames the row and every product that caches its name, atomically.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, in EntryInput) (*Entry, error) {
	d, err := flatDescriptor(kind)
	if err != nil {
		return nil, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}

	var updated *Entry
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.updateAndRename(ctx, repo, d, id, map[string]any{"name": name, "description": in.Description}); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, d, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("reload %s", kind))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithResource(ctx, string(kind), id)
	s.logg.Info(ctx, "catalog.updated")
	return updated, nil
}

// Delete refuses while any product still references the row.
func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	d, err := flatDescriptor(kind)
	if err != nil {
		return err
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.guardedDelete(ctx, s.repo.WithTx(tx), d, id)
	})
	if err != nil {
		return err
	}
	ctx = s.logg.WithResource(ctx, string(kind), id)
	s.logg.Info(ctx, "catalog.deleted")
	return nil
}

// ResolveName returns the name of the referenced row for caching on a product.
// A missing row is a validation error because the id came from the client.
func (s *Service) ResolveName(ctx context.Context, tx *gorm.DB, kind Kind, id int64) (string, error) {
	d, err := Lookup(kind)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve name")
	}
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	name, err := repo.Name(ctx, d, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %d does not exist", kind, id)).
				WithDetails(map[string]any{"field": d.ProductIDColumn, "id": id})
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("resolve %s name", kind))
	}
	return name, nil
}

func (s *Service) updateAndRename(ctx context.Context, repo *Repository, d Descriptor, id int64, fields map[string]any) error {
	name, _ := fields["name"].(string)
	affected, err := repo.UpdateRow(ctx, d, id, fields, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("update %s", d.Kind))
	}
	if affected == 0 {
		return notFound(d.Kind)
	}
	if err := repo.RenameProducts(ctx, d, id, name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("rename %s on products", d.Kind))
	}
	return nil
}

func (s *Service) guardedDelete(ctx context.Context, repo *Repository, d Descriptor, id int64) error {
	count, err := repo.CountProducts(ctx, d, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("count %s products", d.Kind))
	}
	if count > 0 {
		return inUse(d.Kind, id, count, "products")
	}
	affected, err := repo.DeleteRow(ctx, d, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("%s is still referenced", d.Kind))
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("delete %s", d.Kind))
	}
	if affected == 0 {
		return notFound(d.Kind)
	}
	return nil
}

func flatDescriptor(kind Kind) (Descriptor, error) {
	if !IsFlat(kind) {
		return Descriptor{}, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("%s is not a flat catalog table", kind))
	}
	return Lookup(kind)
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return name, nil
}

func notFound(kind Kind) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", kind))
}

func notFoundOr(err error, kind Kind, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("%s %s", action, kind))
}

func inUse(kind Kind, id, count int64, by string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is in use by %d %s", kind, count, by)).
		WithDetails(map[string]any{"kind": string(kind), "id": id, by: count})
}

func (s *Service) removeAsset(ctx context.Context, publicID *string) {
	if publicID == nil {
		return
	}
	_ = images.RemoveAssets(ctx, s.store, s.logg, *publicID)
}
