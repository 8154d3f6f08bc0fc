// Package orders records storefront orders and serves the admin order desk.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/db/models"
	"github.com/edelguur/admin-backend/pkg/enums"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/outbox"
	"github.com/edelguur/admin-backend/pkg/outbox/payloads"
	"github.com/edelguur/admin-backend/pkg/pagination"
)

type ServiceParams struct {
	DB     *db.Client
	Outbox outbox.Emitter
	Logger *logger.Logger
	Now    func() time.Time
}

type Service struct {
	db     *db.Client
	repo   *Repository
	outbox outbox.Emitter
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:     params.DB,
		repo:   NewRepository(params.DB.DB()),
		outbox: params.Outbox,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Create stores the order with its items and queues order_created in one transaction.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*CreateResult, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range in.Cart {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	order := &models.Order{
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Phone1:  strings.TrimSpace(in.Phone1),
		Phone2:  in.Phone2,
		Message: in.Message,
		Status:  enums.OrderStatusPending,
		Total:   total.Round(2),
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		items := make([]models.OrderItem, 0, len(in.Cart))
		for _, line := range in.Cart {
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ID,
				ProductName: line.Name,
				Price:       line.Price,
				Quantity:    line.Qty,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}
		return s.emit(ctx, tx, enums.EventOrderCreated, order.ID, payloads.OrderCreatedEvent{
			OrderID:   order.ID,
			Name:      order.Name,
			Email:     order.Email,
			Phone:     order.Phone1,
			Total:     order.Total,
			ItemCount: len(items),
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithResource(ctx, "order", order.ID)
	s.logg.Info(ctx, "order.created")
	return &CreateResult{Success: true, OrderID: order.ID}, nil
}

// List pages through orders newest first.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize()
	filter := listFilter{Q: params.Q, Offset: page.Offset(), Limit: page.Limit}
	if raw := strings.TrimSpace(params.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filter.Status = &status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	return &ListResult{Items: items, Meta: pagination.NewMeta(page, total)}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DetailResult, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	rows, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromModel(row))
	}
	return &DetailResult{Order: FromModel(*order), Items: items}, nil
}

// UpdateStatus moves an order to status and queues order_status_changed.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (*StatusResult, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var (
		updated *models.Order
		from    enums.OrderStatus
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.Get(ctx, id)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		from = current.Status
		if _, err := repo.UpdateStatus(ctx, id, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if err := s.emit(ctx, tx, enums.EventOrderStatusChanged, id, payloads.OrderStatusChangedEvent{
			OrderID: id,
			From:    from,
			To:      status,
		}); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithResource(ctx, "order", id)
	ctx = s.logg.WithFields(ctx, map[string]any{"from": from, "to": status})
	s.logg.Info(ctx, "order.status_changed")
	return &StatusResult{Order: FromModel(*updated)}, nil
}

func (s *Service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID int64, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data:          data,
		OccurredAt:    s.now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit "+string(eventType))
	}
	return nil
}

func validateCreate(in CreateOrderInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone1) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name and phone1 are required")
	}
	if len(in.Cart) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}
	for i, line := range in.Cart {
		if strings.TrimSpace(line.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart[%d]: name is required", i))
		}
		if line.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart[%d]: qty must be at least 1", i))
		}
		if line.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart[%d]: price must not be negative", i))
		}
	}
	return nil
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
