package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/lock"
	"orchid-shop/internal/metrics"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgOrderCreated   = "Order and order detail created successfully"
	MsgDetailAppended = "Order detail added to existing order"
)

type OrderService interface {
	// AddLineItem appends one line to the account's pending order, opening a
	// new pending order when there is none.
	AddLineItem(ctx context.Context, accountID, orchidID uint, quantity int) (*model.Order, string, error)
	// UpdateOrder replaces every line of a pending order with a single new line.
	UpdateOrder(ctx context.Context, accountID, orderID, orchidID uint, quantity int) (*model.Order, error)
	DeleteOrder(ctx context.Context, accountID, orderID uint) error
	DeleteOrderAdmin(ctx context.Context, orderID uint) error
	UpdateStatus(ctx context.Context, orderID uint, status string) (*model.Order, error)

	Get(ctx context.Context, caller Caller, orderID uint) (*model.Order, error)
	ListMine(ctx context.Context, accountID uint) ([]*model.Order, error)
	ListMineByStatus(ctx context.Context, accountID uint, status string) ([]*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Order, error)
	ListByAccountAndStatus(ctx context.Context, accountID uint, status string) ([]*model.Order, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.Order, error)
	ListByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Order, error)
	ListNewestFirst(ctx context.Context) ([]*model.Order, error)
	TotalAmountByStatus(ctx context.Context, status string) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, accountID uint) (int64, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	locker      lock.Locker
	orderRepo   repository.OrderRepository
	detailRepo  repository.OrderDetailRepository
	accountRepo repository.AccountRepository
	orchidRepo  repository.OrchidRepository
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	locker lock.Locker,
	orderRepo repository.OrderRepository,
	detailRepo repository.OrderDetailRepository,
	accountRepo repository.AccountRepository,
	orchidRepo repository.OrchidRepository,
	m *metrics.Metrics,
	log *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		locker:      locker,
		orderRepo:   orderRepo,
		detailRepo:  detailRepo,
		accountRepo: accountRepo,
		orchidRepo:  orchidRepo,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

func (s *orderServiceImpl) AddLineItem(ctx context.Context, accountID, orchidID uint, quantity int) (*model.Order, string, error) {
	if quantity <= 0 {
		return nil, "", apperr.InvalidArgument("Quantity must be greater than 0")
	}
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return nil, "", lookupErr(err, "Account", accountID)
	}
	orchid, err := s.orchidRepo.FindByID(ctx, orchidID)
	if err != nil {
		return nil, "", lookupErr(err, "Orchid", orchidID)
	}

	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(accountID))
	if err != nil {
		return nil, "", fmt.Errorf("lock pending order: %w", err)
	}
	defer unlock()

	lineTotal := orchid.Price.Mul(decimal.NewFromInt(int64(quantity)))

	var (
		order   *model.Order
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := s.orderRepo.FindPendingByAccount(ctx, tx, accountID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pending = &model.Order{
				AccountID:   accountID,
				Status:      model.OrderStatusPending,
				OrderDate:   s.now().UTC(),
				TotalAmount: lineTotal,
			}
			if err := s.orderRepo.Create(ctx, tx, pending); err != nil {
				return fmt.Errorf("store order in db: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("find pending order: %w", err)
		default:
			pending.TotalAmount = pending.TotalAmount.Add(lineTotal)
			if err := s.orderRepo.Save(ctx, tx, pending); err != nil {
				return fmt.Errorf("update order total: %w", err)
			}
		}

		// the detail needs the order's generated id
		detail := &model.OrderDetail{
			OrderID:  pending.ID,
			OrchidID: orchid.ID,
			Price:    orchid.Price,
			Quantity: quantity,
		}
		if err := s.detailRepo.Create(ctx, tx, detail); err != nil {
			return fmt.Errorf("store order detail in db: %w", err)
		}

		order = pending
		return nil
	})
	if err != nil {
		s.metrics.LineItemAdded("failed")
		return nil, "", err
	}

	if created {
		s.metrics.LineItemAdded("created")
		s.log.Info("pending order created",
			zap.Uint("order_id", order.ID),
			zap.Uint("account_id", accountID),
			zap.String("total", order.TotalAmount.String()))
		return order, MsgOrderCreated, nil
	}

	s.metrics.LineItemAdded("merged")
	s.log.Info("line item added to pending order",
		zap.Uint("order_id", order.ID),
		zap.Uint("account_id", accountID),
		zap.String("total", order.TotalAmount.String()))
	return order, MsgDetailAppended, nil
}

// loadOwnedPending returns the order when accountID owns it and it is still PENDING.
func (s *orderServiceImpl) loadOwnedPending(ctx context.Context, accountID, orderID uint, action string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "Order", orderID)
	}
	if order.AccountID != accountID {
		return nil, apperr.PermissionDenied("You do not have permission to %s this order", action)
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperr.InvalidState("Only PENDING orders can be %sd, order %d is %s", action, orderID, order.Status)
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateOrder(ctx context.Context, accountID, orderID, orchidID uint, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, apperr.InvalidArgument("Quantity must be greater than 0")
	}

	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(accountID))
	if err != nil {
		return nil, fmt.Errorf("lock pending order: %w", err)
	}
	defer unlock()

	order, err := s.loadOwnedPending(ctx, accountID, orderID, "update")
	if err != nil {
		return nil, err
	}
	orchid, err := s.orchidRepo.FindByID(ctx, orchidID)
	if err != nil {
		return nil, lookupErr(err, "Orchid", orchidID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.detailRepo.DeleteByOrder(ctx, tx, order.ID); err != nil {
			return fmt.Errorf("delete order details: %w", err)
		}

		detail := &model.OrderDetail{
			OrderID:  order.ID,
			OrchidID: orchid.ID,
			Price:    orchid.Price,
			Quantity: quantity,
		}
		if err := s.detailRepo.Create(ctx, tx, detail); err != nil {
			return fmt.Errorf("store order detail in db: %w", err)
		}

		order.TotalAmount = orchid.Price.Mul(decimal.NewFromInt(int64(quantity)))
		order.OrderDate = s.now().UTC()
		if err := s.orderRepo.Save(ctx, tx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("pending order replaced", zap.Uint("order_id", order.ID), zap.String("total", order.TotalAmount.String()))
	return order, nil
}

func (s *orderServiceImpl) DeleteOrder(ctx context.Context, accountID, orderID uint) error {
	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(accountID))
	if err != nil {
		return fmt.Errorf("lock pending order: %w", err)
	}
	defer unlock()

	if _, err := s.loadOwnedPending(ctx, accountID, orderID, "delete"); err != nil {
		return err
	}
	if err := s.deleteWithDetails(ctx, orderID); err != nil {
		return err
	}

	s.log.Info("pending order deleted", zap.Uint("order_id", orderID), zap.Uint("account_id", accountID))
	return nil
}

func (s *orderServiceImpl) DeleteOrderAdmin(ctx context.Context, orderID uint) error {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return lookupErr(err, "Order", orderID)
	}
	if err := s.deleteWithDetails(ctx, orderID); err != nil {
		return err
	}

	s.log.Info("order deleted by admin", zap.Uint("order_id", orderID))
	return nil
}

func (s *orderServiceImpl) deleteWithDetails(ctx context.Context, orderID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.detailRepo.DeleteByOrder(ctx, tx, orderID); err != nil {
			return fmt.Errorf("delete order details: %w", err)
		}
		if err := s.orderRepo.Delete(ctx, tx, orderID); err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Order not found with id: %d", orderID)
	}
	if err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}
	return nil
}

// UpdateStatus sets any known status; transitions are not restricted. It
// holds the owner's pending-order lock so a change cannot interleave with the
// owner's update or delete.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, status string) (*model.Order, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(order.AccountID))
	if err != nil {
		return nil, fmt.Errorf("lock pending order: %w", err)
	}
	defer unlock()

	if err := s.orderRepo.SetStatus(ctx, s.db, orderID, parsed); err != nil {
		return nil, lookupErr(err, "Order", orderID)
	}

	s.log.Info("order status changed", zap.Uint("order_id", orderID), zap.String("status", string(parsed)))
	return s.getByID(ctx, orderID)
}

func (s *orderServiceImpl) getByID(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "Order", orderID)
	}
	return order, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, caller Caller, orderID uint) (*model.Order, error) {
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.AccountID != caller.AccountID {
		return nil, apperr.PermissionDenied("You do not have permission to view this order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListMine(ctx context.Context, accountID uint) ([]*model.Order, error) {
	return s.orderRepo.FindByAccount(ctx, accountID)
}

func (s *orderServiceImpl) ListMineByStatus(ctx context.Context, accountID uint, status string) ([]*model.Order, error) {
	return s.ListByAccountAndStatus(ctx, accountID, status)
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

func (s *orderServiceImpl) ListByStatus(ctx context.Context, status string) ([]*model.Order, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByStatus(ctx, parsed)
}

func (s *orderServiceImpl) ListByAccountAndStatus(ctx context.Context, accountID uint, status string) ([]*model.Order, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByAccountAndStatus(ctx, accountID, parsed)
}

func (s *orderServiceImpl) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.Order, error) {
	if start.After(end) {
		return nil, apperr.InvalidArgument("start date must not be after end date")
	}
	return s.orderRepo.FindByDateRange(ctx, start, end)
}

func (s *orderServiceImpl) ListByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Order, error) {
	if err := checkRange(min, max, "amount"); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByAmountRange(ctx, min, max)
}

func (s *orderServiceImpl) ListNewestFirst(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.FindAllByDateDesc(ctx)
}

func (s *orderServiceImpl) TotalAmountByStatus(ctx context.Context, status string) (decimal.Decimal, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return decimal.Zero, err
	}
	return s.orderRepo.SumTotalByStatus(ctx, parsed)
}

func (s *orderServiceImpl) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	return s.orderRepo.CountByAccount(ctx, accountID)
}

func parseStatus(status string) (model.OrderStatus, error) {
	parsed, ok := model.ParseOrderStatus(status)
	if !ok {
		return "", apperr.InvalidArgument("Unknown order status: %s", status)
	}
	return parsed, nil
}
