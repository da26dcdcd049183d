package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/client"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/lock"
	"orchid-shop/internal/metrics"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// the gateway reports success in Vietnamese
const paymentSuccessPhrase = "thành công"

type PaymentService interface {
	CreatePaymentURL(ctx context.Context, orderID uint) (string, error)
	// HandlePayment confirms the order named by the callback. A callback whose
	// gateway order id was already handled reports success without writing.
	HandlePayment(ctx context.Context, cb dto.PaymentCallback) (string, error)
}

type paymentServiceImpl struct {
	db          *gorm.DB
	locker      lock.Locker
	momoClient  client.MomoClient
	orderRepo   repository.OrderRepository
	accountRepo repository.AccountRepository
	eventRepo   repository.PaymentEventRepository
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	locker lock.Locker,
	momoClient client.MomoClient,
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	eventRepo repository.PaymentEventRepository,
	m *metrics.Metrics,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:          db,
		locker:      locker,
		momoClient:  momoClient,
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

func (s *paymentServiceImpl) CreatePaymentURL(ctx context.Context, orderID uint) (string, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return "", lookupErr(err, "Order", orderID)
	}
	account, err := s.accountRepo.FindByID(ctx, order.AccountID)
	if err != nil {
		return "", lookupErr(err, "Account", order.AccountID)
	}

	// every attempt needs a fresh gateway order id
	gatewayOrderID := uuid.NewString() + "-" + s.now().UTC().Format(time.RFC3339Nano)

	result, err := s.momoClient.CreatePayment(ctx, client.MomoPayment{
		OrderID:   gatewayOrderID,
		RequestID: uuid.NewString(),
		Amount:    order.TotalAmount.IntPart(),
		OrderInfo: strconv.FormatUint(uint64(order.ID), 10),
		ExtraData: account.AccountName,
	})
	if err != nil {
		s.metrics.PaymentURL("failed")
		s.log.Warn("payment url request failed", zap.Uint("order_id", order.ID), zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamFailure, err, "Payment gateway did not return a payment URL")
	}

	s.metrics.PaymentURL("success")
	s.log.Info("payment url issued",
		zap.Uint("order_id", order.ID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.Int64("amount", order.TotalAmount.IntPart()))
	return result.PayURL, nil
}

func (s *paymentServiceImpl) HandlePayment(ctx context.Context, cb dto.PaymentCallback) (string, error) {
	switch {
	case strings.TrimSpace(cb.OrderID) == "":
		return "", apperr.InvalidArgument("Invalid payload: missing orderId")
	case strings.TrimSpace(cb.Message) == "":
		return "", apperr.InvalidArgument("Invalid payload: missing message")
	case strings.TrimSpace(cb.OrderInfo) == "":
		return "", apperr.InvalidArgument("Invalid payload: missing orderInfo")
	}

	if !strings.Contains(strings.ToLower(cb.Message), paymentSuccessPhrase) {
		s.metrics.PaymentCallback("failed")
		s.log.Warn("payment reported as failed",
			zap.String("gateway_order_id", cb.OrderID),
			zap.String("order_info", cb.OrderInfo),
			zap.String("message", cb.Message),
			zap.String("result_code", cb.ResultCode))
		return "", apperr.InvalidState("Payment failed for order %s", cb.OrderID)
	}

	orderID, err := strconv.ParseUint(strings.TrimSpace(cb.OrderInfo), 10, 64)
	if err != nil {
		return "", apperr.InvalidArgument("Invalid payload: orderInfo %q is not an order id", cb.OrderInfo)
	}
	order, err := s.orderRepo.FindByID(ctx, uint(orderID))
	if err != nil {
		return "", lookupErr(err, "Order", orderID)
	}

	// serialize with the owner's pending-order edits
	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(order.AccountID))
	if err != nil {
		return "", fmt.Errorf("lock pending order: %w", err)
	}
	defer unlock()

	duplicate := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.eventRepo.Exists(ctx, tx, cb.OrderID)
		if err != nil {
			return fmt.Errorf("check payment event: %w", err)
		}
		if seen {
			duplicate = true
			return nil
		}

		if err := s.orderRepo.SetStatus(ctx, tx, order.ID, model.OrderStatusConfirmed); err != nil {
			return fmt.Errorf("confirm order: %w", err)
		}
		return s.eventRepo.MarkProcessed(ctx, tx, cb.OrderID, order.ID, cb.Message)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent delivery of the same callback committed first
		duplicate, err = true, nil
	}
	if err != nil {
		s.metrics.PaymentCallback("failed")
		return "", fmt.Errorf("handle payment for order %d: %w", order.ID, err)
	}

	if duplicate {
		s.metrics.PaymentCallback("duplicate")
		s.log.Info("duplicate payment callback ignored",
			zap.Uint("order_id", order.ID),
			zap.String("gateway_order_id", cb.OrderID))
	} else {
		s.metrics.PaymentCallback("success")
		s.log.Info("order confirmed by payment",
			zap.Uint("order_id", order.ID),
			zap.String("gateway_order_id", cb.OrderID),
			zap.String("trans_id", cb.TransID))
	}

	return fmt.Sprintf("Payment status for order %s is successful.", cb.OrderID), nil
}
