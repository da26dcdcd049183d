package repository

import (
	"context"
	"time"

	"orchid-shop/internal/model"

	"gorm.io/gorm"
)

type PaymentEventRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (bool, error)
	MarkProcessed(ctx context.Context, tx *gorm.DB, gatewayOrderID string, orderID uint, message string) error
}

type paymentEventRepoImpl struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepoImpl{db: db}
}

func (r *paymentEventRepoImpl) Exists(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.PaymentEvent{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Count(&count).Error

	return count > 0, err
}

func (r *paymentEventRepoImpl) MarkProcessed(ctx context.Context, tx *gorm.DB, gatewayOrderID string, orderID uint, message string) error {
	return tx.WithContext(ctx).Create(&model.PaymentEvent{
		GatewayOrderID: gatewayOrderID,
		OrderID:        orderID,
		ResultMessage:  truncate(message, 255),
		ProcessedAt:    time.Now(),
	}).Error
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
