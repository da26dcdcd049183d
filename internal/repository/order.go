package repository

import (
	"context"
	"time"

	"orchid-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Methods taking tx run on that handle; pass the root *gorm.DB outside a transaction.
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	Save(ctx context.Context, tx *gorm.DB, order *model.Order) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	SetStatus(ctx context.Context, tx *gorm.DB, id uint, status model.OrderStatus) error
	FindPendingByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*model.Order, error)

	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByAccount(ctx context.Context, accountID uint) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	FindByAccountAndStatus(ctx context.Context, accountID uint, status model.OrderStatus) ([]*model.Order, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.Order, error)
	FindByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Order, error)
	FindAllByDateDesc(ctx context.Context) ([]*model.Order, error)
	SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, accountID uint) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) Save(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Save(order).Error
}

func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := tx.WithContext(ctx).Delete(&model.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) SetStatus(ctx context.Context, tx *gorm.DB, id uint, status model.OrderStatus) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindPendingByAccount returns gorm.ErrRecordNotFound when the account has no open order.
func (r *orderRepoImpl) FindPendingByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, model.OrderStatusPending).
		Order("id").
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context) ([]*model.Order, error) {
	return r.findWhere(ctx, "id", "1 = 1")
}

func (r *orderRepoImpl) FindByAccount(ctx context.Context, accountID uint) ([]*model.Order, error) {
	return r.findWhere(ctx, "id", "account_id = ?", accountID)
}

func (r *orderRepoImpl) FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	return r.findWhere(ctx, "id", "status = ?", status)
}

func (r *orderRepoImpl) FindByAccountAndStatus(ctx context.Context, accountID uint, status model.OrderStatus) ([]*model.Order, error) {
	return r.findWhere(ctx, "id", "account_id = ? AND status = ?", accountID, status)
}

func (r *orderRepoImpl) FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.Order, error) {
	return r.findWhere(ctx, "order_date", "order_date BETWEEN ? AND ?", start.UTC(), end.UTC())
}

func (r *orderRepoImpl) FindByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Order, error) {
	return r.findWhere(ctx, "id", "total_amount BETWEEN ? AND ?", min, max)
}

func (r *orderRepoImpl) FindAllByDateDesc(ctx context.Context) ([]*model.Order, error) {
	return r.findWhere(ctx, "order_date DESC, id DESC", "1 = 1")
}

func (r *orderRepoImpl) findWhere(ctx context.Context, orderBy string, query string, args ...any) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order(orderBy).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(total_amount)").
		Where("status = ?", status).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *orderRepoImpl) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("account_id = ?", accountID).
		Count(&count).Error

	return count, err
}
