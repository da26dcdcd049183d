package repository

import (
	"context"

	"orchid-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderDetailRepository interface {
	Create(ctx context.Context, tx *gorm.DB, detail *model.OrderDetail) error
	DeleteByOrder(ctx context.Context, tx *gorm.DB, orderID uint) error

	FindAll(ctx context.Context) ([]*model.OrderDetail, error)
	FindByID(ctx context.Context, id uint) (*model.OrderDetail, error)
	FindByOrder(ctx context.Context, orderID uint) ([]*model.OrderDetail, error)
	FindByOrchid(ctx context.Context, orchidID uint) ([]*model.OrderDetail, error)
	FindByOrderAndOrchid(ctx context.Context, orderID, orchidID uint) ([]*model.OrderDetail, error)
	FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.OrderDetail, error)
	FindByMinQuantity(ctx context.Context, quantity int) ([]*model.OrderDetail, error)
	CountByOrchid(ctx context.Context, orchidID uint) (int64, error)
	SumQuantityByOrchid(ctx context.Context, orchidID uint) (int64, error)
	SumAmountByOrder(ctx context.Context, orderID uint) (decimal.Decimal, error)
}

type orderDetailRepoImpl struct {
	db *gorm.DB
}

func NewOrderDetailRepository(db *gorm.DB) OrderDetailRepository {
	return &orderDetailRepoImpl{
		db: db,
	}
}

func (r *orderDetailRepoImpl) Create(ctx context.Context, tx *gorm.DB, detail *model.OrderDetail) error {
	return tx.WithContext(ctx).Create(detail).Error
}

func (r *orderDetailRepoImpl) DeleteByOrder(ctx context.Context, tx *gorm.DB, orderID uint) error {
	return tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.OrderDetail{}).Error
}

func (r *orderDetailRepoImpl) FindAll(ctx context.Context) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "1 = 1")
}

func (r *orderDetailRepoImpl) FindByID(ctx context.Context, id uint) (*model.OrderDetail, error) {
	var detail model.OrderDetail
	err := r.db.WithContext(ctx).First(&detail, id).Error
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (r *orderDetailRepoImpl) FindByOrder(ctx context.Context, orderID uint) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "order_id = ?", orderID)
}

func (r *orderDetailRepoImpl) FindByOrchid(ctx context.Context, orchidID uint) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "orchid_id = ?", orchidID)
}

func (r *orderDetailRepoImpl) FindByOrderAndOrchid(ctx context.Context, orderID, orchidID uint) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "order_id = ? AND orchid_id = ?", orderID, orchidID)
}

func (r *orderDetailRepoImpl) FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "price BETWEEN ? AND ?", min, max)
}

func (r *orderDetailRepoImpl) FindByMinQuantity(ctx context.Context, quantity int) ([]*model.OrderDetail, error) {
	return r.findWhere(ctx, "quantity >= ?", quantity)
}

func (r *orderDetailRepoImpl) findWhere(ctx context.Context, query string, args ...any) ([]*model.OrderDetail, error) {
	var details []*model.OrderDetail
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("id").
		Find(&details).Error
	if err != nil {
		return nil, err
	}

	return details, nil
}

func (r *orderDetailRepoImpl) CountByOrchid(ctx context.Context, orchidID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Where("orchid_id = ?", orchidID).
		Count(&count).Error

	return count, err
}

func (r *orderDetailRepoImpl) SumQuantityByOrchid(ctx context.Context, orchidID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("orchid_id = ?", orchidID).
		Row().Scan(&total)

	return total, err
}

func (r *orderDetailRepoImpl) SumAmountByOrder(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Select("SUM(price * quantity)").
		Where("order_id = ?", orderID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
