package service

import (
	"context"
	"fmt"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderDetailService is read-only; lines are written through OrderService so
// order totals stay in step with their details.
type OrderDetailService interface {
	ListAll(ctx context.Context) ([]*dto.OrderDetailResponse, error)
	Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error)
	ListByOrder(ctx context.Context, caller Caller, orderID uint) ([]*dto.OrderDetailResponse, error)
	ListByOrchid(ctx context.Context, orchidID uint) ([]*dto.OrderDetailResponse, error)
	GetByOrderAndOrchid(ctx context.Context, orderID, orchidID uint) (*dto.OrderDetailResponse, error)
	ListByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*dto.OrderDetailResponse, error)
	ListByMinQuantity(ctx context.Context, quantity int) ([]*dto.OrderDetailResponse, error)
	TotalQuantityByOrchid(ctx context.Context, orchidID uint) (int64, error)
	TotalAmountByOrder(ctx context.Context, caller Caller, orderID uint) (decimal.Decimal, error)
}

type orderDetailServiceImpl struct {
	detailRepo repository.OrderDetailRepository
	orderRepo  repository.OrderRepository
	orchidRepo repository.OrchidRepository
}

func NewOrderDetailService(
	detailRepo repository.OrderDetailRepository,
	orderRepo repository.OrderRepository,
	orchidRepo repository.OrchidRepository,
) OrderDetailService {
	return &orderDetailServiceImpl{
		detailRepo: detailRepo,
		orderRepo:  orderRepo,
		orchidRepo: orchidRepo,
	}
}

// withOrchids attaches orchid name and image to each line.
func (s *orderDetailServiceImpl) withOrchids(ctx context.Context, details []*model.OrderDetail) ([]*dto.OrderDetailResponse, error) {
	ids := make([]uint, 0, len(details))
	seen := make(map[uint]bool, len(details))
	for _, d := range details {
		if !seen[d.OrchidID] {
			seen[d.OrchidID] = true
			ids = append(ids, d.OrchidID)
		}
	}

	orchids, err := s.orchidRepo.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load orchids for details: %w", err)
	}
	byID := make(map[uint]*model.Orchid, len(orchids))
	for _, o := range orchids {
		byID[o.ID] = o
	}

	out := make([]*dto.OrderDetailResponse, len(details))
	for i, d := range details {
		resp := &dto.OrderDetailResponse{
			ID:       d.ID,
			OrderID:  d.OrderID,
			OrchidID: d.OrchidID,
			Price:    d.Price,
			Quantity: d.Quantity,
		}
		if o, ok := byID[d.OrchidID]; ok {
			resp.OrchidName = o.Name
			resp.OrchidURL = o.URL
		}
		out[i] = resp
	}
	return out, nil
}

func (s *orderDetailServiceImpl) checkOrderAccess(ctx context.Context, caller Caller, orderID uint) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return lookupErr(err, "Order", orderID)
	}
	if !caller.IsAdmin() && order.AccountID != caller.AccountID {
		return apperr.PermissionDenied("You do not have permission to view this order")
	}
	return nil
}

func (s *orderDetailServiceImpl) ListAll(ctx context.Context) ([]*dto.OrderDetailResponse, error) {
	details, err := s.detailRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withOrchids(ctx, details)
}

func (s *orderDetailServiceImpl) Get(ctx context.Context, id uint) (*dto.OrderDetailResponse, error) {
	detail, err := s.detailRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Order detail", id)
	}
	out, err := s.withOrchids(ctx, []*model.OrderDetail{detail})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *orderDetailServiceImpl) ListByOrder(ctx context.Context, caller Caller, orderID uint) ([]*dto.OrderDetailResponse, error) {
	if err := s.checkOrderAccess(ctx, caller, orderID); err != nil {
		return nil, err
	}
	details, err := s.detailRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.withOrchids(ctx, details)
}

func (s *orderDetailServiceImpl) ListByOrchid(ctx context.Context, orchidID uint) ([]*dto.OrderDetailResponse, error) {
	details, err := s.detailRepo.FindByOrchid(ctx, orchidID)
	if err != nil {
		return nil, err
	}
	return s.withOrchids(ctx, details)
}

// GetByOrderAndOrchid returns the earliest matching line, since repeated adds
// of one orchid produce several.
func (s *orderDetailServiceImpl) GetByOrderAndOrchid(ctx context.Context, orderID, orchidID uint) (*dto.OrderDetailResponse, error) {
	details, err := s.detailRepo.FindByOrderAndOrchid(ctx, orderID, orchidID)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apperr.NotFound("Order detail not found for order %d and orchid %d", orderID, orchidID)
	}
	out, err := s.withOrchids(ctx, details[:1])
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *orderDetailServiceImpl) ListByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*dto.OrderDetailResponse, error) {
	if err := checkRange(min, max, "price"); err != nil {
		return nil, err
	}
	details, err := s.detailRepo.FindByPriceRange(ctx, min, max)
	if err != nil {
		return nil, err
	}
	return s.withOrchids(ctx, details)
}

func (s *orderDetailServiceImpl) ListByMinQuantity(ctx context.Context, quantity int) ([]*dto.OrderDetailResponse, error) {
	if quantity < 0 {
		return nil, apperr.InvalidArgument("Quantity must not be negative")
	}
	details, err := s.detailRepo.FindByMinQuantity(ctx, quantity)
	if err != nil {
		return nil, err
	}
	return s.withOrchids(ctx, details)
}

func (s *orderDetailServiceImpl) TotalQuantityByOrchid(ctx context.Context, orchidID uint) (int64, error) {
	return s.detailRepo.SumQuantityByOrchid(ctx, orchidID)
}

func (s *orderDetailServiceImpl) TotalAmountByOrder(ctx context.Context, caller Caller, orderID uint) (decimal.Decimal, error) {
	if err := s.checkOrderAccess(ctx, caller, orderID); err != nil {
		return decimal.Zero, err
	}
	return s.detailRepo.SumAmountByOrder(ctx, orderID)
}
