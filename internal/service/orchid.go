package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrchidService interface {
	SeedCatalog(ctx context.Context) error
	List(ctx context.Context) ([]*model.Orchid, error)
	Get(ctx context.Context, id uint) (*model.Orchid, error)
	GetByName(ctx context.Context, name string) (*model.Orchid, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]*model.Orchid, error)
	ListByNatural(ctx context.Context, isNatural bool) ([]*model.Orchid, error)
	ListByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Orchid, error)
	SearchByName(ctx context.Context, fragment string) ([]*model.Orchid, error)
	SearchByDescription(ctx context.Context, fragment string) ([]*model.Orchid, error)
	ListSortedByPrice(ctx context.Context, ascending bool) ([]*model.Orchid, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, req dto.OrchidRequest) (*model.Orchid, error)
	Update(ctx context.Context, id uint, req dto.OrchidRequest) (*model.Orchid, error)
	Delete(ctx context.Context, id uint) error
}

type orchidServiceImpl struct {
	orchidRepo   repository.OrchidRepository
	categoryRepo repository.CategoryRepository
	detailRepo   repository.OrderDetailRepository
}

func NewOrchidService(
	orchidRepo repository.OrchidRepository,
	categoryRepo repository.CategoryRepository,
	detailRepo repository.OrderDetailRepository,
) OrchidService {
	return &orchidServiceImpl{
		orchidRepo:   orchidRepo,
		categoryRepo: categoryRepo,
		detailRepo:   detailRepo,
	}
}

func (s *orchidServiceImpl) SeedCatalog(ctx context.Context) error {
	if err := s.orchidRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (s *orchidServiceImpl) List(ctx context.Context) ([]*model.Orchid, error) {
	return s.orchidRepo.FindAll(ctx)
}

func (s *orchidServiceImpl) Get(ctx context.Context, id uint) (*model.Orchid, error) {
	orchid, err := s.orchidRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Orchid", id)
	}
	return orchid, nil
}

func (s *orchidServiceImpl) GetByName(ctx context.Context, name string) (*model.Orchid, error) {
	orchid, err := s.orchidRepo.FindByName(ctx, name)
	if err != nil {
		return nil, lookupByNameErr(err, "Orchid", name)
	}
	return orchid, nil
}

func (s *orchidServiceImpl) ListByCategory(ctx context.Context, categoryID uint) ([]*model.Orchid, error) {
	return s.orchidRepo.FindByCategory(ctx, categoryID)
}

func (s *orchidServiceImpl) ListByNatural(ctx context.Context, isNatural bool) ([]*model.Orchid, error) {
	return s.orchidRepo.FindByNatural(ctx, isNatural)
}

func (s *orchidServiceImpl) ListByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Orchid, error) {
	if err := checkRange(min, max, "price"); err != nil {
		return nil, err
	}
	return s.orchidRepo.FindByPriceRange(ctx, min, max)
}

func (s *orchidServiceImpl) SearchByName(ctx context.Context, fragment string) ([]*model.Orchid, error) {
	return s.orchidRepo.SearchByName(ctx, fragment)
}

func (s *orchidServiceImpl) SearchByDescription(ctx context.Context, fragment string) ([]*model.Orchid, error) {
	return s.orchidRepo.SearchByDescription(ctx, fragment)
}

func (s *orchidServiceImpl) ListSortedByPrice(ctx context.Context, ascending bool) ([]*model.Orchid, error) {
	return s.orchidRepo.FindAllSortedByPrice(ctx, ascending)
}

func (s *orchidServiceImpl) Exists(ctx context.Context, name string) (bool, error) {
	return s.orchidRepo.ExistsByName(ctx, name)
}

func (s *orchidServiceImpl) validate(ctx context.Context, req *dto.OrchidRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.InvalidArgument("Orchid name is required")
	}
	if !req.Price.IsPositive() {
		return apperr.InvalidArgument("Price must be greater than 0")
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return lookupErr(err, "Category", req.CategoryID)
	}
	return nil
}

func (s *orchidServiceImpl) Create(ctx context.Context, req dto.OrchidRequest) (*model.Orchid, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	exists, err := s.orchidRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("check orchid name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Orchid name already exists")
	}

	orchid := &model.Orchid{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Price:       req.Price,
		IsNatural:   req.IsNatural,
		CategoryID:  req.CategoryID,
	}
	if err := s.orchidRepo.Create(ctx, orchid); err != nil {
		return nil, writeErr(err, "Orchid name already exists")
	}
	return orchid, nil
}

func (s *orchidServiceImpl) Update(ctx context.Context, id uint, req dto.OrchidRequest) (*model.Orchid, error) {
	orchid, err := s.orchidRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Orchid", id)
	}
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	if req.Name != orchid.Name {
		other, err := s.orchidRepo.FindByName(ctx, req.Name)
		switch {
		case err == nil && other.ID != orchid.ID:
			return nil, apperr.Conflict("Orchid name already exists")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("check orchid name: %w", err)
		}
	}

	orchid.Name = req.Name
	orchid.Description = req.Description
	orchid.URL = req.URL
	orchid.Price = req.Price
	orchid.IsNatural = req.IsNatural
	orchid.CategoryID = req.CategoryID
	if err := s.orchidRepo.Update(ctx, orchid); err != nil {
		return nil, writeErr(err, "Orchid name already exists")
	}
	return orchid, nil
}

// Delete refuses orchids that order lines still reference.
func (s *orchidServiceImpl) Delete(ctx context.Context, id uint) error {
	if _, err := s.orchidRepo.FindByID(ctx, id); err != nil {
		return lookupErr(err, "Orchid", id)
	}

	inUse, err := s.detailRepo.CountByOrchid(ctx, id)
	if err != nil {
		return fmt.Errorf("count order lines for orchid %d: %w", id, err)
	}
	if inUse > 0 {
		return apperr.Conflict("Orchid is referenced by %d order line(s)", inUse)
	}

	if err := s.orchidRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Orchid", id)
	}
	return nil
}
