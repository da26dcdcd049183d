package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"gorm.io/gorm"
)

type CategoryService interface {
	List(ctx context.Context) ([]*model.Category, error)
	Get(ctx context.Context, id uint) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	Search(ctx context.Context, fragment string) ([]*model.Category, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id uint, name string) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryServiceImpl struct {
	categoryRepo repository.CategoryRepository
	orchidRepo   repository.OrchidRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository, orchidRepo repository.OrchidRepository) CategoryService {
	return &categoryServiceImpl{
		categoryRepo: categoryRepo,
		orchidRepo:   orchidRepo,
	}
}

func (s *categoryServiceImpl) List(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *categoryServiceImpl) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Category", id)
	}
	return category, nil
}

func (s *categoryServiceImpl) GetByName(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return nil, lookupByNameErr(err, "Category", name)
	}
	return category, nil
}

func (s *categoryServiceImpl) Search(ctx context.Context, fragment string) ([]*model.Category, error) {
	return s.categoryRepo.SearchByName(ctx, fragment)
}

func (s *categoryServiceImpl) Exists(ctx context.Context, name string) (bool, error) {
	return s.categoryRepo.ExistsByName(ctx, name)
}

func (s *categoryServiceImpl) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("Category name is required")
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Category name already exists")
	}

	category := &model.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, writeErr(err, "Category name already exists")
	}
	return category, nil
}

func (s *categoryServiceImpl) Update(ctx context.Context, id uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("Category name is required")
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Category", id)
	}

	if name != category.Name {
		other, err := s.categoryRepo.FindByName(ctx, name)
		switch {
		case err == nil && other.ID != category.ID:
			return nil, apperr.Conflict("Category name already exists")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("check category name: %w", err)
		}
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, writeErr(err, "Category name already exists")
	}
	return category, nil
}

func (s *categoryServiceImpl) Delete(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return lookupErr(err, "Category", id)
	}

	inUse, err := s.orchidRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count orchids for category %d: %w", id, err)
	}
	if inUse > 0 {
		return apperr.Conflict("Category still has %d orchid(s)", inUse)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Category", id)
	}
	return nil
}
