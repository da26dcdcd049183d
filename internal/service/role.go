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

type RoleService interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Role, error)
	Get(ctx context.Context, id uint) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	Search(ctx context.Context, fragment string) ([]*model.Role, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (*model.Role, error)
	Update(ctx context.Context, id uint, name string) (*model.Role, error)
	Delete(ctx context.Context, id uint) error
}

type roleServiceImpl struct {
	roleRepo    repository.RoleRepository
	accountRepo repository.AccountRepository
}

func NewRoleService(roleRepo repository.RoleRepository, accountRepo repository.AccountRepository) RoleService {
	return &roleServiceImpl{
		roleRepo:    roleRepo,
		accountRepo: accountRepo,
	}
}

func (s *roleServiceImpl) Seed(ctx context.Context) error {
	if err := s.roleRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

func (s *roleServiceImpl) List(ctx context.Context) ([]*model.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *roleServiceImpl) Get(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Role", id)
	}
	return role, nil
}

func (s *roleServiceImpl) GetByName(ctx context.Context, name string) (*model.Role, error) {
	role, err := s.roleRepo.FindByName(ctx, name)
	if err != nil {
		return nil, lookupByNameErr(err, "Role", name)
	}
	return role, nil
}

func (s *roleServiceImpl) Search(ctx context.Context, fragment string) ([]*model.Role, error) {
	return s.roleRepo.SearchByName(ctx, fragment)
}

func (s *roleServiceImpl) Exists(ctx context.Context, name string) (bool, error) {
	return s.roleRepo.ExistsByName(ctx, name)
}

func (s *roleServiceImpl) Create(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("Role name is required")
	}

	exists, err := s.roleRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check role name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Role name already exists")
	}

	role := &model.Role{Name: name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, writeErr(err, "Role name already exists")
	}
	return role, nil
}

func (s *roleServiceImpl) Update(ctx context.Context, id uint, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("Role name is required")
	}

	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Role", id)
	}

	if name != role.Name {
		other, err := s.roleRepo.FindByName(ctx, name)
		switch {
		case err == nil && other.ID != role.ID:
			return nil, apperr.Conflict("Role name already exists")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("check role name: %w", err)
		}
	}

	role.Name = name
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, writeErr(err, "Role name already exists")
	}
	return role, nil
}

func (s *roleServiceImpl) Delete(ctx context.Context, id uint) error {
	if _, err := s.roleRepo.FindByID(ctx, id); err != nil {
		return lookupErr(err, "Role", id)
	}

	inUse, err := s.accountRepo.CountByRole(ctx, id)
	if err != nil {
		return fmt.Errorf("count accounts for role %d: %w", id, err)
	}
	if inUse > 0 {
		return apperr.Conflict("Role is assigned to %d account(s)", inUse)
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Role", id)
	}
	return nil
}
