package service

import (
	"context"
	"fmt"
	"strings"

	"orchid-shop/internal/auth"
	"orchid-shop/internal/config"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"go.uber.org/zap"
)

type AccountService interface {
	List(ctx context.Context) ([]*model.Account, error)
	Get(ctx context.Context, id uint) (*model.Account, error)
	GetByName(ctx context.Context, accountName string) (*model.Account, error)
	ChangeRole(ctx context.Context, id, roleID uint) (*model.Account, error)
	// EnsureAdmin creates the configured administrator if it does not exist yet.
	EnsureAdmin(ctx context.Context, admin config.Admin) error
}

type accountServiceImpl struct {
	accountRepo repository.AccountRepository
	roleRepo    repository.RoleRepository
	log         *zap.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, roleRepo repository.RoleRepository, log *zap.Logger) AccountService {
	return &accountServiceImpl{
		accountRepo: accountRepo,
		roleRepo:    roleRepo,
		log:         log,
	}
}

func (s *accountServiceImpl) List(ctx context.Context) ([]*model.Account, error) {
	return s.accountRepo.FindAll(ctx)
}

func (s *accountServiceImpl) Get(ctx context.Context, id uint) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Account", id)
	}
	return account, nil
}

func (s *accountServiceImpl) GetByName(ctx context.Context, accountName string) (*model.Account, error) {
	account, err := s.accountRepo.FindByAccountName(ctx, accountName)
	if err != nil {
		return nil, lookupByNameErr(err, "Account", accountName)
	}
	return account, nil
}

func (s *accountServiceImpl) ChangeRole(ctx context.Context, id, roleID uint) (*model.Account, error) {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return nil, lookupErr(err, "Role", roleID)
	}
	if err := s.accountRepo.UpdateRole(ctx, id, roleID); err != nil {
		return nil, lookupErr(err, "Account", id)
	}

	s.log.Info("account role changed", zap.Uint("account_id", id), zap.Uint("role_id", roleID))
	return s.Get(ctx, id)
}

func (s *accountServiceImpl) EnsureAdmin(ctx context.Context, admin config.Admin) error {
	name := strings.TrimSpace(admin.AccountName)
	if name == "" || admin.Password == "" {
		return nil
	}

	role, err := s.roleRepo.FindByName(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}
	hashed, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	email := admin.Email
	if email == "" {
		email = name + "@localhost"
	}
	err = s.accountRepo.CreateIfAbsent(ctx, &model.Account{
		AccountName: name,
		Email:       email,
		Password:    hashed,
		RoleID:      role.ID,
	})
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	return nil
}
