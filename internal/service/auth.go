package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/auth"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const invalidCredentials = "Invalid credentials"

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.Account, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	accountRepo repository.AccountRepository
	roleRepo    repository.RoleRepository
	tokens      *auth.TokenIssuer
	log         *zap.Logger
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	roleRepo repository.RoleRepository,
	tokens *auth.TokenIssuer,
	log *zap.Logger,
) AuthService {
	return &authServiceImpl{
		accountRepo: accountRepo,
		roleRepo:    roleRepo,
		tokens:      tokens,
		log:         log,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*model.Account, error) {
	name := strings.TrimSpace(req.AccountName)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperr.InvalidArgument("Account name, email and password are required")
	}

	taken, err := s.accountRepo.ExistsByAccountName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check account name: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("Account name already exists")
	}
	taken, err = s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("Email already exists")
	}

	role, err := s.roleRepo.FindByName(ctx, model.RoleUser)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "default role %s is not configured", model.RoleUser)
	}

	hashed, err := auth.HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.InvalidArgument("Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		AccountName: name,
		Email:       email,
		Password:    hashed,
		RoleID:      role.ID,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, writeErr(err, "Account name or email already exists")
	}

	s.log.Info("account registered", zap.Uint("account_id", account.ID), zap.String("account_name", name))
	return account, nil
}

// Login answers every failure with the same message so callers cannot probe
// which account names exist.
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.accountRepo.FindByAccountName(ctx, strings.TrimSpace(req.AccountName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !auth.CheckPassword(account.Password, req.Password) {
		s.log.Info("login rejected", zap.Uint("account_id", account.ID))
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	role, err := s.roleRepo.FindByID(ctx, account.RoleID)
	if err != nil {
		return nil, fmt.Errorf("load role %d: %w", account.RoleID, err)
	}

	token, _, err := s.tokens.Issue(account.AccountName, role.Name, account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		Message:   "Login successful",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}
