package repository

import (
	"context"

	"orchid-shop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	// CreateIfAbsent skips the insert when the name or email is taken.
	CreateIfAbsent(ctx context.Context, account *model.Account) error
	FindAll(ctx context.Context) ([]*model.Account, error)
	FindByID(ctx context.Context, id uint) (*model.Account, error)
	FindByAccountName(ctx context.Context, accountName string) (*model.Account, error)
	ExistsByAccountName(ctx context.Context, accountName string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id, roleID uint) error
	CountByRole(ctx context.Context, roleID uint) (int64, error)
}

type accountRepoImpl struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepoImpl{
		db: db,
	}
}

func (r *accountRepoImpl) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepoImpl) CreateIfAbsent(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(account).Error
}

func (r *accountRepoImpl) FindAll(ctx context.Context) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).Order("id").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountRepoImpl) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepoImpl) FindByAccountName(ctx context.Context, accountName string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("account_name = ?", accountName).
		First(&account).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepoImpl) ExistsByAccountName(ctx context.Context, accountName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_name = ?", accountName).
		Count(&count).Error

	return count > 0, err
}

func (r *accountRepoImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("email = ?", email).
		Count(&count).Error

	return count > 0, err
}

func (r *accountRepoImpl) UpdateRole(ctx context.Context, id, roleID uint) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("role_id", roleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepoImpl) CountByRole(ctx context.Context, roleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("role_id = ?", roleID).
		Count(&count).Error

	return count, err
}
