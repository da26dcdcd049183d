package service

import (
	"errors"
	"fmt"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Caller is the authenticated principal a request runs as.
type Caller struct {
	AccountID   uint
	AccountName string
	Role        string
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// lookupErr turns a missing row into NotFound and wraps anything else.
func lookupErr(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found with id: %v", entity, key)
	}
	return fmt.Errorf("load %s %v: %w", entity, key, err)
}

func lookupByNameErr(err error, entity, name string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found with name: %s", entity, name)
	}
	return fmt.Errorf("load %s %q: %w", entity, name, err)
}

// writeErr maps a unique-index violation to Conflict.
func writeErr(err error, conflictMsg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, err, "%s", conflictMsg)
	}
	return err
}

func checkRange(min, max decimal.Decimal, what string) error {
	if min.IsNegative() || max.IsNegative() {
		return apperr.InvalidArgument("%s must not be negative", what)
	}
	if min.GreaterThan(max) {
		return apperr.InvalidArgument("minimum %s must not exceed maximum %s", what, what)
	}
	return nil
}
