// Package repository is the persistence gateway: typed CRUD over the document store.
// Every method returns errors from internal/errors: ErrNotFound for missing records,
// ErrConflict for unique violations and ErrPersistence for anything else.
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
)

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrPersistence, err)
	}
}
