package persistence

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrSessionClosed       = errors.New("persistence session is closed")
	ErrRollbackOnly        = errors.New("transaction is marked rollback-only")
	ErrLazyInitialization  = errors.New("could not initialize lazy reference: no open session")
	ErrEntityNotFound      = errors.New("referenced entity not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTransientReference  = errors.New("reference to an unsaved entity")
)

// classify tags storage errors that come from integrity constraints.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrConstraintViolation) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) || isConstraintMessage(err.Error()) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}

func isConstraintMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "violates not-null")
}
