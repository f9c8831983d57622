package persistence

import (
	"context"
	"fmt"

	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
)

// Manager opens sessions over a database handle.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Begin starts a transaction and returns its session. The caller must end it
// with Commit or Rollback.
func (m *Manager) Begin(ctx context.Context) (*Session, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction", tx.Error)
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	s := newSession(tx)
	s.log.Debug("Transaction started")
	return s, nil
}

// WithinTx runs fn in a new session. The session is committed when fn returns
// nil and rolled back when it returns an error or panics.
func (m *Manager) WithinTx(ctx context.Context, fn func(s *Session) error) error {
	s, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = s.Rollback()
			logger.Error("Panic inside transaction, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"session_id": s.ID(),
			})
			panic(r)
		}
	}()

	if err := fn(s); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", rbErr, map[string]interface{}{
				"session_id": s.ID(),
			})
		}
		return err
	}
	return s.Commit(ctx)
}
