package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type ChangeKind string // 변경 유형

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one statement issued against storage by the session.
type Change struct {
	Kind  ChangeKind
	Table string
	ID    uint
}

type entry struct {
	key      entityKey
	entity   Entity
	schema   *schema.Schema
	snapshot snapshot
	children []entityKey // owned child identities as of the last load or flush
	removed  bool        // scheduled for deletion at flush
	gone     bool        // no longer tracked
}

// Session is the persistence context of one database transaction: an identity
// map of managed entities with column snapshots for dirty checking.
// A Session must not be shared between goroutines.
type Session struct {
	id      string
	tx      *gorm.DB
	log     *logger.Logger
	entries map[entityKey]*entry
	order   []*entry
	schemas map[reflect.Type]*schema.Schema
	changes []Change
	epoch   uint64
	closed  bool
	failure error
}

func newSession(tx *gorm.DB) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		tx:      tx,
		log:     logger.WithContext(map[string]interface{}{"session_id": id}),
		entries: make(map[entityKey]*entry),
		schemas: make(map[reflect.Type]*schema.Schema),
	}
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Closed reports whether the transaction was committed or rolled back.
func (s *Session) Closed() bool {
	return s.closed
}

// RollbackOnly reports whether a write failed and the transaction can no longer commit.
func (s *Session) RollbackOnly() bool {
	return s.failure != nil
}

// Changes returns the statements issued so far, in order.
func (s *Session) Changes() []Change {
	out := make([]Change, len(s.changes))
	copy(out, s.changes)
	return out
}

func (s *Session) db(ctx context.Context) *gorm.DB {
	return s.tx.WithContext(ctx)
}

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// fail marks the session rollback-only.
func (s *Session) fail(err error) error {
	if s.failure == nil {
		s.failure = err
	}
	return err
}

// Persist makes e managed. A new entity (zero ID) is inserted right away so it
// gets its identity, together with the owned children it holds at that point.
// A detached entity is re-attached and its differences are written at flush.
// If another instance with the same identity is already managed, e's column
// values and owned collection are merged into it and the managed instance is
// returned.
func (s *Session) Persist(ctx context.Context, e Entity) (Entity, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if isNil(e) {
		return nil, errors.New("persistence: cannot persist a nil entity")
	}

	if e.GetID() == 0 {
		if err := s.insert(ctx, e); err != nil {
			return nil, s.fail(err)
		}
		return e, nil
	}

	if ent, ok := s.entries[keyOf(e)]; ok {
		ent.removed = false
		if ent.entity == e {
			return e, nil
		}
		if err := mergeColumns(ctx, ent.schema, ent.entity, e); err != nil {
			return nil, fmt.Errorf("merge %s: %w", ent.key, err)
		}
		// The detached collection replaces the managed one; the next flush
		// inserts its new members and deletes the ones it no longer holds.
		if agg, ok := ent.entity.(Aggregate); ok {
			if src, ok := e.(Aggregate); ok {
				agg.Replace(src.Children())
			}
		}
		s.log.Debug("Merged detached entity into managed instance", map[string]interface{}{
			"entity": ent.key.String(),
		})
		return ent.entity, nil
	}

	found, err := s.attach(ctx, e)
	if err != nil {
		return nil, s.fail(err)
	}
	if !found {
		if err := s.insert(ctx, e); err != nil {
			return nil, s.fail(err)
		}
	}
	return e, nil
}

// Remove schedules e and its owned children for deletion at the next flush.
func (s *Session) Remove(ctx context.Context, e Entity) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if isNil(e) || e.GetID() == 0 {
		return nil
	}

	ent, ok := s.entries[keyOf(e)]
	if !ok {
		found, err := s.attach(ctx, e)
		if err != nil {
			return s.fail(err)
		}
		if !found {
			return nil
		}
		ent = s.entries[keyOf(e)]
	}

	s.markRemoved(ent)
	s.log.Debug("Entity scheduled for deletion", map[string]interface{}{
		"entity": ent.key.String(),
	})
	return nil
}

func (s *Session) markRemoved(ent *entry) {
	ent.removed = true
	agg, ok := ent.entity.(Aggregate)
	if !ok {
		return
	}
	for _, k := range s.childKeys(ent, agg) {
		if child, ok := s.entries[k]; ok && !child.removed {
			s.markRemoved(child)
		}
	}
}

// Contains reports whether e is the managed instance for its identity.
func (s *Session) Contains(e Entity) bool {
	if isNil(e) {
		return false
	}
	ent, ok := s.entries[keyOf(e)]
	return ok && ent.entity == e && !ent.removed
}

// Detach stops tracking e. Pending changes to it are not flushed.
func (s *Session) Detach(e Entity) {
	if isNil(e) {
		return
	}
	if ent, ok := s.entries[keyOf(e)]; ok && ent.entity == e {
		ent.gone = true
		delete(s.entries, ent.key)
		s.compact()
	}
}

// Clear detaches every managed entity. References that were not resolved
// before the call can no longer be resolved.
func (s *Session) Clear() {
	detached := len(s.entries)
	s.entries = make(map[entityKey]*entry)
	s.order = nil
	s.epoch++
	s.log.Debug("Persistence context cleared", map[string]interface{}{
		"detached": detached,
	})
}

// Flush writes pending inserts, updates and deletes without ending the
// transaction. A failure marks the session rollback-only.
func (s *Session) Flush(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.flush(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// Commit flushes and commits the transaction. A rollback-only session is
// rolled back instead and the original failure is returned.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.failure != nil {
		_ = s.Rollback()
		return fmt.Errorf("%w: %w", ErrRollbackOnly, s.failure)
	}
	if err := s.flush(ctx); err != nil {
		s.fail(err)
		if rbErr := s.Rollback(); rbErr != nil {
			s.log.Error("Failed to roll back after flush error", rbErr)
		}
		return err
	}
	if err := s.tx.Commit().Error; err != nil {
		s.close()
		s.log.Error("Failed to commit transaction", err)
		return classify(err)
	}
	s.close()
	s.log.Debug("Transaction committed", map[string]interface{}{
		"statements": len(s.changes),
	})
	return nil
}

// Rollback aborts the transaction. It is a no-op on a closed session.
func (s *Session) Rollback() error {
	if s.closed {
		return nil
	}
	err := s.tx.Rollback().Error
	s.close()
	s.log.Debug("Transaction rolled back")
	return err
}

func (s *Session) close() {
	s.closed = true
	s.entries = make(map[entityKey]*entry)
	s.order = nil
	s.epoch++
}

// Find returns the managed instance of E with the given id, loading it when
// it is not in the session yet. Absence is reported by false, not an error.
func Find[E Entity](ctx context.Context, s *Session, id uint) (E, bool, error) {
	var zero E
	if err := s.checkOpen(); err != nil {
		return zero, false, err
	}
	if id == 0 {
		return zero, false, nil
	}

	fresh := newEntity[E]()
	k := entityKey{table: fresh.TableName(), id: id}
	if ent, ok := s.entries[k]; ok {
		if ent.removed {
			return zero, false, nil
		}
		managed, ok := ent.entity.(E)
		if !ok {
			return zero, false, fmt.Errorf("persistence: %s is managed as %T", k, ent.entity)
		}
		return managed, true, nil
	}

	if err := s.db(ctx).First(fresh, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("find %s: %w", k, err)
	}
	if err := s.load(ctx, fresh); err != nil {
		return zero, false, err
	}
	return fresh, true, nil
}

// Query loads every E matched by the scopes. Rows already in the session are
// returned as their managed instance; rows scheduled for deletion are skipped.
func Query[E Entity](ctx context.Context, s *Session, scopes ...func(*gorm.DB) *gorm.DB) ([]E, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var rows []E
	if err := s.db(ctx).Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %T: %w", rows, err)
	}

	result := make([]E, 0, len(rows))
	for _, row := range rows {
		if ent, ok := s.entries[keyOf(row)]; ok {
			if ent.removed {
				continue
			}
			if managed, ok := ent.entity.(E); ok {
				result = append(result, managed)
				continue
			}
		}
		if err := s.load(ctx, row); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// load registers a freshly read row and lets it bind its associations.
func (s *Session) load(ctx context.Context, e Entity) error {
	ent, err := s.register(ctx, e, e)
	if err != nil {
		return err
	}
	if l, ok := e.(Loader); ok {
		if err := l.OnLoad(ctx, s); err != nil {
			return fmt.Errorf("load %s: %w", ent.key, err)
		}
	}
	if agg, ok := e.(Aggregate); ok {
		ent.children = presentKeys(agg.Children())
	}
	return nil
}

func (s *Session) register(ctx context.Context, e, source Entity) (*entry, error) {
	sch, err := s.schemaOf(e)
	if err != nil {
		return nil, fmt.Errorf("parse schema of %T: %w", e, err)
	}
	ent := &entry{
		key:      keyOf(e),
		entity:   e,
		schema:   sch,
		snapshot: capture(ctx, sch, source),
	}
	s.entries[ent.key] = ent
	s.order = append(s.order, ent)
	return ent, nil
}

// attach registers a detached entity using its stored row as the snapshot.
// It reports false when no row with e's identity exists.
func (s *Session) attach(ctx context.Context, e Entity) (bool, error) {
	stored := newLike(e)
	if err := s.db(ctx).First(stored, e.GetID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("attach %s: %w", keyOf(e), err)
	}

	ent, err := s.register(ctx, e, stored)
	if err != nil {
		return false, err
	}

	if agg, ok := e.(Aggregate); ok {
		table, fk := agg.ChildTable()
		var ids []uint
		if err := s.db(ctx).Table(table).
			Where(clause.Eq{Column: clause.Column{Name: fk}, Value: e.GetID()}).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return false, fmt.Errorf("attach %s children: %w", ent.key, err)
		}
		for _, id := range ids {
			ent.children = append(ent.children, entityKey{table: table, id: id})
		}
	}

	s.log.Debug("Detached entity attached", map[string]interface{}{
		"entity":   ent.key.String(),
		"children": len(ent.children),
	})
	return true, nil
}

func (s *Session) compact() {
	kept := s.order[:0]
	for _, ent := range s.order {
		if !ent.gone {
			kept = append(kept, ent)
		}
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept
}

func presentKeys(children []Entity) []entityKey {
	keys := make([]entityKey, 0, len(children))
	for _, c := range children {
		if !isNil(c) && c.GetID() != 0 {
			keys = append(keys, keyOf(c))
		}
	}
	return keys
}
