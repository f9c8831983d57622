package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Session) flush(ctx context.Context) error {
	before := len(s.changes)

	// Owned collections first so new children are registered before dirty checks.
	for i := 0; i < len(s.order); i++ {
		ent := s.order[i]
		if ent.gone || ent.removed {
			continue
		}
		if _, ok := ent.entity.(Aggregate); ok {
			if err := s.reconcile(ctx, ent); err != nil {
				return err
			}
		}
	}

	for i := 0; i < len(s.order); i++ {
		ent := s.order[i]
		if ent.gone || ent.removed {
			continue
		}
		if err := s.update(ctx, ent); err != nil {
			return err
		}
	}

	for i := 0; i < len(s.order); i++ {
		ent := s.order[i]
		if ent.removed && !ent.gone {
			if err := s.deleteEntry(ctx, ent); err != nil {
				return err
			}
		}
	}

	s.compact()
	s.log.Debug("Persistence context flushed", map[string]interface{}{
		"statements": len(s.changes) - before,
		"managed":    len(s.entries),
	})
	return nil
}

func (s *Session) insert(ctx context.Context, e Entity) error {
	if err := link(e); err != nil {
		return err
	}
	if err := s.exec(ctx, ChangeInsert, e, func(db *gorm.DB) *gorm.DB {
		return db.Omit(clause.Associations).Create(e)
	}); err != nil {
		return err
	}

	ent, err := s.register(ctx, e, e)
	if err != nil {
		return err
	}
	if _, ok := e.(Aggregate); ok {
		return s.cascade(ctx, ent)
	}
	return nil
}

// cascade persists the current members of an aggregate's collection and
// records their identities as the new collection snapshot.
func (s *Session) cascade(ctx context.Context, ent *entry) error {
	agg := ent.entity.(Aggregate)
	children := agg.Children()
	swapped := false
	for i, child := range children {
		if isNil(child) {
			continue
		}
		switch {
		case child.GetID() == 0:
			agg.Adopt(child)
			if err := s.insert(ctx, child); err != nil {
				return err
			}
		case !s.Contains(child):
			agg.Adopt(child)
			managed, err := s.Persist(ctx, child)
			if err != nil {
				return err
			}
			if managed != child {
				children[i] = managed
				swapped = true
			}
		}
	}
	if swapped {
		agg.Replace(children)
	}
	ent.children = presentKeys(agg.Children())
	return nil
}

// reconcile applies the difference between an aggregate's collection snapshot
// and its current collection: new members are inserted, missing ones deleted.
func (s *Session) reconcile(ctx context.Context, ent *entry) error {
	previous := ent.children
	if err := s.cascade(ctx, ent); err != nil {
		return err
	}

	current := make(map[entityKey]struct{}, len(ent.children))
	for _, k := range ent.children {
		current[k] = struct{}{}
	}
	for _, k := range previous {
		if _, ok := current[k]; ok {
			continue
		}
		s.log.Debug("Removing orphaned child", map[string]interface{}{
			"owner": ent.key.String(),
			"child": k.String(),
		})
		if err := s.deleteKey(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) update(ctx context.Context, ent *entry) error {
	if err := link(ent.entity); err != nil {
		return err
	}
	changes := diff(ent.snapshot, capture(ctx, ent.schema, ent.entity))
	if len(changes) == 0 {
		return nil
	}
	if err := s.exec(ctx, ChangeUpdate, ent.entity, func(db *gorm.DB) *gorm.DB {
		return db.Model(ent.entity).Updates(changes)
	}); err != nil {
		return err
	}
	ent.snapshot = capture(ctx, ent.schema, ent.entity)
	return nil
}

// deleteEntry deletes a managed entity, owned children first.
func (s *Session) deleteEntry(ctx context.Context, ent *entry) error {
	if ent.gone {
		return nil
	}
	if agg, ok := ent.entity.(Aggregate); ok {
		for _, k := range s.childKeys(ent, agg) {
			if err := s.deleteKey(ctx, k); err != nil {
				return err
			}
		}
	}
	if err := s.execDelete(ctx, ent.key); err != nil {
		return err
	}
	ent.gone = true
	delete(s.entries, ent.key)
	return nil
}

func (s *Session) deleteKey(ctx context.Context, k entityKey) error {
	if ent, ok := s.entries[k]; ok {
		return s.deleteEntry(ctx, ent)
	}
	return s.execDelete(ctx, k)
}

// childKeys is the union of the collection snapshot and the persisted members
// currently in the collection.
func (s *Session) childKeys(ent *entry, agg Aggregate) []entityKey {
	seen := make(map[entityKey]struct{}, len(ent.children))
	keys := make([]entityKey, 0, len(ent.children))
	for _, k := range append(append([]entityKey{}, ent.children...), presentKeys(agg.Children())...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func (s *Session) exec(ctx context.Context, kind ChangeKind, e Entity, stmt func(*gorm.DB) *gorm.DB) error {
	if err := stmt(s.db(ctx)).Error; err != nil {
		err = classify(err)
		s.log.Error("Failed to write entity", err, map[string]interface{}{
			"kind":      kind,
			"table":     e.TableName(),
			"entity_id": e.GetID(),
		})
		return fmt.Errorf("%s %s: %w", kind, e.TableName(), err)
	}
	s.record(kind, keyOf(e))
	return nil
}

func (s *Session) execDelete(ctx context.Context, k entityKey) error {
	err := s.db(ctx).Exec("DELETE FROM ? WHERE id = ?", clause.Table{Name: k.table}, k.id).Error
	if err != nil {
		err = classify(err)
		s.log.Error("Failed to delete entity", err, map[string]interface{}{
			"entity": k.String(),
		})
		return fmt.Errorf("delete %s: %w", k, err)
	}
	s.record(ChangeDelete, k)
	return nil
}

func (s *Session) record(kind ChangeKind, k entityKey) {
	s.changes = append(s.changes, Change{Kind: kind, Table: k.table, ID: k.id})
	s.log.Debug("Statement executed", map[string]interface{}{
		"kind":   kind,
		"entity": k.String(),
	})
}

func link(e Entity) error {
	if l, ok := e.(Linker); ok {
		if err := l.SyncForeignKeys(); err != nil {
			return fmt.Errorf("%s: %w", e.TableName(), err)
		}
	}
	return nil
}
