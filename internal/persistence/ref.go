package persistence

import (
	"context"
	"fmt"
)

// Ref is a many-to-one association. It is either loaded, holding the target
// entity, or unloaded, holding the target id and the session that can load it.
// The zero Ref is an absent association.
type Ref[E Entity] struct {
	id      uint
	value   E
	loaded  bool
	session *Session
	epoch   uint64
}

// RefTo returns a loaded reference to e.
func RefTo[E Entity](e E) Ref[E] {
	if isNil(e) {
		return Ref[E]{}
	}
	return Ref[E]{value: e, loaded: true}
}

// Reference returns a reference to the E with the given id. When that entity
// is already managed by s the reference is loaded; otherwise it is bound to s
// and resolved on first Get.
func Reference[E Entity](s *Session, id uint) Ref[E] {
	if id == 0 {
		return Ref[E]{}
	}
	if s == nil || s.closed {
		return Ref[E]{id: id}
	}
	k := entityKey{table: newEntity[E]().TableName(), id: id}
	if ent, ok := s.entries[k]; ok && !ent.removed {
		if managed, ok := ent.entity.(E); ok {
			return RefTo(managed)
		}
	}
	return Ref[E]{id: id, session: s, epoch: s.epoch}
}

// ID returns the target identity, or zero for an absent or unsaved target.
func (r Ref[E]) ID() uint {
	if r.loaded {
		return r.value.GetID()
	}
	return r.id
}

// IsZero reports whether the association is absent.
func (r Ref[E]) IsZero() bool {
	return !r.loaded && r.id == 0
}

// Loaded reports whether the target is available without a query.
func (r Ref[E]) Loaded() bool {
	return r.loaded
}

// Transient reports whether the target has not been saved yet.
func (r Ref[E]) Transient() bool {
	return r.loaded && r.value.GetID() == 0
}

// Get returns the target, loading it through the originating session when
// needed. It fails with ErrLazyInitialization when that session has been
// closed or cleared since the reference was created. An absent association
// yields the zero value and no error.
func (r *Ref[E]) Get(ctx context.Context) (E, error) {
	var zero E
	if r.loaded {
		return r.value, nil
	}
	if r.id == 0 {
		return zero, nil
	}

	table := newEntity[E]().TableName()
	if r.session == nil || r.session.closed || r.session.epoch != r.epoch {
		return zero, fmt.Errorf("%w: %s#%d", ErrLazyInitialization, table, r.id)
	}

	value, found, err := Find[E](ctx, r.session, r.id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("%w: %s#%d", ErrEntityNotFound, table, r.id)
	}

	r.session.log.Debug("Lazy reference initialized", map[string]interface{}{
		"entity": fmt.Sprintf("%s#%d", table, r.id),
	})
	r.value, r.loaded, r.session = value, true, nil
	return value, nil
}
