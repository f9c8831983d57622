package repository

import (
	"context"

	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
)

// Repository is the persistence gateway for one entity type. Every call goes
// through the session it was created with, so entities returned by it are
// managed by that session.
type Repository[E persistence.Entity] interface {
	Save(ctx context.Context, e E) (E, error)
	SaveAndFlush(ctx context.Context, e E) (E, error)
	FindByID(ctx context.Context, id uint) (E, bool, error)
	Delete(ctx context.Context, e E) error
}

type gateway[E persistence.Entity] struct {
	session *persistence.Session
	entity  string
}

func newGateway[E persistence.Entity](s *persistence.Session, entity string) *gateway[E] {
	return &gateway[E]{session: s, entity: entity}
}

func (g *gateway[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	logger.Debug("Saving entity", map[string]interface{}{
		"entity":    g.entity,
		"entity_id": e.GetID(),
	})

	managed, err := g.session.Persist(ctx, e)
	if err != nil {
		logger.Error("Failed to save entity", err, map[string]interface{}{
			"entity":     g.entity,
			"session_id": g.session.ID(),
		})
		return zero, err
	}

	logger.Debug("Entity saved", map[string]interface{}{
		"entity":    g.entity,
		"entity_id": managed.GetID(),
	})
	return managed.(E), nil
}

func (g *gateway[E]) SaveAndFlush(ctx context.Context, e E) (E, error) {
	managed, err := g.Save(ctx, e)
	if err != nil {
		return managed, err
	}
	if err := g.session.Flush(ctx); err != nil {
		logger.Error("Failed to flush after save", err, map[string]interface{}{
			"entity":     g.entity,
			"entity_id":  managed.GetID(),
			"session_id": g.session.ID(),
		})
		return managed, err
	}
	return managed, nil
}

func (g *gateway[E]) FindByID(ctx context.Context, id uint) (E, bool, error) {
	logger.Debug("Finding entity by ID", map[string]interface{}{
		"entity":    g.entity,
		"entity_id": id,
	})

	e, found, err := persistence.Find[E](ctx, g.session, id)
	if err != nil {
		logger.Error("Failed to find entity by ID", err, map[string]interface{}{
			"entity":    g.entity,
			"entity_id": id,
		})
		return e, false, err
	}
	if !found {
		logger.Debug("Entity not found", map[string]interface{}{
			"entity":    g.entity,
			"entity_id": id,
		})
	}
	return e, found, nil
}

func (g *gateway[E]) Delete(ctx context.Context, e E) error {
	logger.Debug("Deleting entity", map[string]interface{}{
		"entity":    g.entity,
		"entity_id": e.GetID(),
	})

	if err := g.session.Remove(ctx, e); err != nil {
		logger.Error("Failed to delete entity", err, map[string]interface{}{
			"entity":    g.entity,
			"entity_id": e.GetID(),
		})
		return err
	}
	return nil
}

// Repositories groups the repositories of one session.
type Repositories struct {
	Members    MemberRepository
	Items      ItemRepository
	Orders     OrderRepository
	OrderItems OrderItemRepository

	session *persistence.Session
}

func New(s *persistence.Session) *Repositories {
	return &Repositories{
		Members:    NewMemberRepository(s),
		Items:      NewItemRepository(s),
		Orders:     NewOrderRepository(s),
		OrderItems: NewOrderItemRepository(s),
		session:    s,
	}
}

// Session returns the session every repository of the group works in.
func (r *Repositories) Session() *persistence.Session {
	return r.session
}

// Flush writes the pending changes of the session.
func (r *Repositories) Flush(ctx context.Context) error {
	return r.session.Flush(ctx)
}

// Clear detaches everything the session manages.
func (r *Repositories) Clear() {
	r.session.Clear()
}
