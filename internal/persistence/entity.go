package persistence

import (
	"context"
	"fmt"
	"reflect"
)

// Entity is a record with a database generated primary key.
// Implementations must be pointers to gorm model structs.
type Entity interface {
	TableName() string
	GetID() uint
}

// Aggregate is an entity that owns a child collection with cascade-all and
// orphan-removal semantics. Children present in the collection are inserted
// with the aggregate as owner; children that leave the collection are deleted
// on the next flush.
type Aggregate interface {
	Entity
	// Children returns the current members of the owned collection in order.
	Children() []Entity
	// Adopt points the child's foreign key at the receiver.
	Adopt(child Entity)
	// Replace sets the owned collection to children, in order.
	Replace(children []Entity)
	// ChildTable names the child table and its foreign key column.
	ChildTable() (table, foreignKey string)
}

// Loader is implemented by entities that bind lazy references or load owned
// collections after their row was read into the session.
type Loader interface {
	OnLoad(ctx context.Context, s *Session) error
}

// Linker is implemented by entities whose foreign key columns are derived from
// Ref fields. It runs before every insert and dirty check.
type Linker interface {
	SyncForeignKeys() error
}

type entityKey struct {
	table string
	id    uint
}

func (k entityKey) String() string {
	return fmt.Sprintf("%s#%d", k.table, k.id)
}

func keyOf(e Entity) entityKey {
	return entityKey{table: e.TableName(), id: e.GetID()}
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// newEntity allocates a fresh zero value of the struct E points to.
func newEntity[E Entity]() E {
	var zero E
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("persistence: entity type %T must be a pointer to a struct", zero))
	}
	return reflect.New(t.Elem()).Interface().(E)
}

// newLike allocates a fresh zero value with the same dynamic type as e.
func newLike(e Entity) Entity {
	return reflect.New(reflect.TypeOf(e).Elem()).Interface().(Entity)
}
