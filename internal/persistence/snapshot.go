package persistence

import (
	"context"
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// snapshot holds column values keyed by column name, primary key excluded.
type snapshot map[string]interface{}

func (s *Session) schemaOf(e Entity) (*schema.Schema, error) {
	t := reflect.TypeOf(e)
	if sch, ok := s.schemas[t]; ok {
		return sch, nil
	}
	stmt := &gorm.Statement{DB: s.tx}
	if err := stmt.Parse(e); err != nil {
		return nil, err
	}
	s.schemas[t] = stmt.Schema
	return stmt.Schema, nil
}

func columnFields(sch *schema.Schema) []*schema.Field {
	fields := make([]*schema.Field, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.DBName == "" || f.PrimaryKey || (!f.Creatable && !f.Updatable) {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func capture(ctx context.Context, sch *schema.Schema, e Entity) snapshot {
	rv := reflect.Indirect(reflect.ValueOf(e))
	fields := columnFields(sch)
	snap := make(snapshot, len(fields))
	for _, f := range fields {
		v, _ := f.ValueOf(ctx, rv)
		snap[f.DBName] = deref(v)
	}
	return snap
}

// diff returns the columns of current whose value differs from base.
func diff(base, current snapshot) map[string]interface{} {
	changes := make(map[string]interface{})
	for col, v := range current {
		if old, ok := base[col]; !ok || !sameValue(old, v) {
			changes[col] = v
		}
	}
	return changes
}

// mergeColumns copies every column value of src onto dst.
func mergeColumns(ctx context.Context, sch *schema.Schema, dst, src Entity) error {
	dv := reflect.Indirect(reflect.ValueOf(dst))
	sv := reflect.Indirect(reflect.ValueOf(src))
	for _, f := range columnFields(sch) {
		v, _ := f.ValueOf(ctx, sv)
		if err := f.Set(ctx, dv, v); err != nil {
			return err
		}
	}
	return nil
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func sameValue(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}
