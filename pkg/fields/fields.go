// Package fields selects the model columns a partial update actually
// touches, so persistence can be asked to write only those.
package fields

import (
	"errors"
	"fmt"
	"mime/multipart"
	"sort"

	"gorm.io/gorm"
)

// SameInstance as a Field source marks a nested group whose fields live on
// the parent model itself.
const SameInstance = "*"

// Field describes one declared field of a serializer.
type Field struct {
	// Name is the key clients send.
	Name string

	// Source is the model column the field reads and writes. Empty means
	// Name. SameInstance marks a nested group.
	Source string

	ReadOnly bool

	// Fields are the members of a nested group.
	Fields []Field
}

func (f Field) source() string {
	if f.Source == "" {
		return f.Name
	}
	return f.Source
}

// Model lists the concrete columns of a model and its primary key.
type Model struct {
	Columns []string
	PK      string
}

func (m Model) has(column string) bool {
	for _, c := range m.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ErrNoSchema is returned when a value has no gorm schema.
var ErrNoSchema = errors.New("no model schema")

// ModelColumns derives the Model of value from its gorm schema.
func ModelColumns(db *gorm.DB, value any) (Model, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(value); err != nil {
		return Model{}, fmt.Errorf("%w: %v", ErrNoSchema, err)
	}

	m := Model{Columns: append([]string(nil), stmt.Schema.DBNames...)}
	if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
		m.PK = pk.DBName
	}
	return m, nil
}

// PartialUpdateFields returns the sorted, de-duplicated columns supplied
// by data and files. Keys without a declared field, read-only fields,
// the primary key and sources that are not columns of model are skipped.
// Nested groups with source SameInstance are descended into using the
// nested object sent under the group's name.
func PartialUpdateFields(data map[string]any, files map[string][]*multipart.FileHeader, declared []Field, model Model) []string {
	values := PartialUpdateValues(data, files, declared, model)

	out := make([]string, 0, len(values))
	for column := range values {
		out = append(out, column)
	}
	sort.Strings(out)
	return out
}

// PartialUpdateValues maps each column PartialUpdateFields selects to the
// value the client sent for its field. Uploaded files map to their
// headers. When two fields share a column the later key in sort order
// wins.
func PartialUpdateValues(data map[string]any, files map[string][]*multipart.FileHeader, declared []Field, model Model) map[string]any {
	values := make(map[string]any)
	collect(data, files, declared, model, values)
	return values
}

func collect(data map[string]any, files map[string][]*multipart.FileHeader, declared []Field, model Model, values map[string]any) {
	byName := make(map[string]Field, len(declared))
	for _, f := range declared {
		byName[f.Name] = f
	}

	supplied := make([]string, 0, len(data)+len(files))
	for k := range data {
		supplied = append(supplied, k)
	}
	for k := range files {
		supplied = append(supplied, k)
	}
	sort.Strings(supplied)

	for _, name := range supplied {
		f, ok := byName[name]
		if !ok || f.ReadOnly {
			continue
		}

		source := f.source()
		if source == SameInstance {
			if nested, ok := data[name].(map[string]any); ok && len(f.Fields) > 0 {
				collect(nested, nil, f.Fields, model, values)
			}
			continue
		}
		if source == model.PK || !model.has(source) {
			continue
		}
		if v, ok := data[name]; ok {
			values[source] = v
		} else {
			values[source] = files[name]
		}
	}
}
