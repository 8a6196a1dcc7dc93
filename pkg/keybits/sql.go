package keybits

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sternrassler/restext/pkg/view"
)

// ListSQLQuery is the SQL text of the view's filtered list query, or nil
// when the view has no query set or the query cannot be built.
type ListSQLQuery struct{}

// Value implements Bit.
func (ListSQLQuery) Value(in Input) (any, error) {
	q := listQuery(in.Call)
	if q == nil {
		return nil, nil
	}
	return explain(q), nil
}

// RetrieveSQLQuery is the SQL text of the view's detail query for the
// looked-up value, or nil.
type RetrieveSQLQuery struct{}

// Value implements Bit.
func (RetrieveSQLQuery) Value(in Input) (any, error) {
	q := objectQuery(in.Call)
	if q == nil {
		return nil, nil
	}
	return explain(q), nil
}

// ListModel renders the (primary key, version column) pairs of every row
// in the list query. It is nil when the query is empty or fails.
type ListModel struct{}

// Value implements Bit.
func (ListModel) Value(in Input) (any, error) {
	q := listQuery(in.Call)
	if q == nil {
		return nil, nil
	}
	return materialise(q, view.VersionColumnOf(in.View)), nil
}

// RetrieveModel renders the (primary key, version column) pair of the
// looked-up object. It is nil when the object does not exist.
type RetrieveModel struct{}

// Value implements Bit.
func (RetrieveModel) Value(in Input) (any, error) {
	q := objectQuery(in.Call)
	if q == nil {
		return nil, nil
	}
	return materialise(q, view.VersionColumnOf(in.View)), nil
}

func listQuery(call *view.Call) *gorm.DB {
	lq, ok := call.View.(view.ListQuerier)
	if !ok {
		return nil
	}
	q := lq.ListQuery(call)
	if q == nil || q.Error != nil {
		return nil
	}
	return q
}

func objectQuery(call *view.Call) *gorm.DB {
	if oq, ok := call.View.(view.ObjectQuerier); ok {
		q := oq.ObjectQuery(call)
		if q == nil || q.Error != nil {
			return nil
		}
		return q
	}

	q := listQuery(call)
	if q == nil {
		return nil
	}
	lookup := view.LookupOf(call.View)
	value, ok := call.Kwargs[lookup.URLKwarg]
	if !ok {
		return nil
	}
	return q.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: lookup.Field},
		Value:  value,
	})
}

// explain builds the SELECT without running it and inlines the bound
// variables the way the dialector would log them.
func explain(q *gorm.DB) any {
	var rows []map[string]any
	tx := q.Session(&gorm.Session{DryRun: true}).Find(&rows)
	if tx.Error != nil {
		return nil
	}
	sql := tx.Statement.SQL.String()
	if sql == "" {
		return nil
	}
	return tx.Dialector.Explain(sql, tx.Statement.Vars...)
}

func materialise(q *gorm.DB, versionColumn string) any {
	tx := q.Session(&gorm.Session{})
	columns := []string{primaryKey(tx)}
	if hasColumn(tx, versionColumn) {
		columns = append(columns, versionColumn)
	}

	var rows []map[string]any
	if err := tx.Select(columns).Find(&rows).Error; err != nil || len(rows) == 0 {
		return nil
	}

	pairs := make([][]string, 0, len(rows))
	for _, row := range rows {
		pair := make([]string, 0, len(columns))
		for _, c := range columns {
			pair = append(pair, fmt.Sprint(row[c]))
		}
		pairs = append(pairs, pair)
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return nil
	}
	return string(b)
}

func parsed(tx *gorm.DB) bool {
	stmt := tx.Statement
	if stmt.Schema != nil {
		return true
	}
	if stmt.Model == nil {
		return false
	}
	return stmt.Parse(stmt.Model) == nil
}

func primaryKey(tx *gorm.DB) string {
	if parsed(tx) && tx.Statement.Schema.PrioritizedPrimaryField != nil {
		return tx.Statement.Schema.PrioritizedPrimaryField.DBName
	}
	return "id"
}

func hasColumn(tx *gorm.DB, column string) bool {
	if column == "" || !parsed(tx) {
		return false
	}
	return tx.Statement.Schema.LookUpField(column) != nil
}
