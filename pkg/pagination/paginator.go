package pagination

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

// Paginator is implemented by every pagination style.
type Paginator interface {
	// QueryParams are the query parameter names this paginator reads.
	QueryParams() []string

	// Scope applies the page requested by r.
	Scope(r *http.Request) func(*gorm.DB) *gorm.DB
}

// PageNumber paginates with ?page=N.
type PageNumber struct {
	PageSize int

	// PageQueryParam defaults to "page".
	PageQueryParam string

	// PageSizeQueryParam lets clients choose the page size when set.
	PageSizeQueryParam string

	MaxPageSize int
}

// QueryParams implements Paginator.
func (p PageNumber) QueryParams() []string {
	params := []string{p.pageParam()}
	if p.PageSizeQueryParam != "" {
		params = append(params, p.PageSizeQueryParam)
	}
	return params
}

// Scope implements Paginator.
func (p PageNumber) Scope(r *http.Request) func(*gorm.DB) *gorm.DB {
	q := r.URL.Query()
	page := positiveInt(q.Get(p.pageParam()), 1)
	size := p.PageSize
	if p.PageSizeQueryParam != "" {
		size = positiveInt(q.Get(p.PageSizeQueryParam), size)
	}
	size = clamp(size, p.MaxPageSize)

	return func(db *gorm.DB) *gorm.DB {
		if size <= 0 {
			return db
		}
		return db.Offset((page - 1) * size).Limit(size)
	}
}

func (p PageNumber) pageParam() string {
	if p.PageQueryParam == "" {
		return "page"
	}
	return p.PageQueryParam
}

// LimitOffset paginates with ?limit=N&offset=M.
type LimitOffset struct {
	DefaultLimit int
	MaxLimit     int
}

// QueryParams implements Paginator.
func (p LimitOffset) QueryParams() []string {
	return []string{"limit", "offset"}
}

// Scope implements Paginator.
func (p LimitOffset) Scope(r *http.Request) func(*gorm.DB) *gorm.DB {
	q := r.URL.Query()
	limit := clamp(positiveInt(q.Get("limit"), p.DefaultLimit), p.MaxLimit)
	offset := positiveInt(q.Get("offset"), 0)

	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// Cursor paginates on a unique, ordered column. The cursor is the
// base64url encoding of the last value seen by the client.
type Cursor struct {
	PageSize int

	// Ordering is the column the cursor walks. Defaults to "id".
	Ordering string
}

// QueryParams implements Paginator.
func (p Cursor) QueryParams() []string {
	return []string{"cursor"}
}

// Scope implements Paginator. A cursor that does not decode is ignored.
func (p Cursor) Scope(r *http.Request) func(*gorm.DB) *gorm.DB {
	ordering := p.Ordering
	if ordering == "" {
		ordering = "id"
	}
	after, hasCursor := DecodeCursor(r.URL.Query().Get("cursor"))

	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(ordering)
		if hasCursor {
			db = db.Where(ordering+" > ?", after)
		}
		if p.PageSize > 0 {
			db = db.Limit(p.PageSize)
		}
		return db
	}
}

// EncodeCursor returns the cursor pointing after value.
func EncodeCursor(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (string, bool) {
	if cursor == "" {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	if n == 0 {
		return fallback
	}
	return n
}

func clamp(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}
