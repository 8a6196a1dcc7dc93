// Package view defines what the conditional, cache and key machinery knows
// about the code producing a response: the call record handed to key bits,
// view identity, and the optional capabilities a view may expose.
package view

import (
	"context"
	"net/http"
	"reflect"

	"gorm.io/gorm"

	"github.com/Sternrassler/restext/pkg/pagination"
)

// Call describes one invocation of a view method.
type Call struct {
	// View is the view (viewset) instance handling the request.
	View any

	// Method is the view method name, e.g. "list" or "retrieve".
	// It is not the HTTP method.
	Method string

	Request *http.Request

	// Args are positional URL captures.
	Args []string

	// Kwargs are named URL captures.
	Kwargs map[string]string
}

type callKey struct{}

// WithCall returns a copy of r carrying call. call.Request is updated to
// the returned request.
func WithCall(r *http.Request, call *Call) *http.Request {
	r = r.WithContext(context.WithValue(r.Context(), callKey{}, call))
	call.Request = r
	return r
}

// CallFrom returns the call installed by WithCall, or nil.
func CallFrom(ctx context.Context) *Call {
	c, _ := ctx.Value(callKey{}).(*Call)
	return c
}

// Identifier lets a view choose its own identity instead of the type name.
type Identifier interface {
	ViewID() string
}

// ID returns "<package path>.<TypeName>" for v.
func ID(v any) string {
	if v == nil {
		return ""
	}
	if id, ok := v.(Identifier); ok {
		return id.ViewID()
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// MethodID returns ID(v) + "." + method.
func MethodID(v any, method string) string {
	return ID(v) + "." + method
}

// Paginated views declare the paginator of their list method.
type Paginated interface {
	Paginator() pagination.Paginator
}

// ListQuerier views expose the filtered query set of their list method.
type ListQuerier interface {
	ListQuery(call *Call) *gorm.DB
}

// ObjectQuerier views expose the query set of their detail method, already
// filtered to the looked-up object.
type ObjectQuerier interface {
	ObjectQuery(call *Call) *gorm.DB
}

// LookupDescriber views describe how detail routes identify an object.
// Views that do not implement it use DefaultLookup.
type LookupDescriber interface {
	Lookup() Lookup
}

// Versioned views name the column that changes whenever a row changes.
type Versioned interface {
	VersionColumn() string
}

// Lookup configures detail-route lookups.
type Lookup struct {
	// Field is the model column filtered on.
	Field string

	// URLKwarg is the URL capture carrying the value. Defaults to "pk".
	URLKwarg string

	// ValueRegex constrains the URL capture.
	ValueRegex string
}

// DefaultLookupValueRegex matches one path segment without dots.
const DefaultLookupValueRegex = `[^/.]+`

// DefaultVersionColumn is used by views that are not Versioned.
const DefaultVersionColumn = "updated_at"

// DefaultLookup is the lookup of views that do not describe one.
var DefaultLookup = Lookup{Field: "id", URLKwarg: "pk", ValueRegex: DefaultLookupValueRegex}

// LookupOf returns the lookup of v with empty fields defaulted.
func LookupOf(v any) Lookup {
	l := DefaultLookup
	if d, ok := v.(LookupDescriber); ok {
		own := d.Lookup()
		if own.Field != "" {
			l.Field = own.Field
		}
		if own.URLKwarg != "" {
			l.URLKwarg = own.URLKwarg
		}
		if own.ValueRegex != "" {
			l.ValueRegex = own.ValueRegex
		}
	}
	return l
}

// VersionColumnOf returns the version column of v.
func VersionColumnOf(v any) string {
	if vv, ok := v.(Versioned); ok && vv.VersionColumn() != "" {
		return vv.VersionColumn()
	}
	return DefaultVersionColumn
}

// Chain wraps h with mws; the first middleware is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
