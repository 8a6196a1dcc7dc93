package keybits

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/restext/pkg/request"
	"github.com/Sternrassler/restext/pkg/view"
)

// UniqueViewID is "<package path>.<TypeName>" of the view.
type UniqueViewID struct{}

// Value implements Bit.
func (UniqueViewID) Value(in Input) (any, error) {
	return view.ID(in.View), nil
}

// UniqueMethodID is the view id followed by the method name.
type UniqueMethodID struct{}

// Value implements Bit.
func (UniqueMethodID) Value(in Input) (any, error) {
	return view.MethodID(in.View, in.Method), nil
}

// Language is the negotiated request language.
type Language struct{}

// Value implements Bit.
func (Language) Value(in Input) (any, error) {
	s := state(in.Request)
	if s == nil {
		return nil, nil
	}
	return s.Language, nil
}

// Format is the negotiated renderer format token.
type Format struct{}

// Value implements Bit.
func (Format) Value(in Input) (any, error) {
	s := state(in.Request)
	if s == nil {
		return nil, nil
	}
	return s.Format, nil
}

// User is the authenticated principal id, or request.Anonymous.
type User struct{}

// Value implements Bit.
func (User) Value(in Input) (any, error) {
	if s := state(in.Request); s != nil {
		if id, ok := s.User(); ok {
			return id, nil
		}
	}
	return request.Anonymous, nil
}

// Headers maps lower-cased header names to their values.
type Headers struct{}

// Value implements Bit.
func (Headers) Value(in Input) (any, error) {
	if in.Request == nil {
		return map[string]string{}, nil
	}
	meta := request.Meta(in.Request)
	return pick(in.Params,
		func() []string {
			names := make([]string, 0, len(in.Request.Header))
			for name := range in.Request.Header {
				names = append(names, name)
			}
			return names
		},
		func(name string) (string, bool) {
			v, ok := meta[request.MetaHeaderName(name)]
			return v, ok
		},
		strings.ToLower,
	), nil
}

// RequestMeta reads keys of the CGI-style request environment.
type RequestMeta struct{}

// Value implements Bit.
func (RequestMeta) Value(in Input) (any, error) {
	if in.Request == nil {
		return map[string]string{}, nil
	}
	return fromMap(in.Params, request.Meta(in.Request)), nil
}

// QueryParams maps query parameter names to their first value.
type QueryParams struct{}

// Value implements Bit.
func (QueryParams) Value(in Input) (any, error) {
	if in.Request == nil {
		return map[string]string{}, nil
	}
	return fromQuery(in.Params, in.Request), nil
}

// Pagination reads the query parameters the view's paginator declares.
type Pagination struct{}

// Value implements Bit.
func (Pagination) Value(in Input) (any, error) {
	p, ok := in.View.(view.Paginated)
	if !ok || p.Paginator() == nil || in.Request == nil {
		return map[string]string{}, nil
	}
	return fromQuery(Keys(p.Paginator().QueryParams()...), in.Request), nil
}

// Args selects positional URL captures. Indices out of range are skipped.
type Args struct{}

// Value implements Bit.
func (Args) Value(in Input) (any, error) {
	if in.Params.IsAll() {
		return append([]string{}, in.Args...), nil
	}
	out := []string{}
	for _, k := range in.Params.Keys() {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(in.Args) {
			continue
		}
		out = append(out, in.Args[i])
	}
	return out, nil
}

// Kwargs selects named URL captures.
type Kwargs struct{}

// Value implements Bit.
func (Kwargs) Value(in Input) (any, error) {
	return fromMap(in.Params, in.Kwargs), nil
}

func state(r *http.Request) *request.State {
	if r == nil {
		return nil
	}
	return request.FromContext(r.Context())
}

func fromMap(p Params, src map[string]string) map[string]string {
	return pick(p,
		func() []string {
			keys := make([]string, 0, len(src))
			for k := range src {
				keys = append(keys, k)
			}
			return keys
		},
		func(k string) (string, bool) {
			v, ok := src[k]
			return v, ok
		},
		nil,
	)
}

func fromQuery(p Params, r *http.Request) map[string]string {
	q := r.URL.Query()
	return pick(p,
		func() []string {
			keys := make([]string, 0, len(q))
			for k := range q {
				keys = append(keys, k)
			}
			return keys
		},
		func(k string) (string, bool) {
			vs, ok := q[k]
			if !ok || len(vs) == 0 {
				return "", false
			}
			return vs[0], true
		},
		nil,
	)
}
