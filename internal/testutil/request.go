package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/Sternrassler/restext/pkg/request"
	"github.com/Sternrassler/restext/pkg/view"
)

// NewRequest builds a request carrying a fresh request.State with
// language "en" and format "json".
func NewRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return request.WithState(r, request.NewState("en", "json"))
}

// NewCall installs a call for v on r and returns both.
func NewCall(r *http.Request, v any, method string, kwargs map[string]string) (*http.Request, *view.Call) {
	if kwargs == nil {
		kwargs = map[string]string{}
	}
	call := &view.Call{View: v, Method: method, Kwargs: kwargs}
	return view.WithCall(r, call), call
}

// Bind returns a middleware installing a call for v on every request.
func Bind(v any, method string, kwargs map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if request.FromContext(r.Context()) == nil {
				r = request.WithState(r, request.NewState("en", "json"))
			}
			r, _ = NewCall(r, v, method, kwargs)
			next.ServeHTTP(w, r)
		})
	}
}
