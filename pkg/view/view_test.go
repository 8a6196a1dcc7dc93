package view

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type bookViewSet struct{}

type namedView struct{}

func (namedView) ViewID() string { return "books.BookViewSet" }

func (namedView) KeyFunc(name string) (KeyFunc, bool) {
	if name != "revision" {
		return nil, false
	}
	return KeyFuncFunc(func(call *Call) (string, error) { return "rev-" + call.Kwargs["pk"], nil }), true
}

func (namedView) CacheTimeout(name string) (time.Duration, bool) {
	if name == "list_timeout" {
		return time.Minute, true
	}
	return 0, false
}

func (namedView) Lookup() Lookup { return Lookup{URLKwarg: "slug"} }

func (namedView) VersionColumn() string { return "revision" }

func TestID(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"pointer", &bookViewSet{}, "github.com/Sternrassler/restext/pkg/view.bookViewSet"},
		{"value", bookViewSet{}, "github.com/Sternrassler/restext/pkg/view.bookViewSet"},
		{"identifier", namedView{}, "books.BookViewSet"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ID(tt.v); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMethodID(t *testing.T) {
	if got := MethodID(namedView{}, "retrieve"); got != "books.BookViewSet.retrieve" {
		t.Errorf("MethodID() = %q", got)
	}
}

func TestWithCall(t *testing.T) {
	call := &Call{View: namedView{}, Method: "list"}
	r := WithCall(httptest.NewRequest("GET", "/", nil), call)

	if got := CallFrom(r.Context()); got != call {
		t.Fatal("CallFrom did not return the installed call")
	}
	if call.Request != r {
		t.Error("call.Request should point at the derived request")
	}
	if CallFrom(httptest.NewRequest("GET", "/", nil).Context()) != nil {
		t.Error("CallFrom on a bare request should be nil")
	}
}

func TestNamed(t *testing.T) {
	call := &Call{View: namedView{}, Kwargs: map[string]string{"pk": "1"}}

	got, err := Named("revision").Key(call)
	if err != nil || got != "rev-1" {
		t.Errorf("Named(revision) = %q, %v", got, err)
	}

	if _, err := Named("missing").Key(call); !errors.Is(err, ErrUnresolvedKeyFunc) {
		t.Errorf("missing name error = %v", err)
	}

	if _, err := Named("revision").Key(&Call{View: bookViewSet{}}); !errors.Is(err, ErrUnresolvedKeyFunc) {
		t.Errorf("non-provider error = %v", err)
	}
}

func TestTimeouts(t *testing.T) {
	call := &Call{View: namedView{}}

	if d, err := Fixed(5 * time.Second).Resolve(call); err != nil || d != 5*time.Second {
		t.Errorf("Fixed = %v, %v", d, err)
	}
	if d, err := Attr("list_timeout").Resolve(call); err != nil || d != time.Minute {
		t.Errorf("Attr = %v, %v", d, err)
	}
	if _, err := Attr("nope").Resolve(call); !errors.Is(err, ErrUnresolvedTimeout) {
		t.Errorf("missing attr error = %v", err)
	}
	if _, err := Attr("list_timeout").Resolve(&Call{View: bookViewSet{}}); !errors.Is(err, ErrUnresolvedTimeout) {
		t.Errorf("non-provider error = %v", err)
	}
}

func TestLookupOf(t *testing.T) {
	if got := LookupOf(bookViewSet{}); got != DefaultLookup {
		t.Errorf("LookupOf(default) = %+v", got)
	}
	got := LookupOf(namedView{})
	if got.URLKwarg != "slug" || got.Field != "id" || got.ValueRegex != DefaultLookupValueRegex {
		t.Errorf("LookupOf(named) = %+v", got)
	}
	if VersionColumnOf(namedView{}) != "revision" || VersionColumnOf(bookViewSet{}) != DefaultVersionColumn {
		t.Error("VersionColumnOf mismatch")
	}
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("gate"), mw("etag"), mw("cache"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got := strings.Join(order, ","); got != "gate,etag,cache,handler" {
		t.Errorf("order = %s", got)
	}
}
