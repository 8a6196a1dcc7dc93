package conditional_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Sternrassler/restext/internal/testutil"
	"github.com/Sternrassler/restext/pkg/conditional"
	"github.com/Sternrassler/restext/pkg/precondition"
	"github.com/Sternrassler/restext/pkg/view"
)

// resource is a versioned value whose entity tag is its version.
type resource struct {
	mu      sync.Mutex
	version string
}

func (r *resource) set(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = v
}

func (r *resource) Key(*view.Call) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version, nil
}

type bookViewSet struct{}

func serve(h http.Handler, method string, headers map[string]string) *httptest.ResponseRecorder {
	r := testutil.NewRequest(method, "/books/1/", strings.NewReader(`{"title":"Dune"}`))
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func newHandler(p interface{ Wrap(http.Handler) http.Handler }, mock *testutil.MockHandler) http.Handler {
	return view.Chain(mock, testutil.Bind(bookViewSet{}, "retrieve", map[string]string{"pk": "1"}), p.Wrap)
}

func TestProcessor_RetrieveNotModified(t *testing.T) {
	res := &resource{version: "W1"}
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{"title":"Dune"}`))
	h := newHandler(conditional.New(res), mock)

	w := serve(h, http.MethodGet, nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") != `"W1"` {
		t.Fatalf("first GET = %d ETag %q", w.Code, w.Header().Get("ETag"))
	}
	if w.Body.String() != `{"title":"Dune"}` {
		t.Errorf("body = %q", w.Body.String())
	}

	w = serve(h, http.MethodGet, map[string]string{"If-None-Match": `"W1"`})
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", w.Code)
	}
	if w.Header().Get("ETag") != `"W1"` {
		t.Errorf("304 ETag = %q", w.Header().Get("ETag"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", w.Body.String())
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("handler calls = %d, want 1", mock.GetRequestCount())
	}
}

func TestProcessor_RetrieveAfterMutation(t *testing.T) {
	res := &resource{version: "W1"}
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{"title":"Dune"}`))
	h := newHandler(conditional.New(res), mock)

	serve(h, http.MethodGet, nil)
	res.set("W2")

	w := serve(h, http.MethodGet, map[string]string{"If-None-Match": `"W1"`})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("ETag") != `"W2"` {
		t.Errorf("ETag = %q, want \"W2\"", w.Header().Get("ETag"))
	}
	if w.Body.String() != `{"title":"Dune"}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestProcessor_ConditionalUpdate(t *testing.T) {
	res := &resource{version: "W1"}
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{"title":"Dune"}`))
	h := newHandler(conditional.New(res), mock)

	if w := serve(h, http.MethodGet, nil); w.Header().Get("ETag") != `"W1"` {
		t.Fatalf("ETag = %q", w.Header().Get("ETag"))
	}
	if w := serve(h, http.MethodPut, map[string]string{"If-Match": `"W1"`}); w.Code != http.StatusOK {
		t.Errorf("PUT with current tag = %d, want 200", w.Code)
	}

	res.set("W2")
	mock.Reset()

	w := serve(h, http.MethodPut, map[string]string{"If-Match": `"W1"`})
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("PUT with stale tag = %d, want 412", w.Code)
	}
	if w.Header().Get("ETag") != `"W2"` {
		t.Errorf("412 ETag = %q", w.Header().Get("ETag"))
	}
	if mock.GetRequestCount() != 0 {
		t.Error("handler ran on a failed precondition")
	}
}

func TestProcessor_WeakTagIfMatch(t *testing.T) {
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	h := newHandler(conditional.New(&resource{version: `W/"v1"`}), mock)

	w := serve(h, http.MethodPut, map[string]string{"If-Match": `W/"v1"`})
	if w.Code != http.StatusOK {
		t.Errorf("PUT with listed weak tag = %d, want 200", w.Code)
	}
	if w.Header().Get("ETag") != `W/"v1"` {
		t.Errorf("ETag = %q", w.Header().Get("ETag"))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("handler calls = %d, want 1", mock.GetRequestCount())
	}
}

func TestProcessor_Evaluation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		headers    map[string]string
		wantStatus int
		wantCalls  int
	}{
		{"none match head", http.MethodHead, map[string]string{"If-None-Match": `"W1"`}, http.StatusNotModified, 0},
		{"none match weak", http.MethodGet, map[string]string{"If-None-Match": `W/"W1"`}, http.StatusNotModified, 0},
		{"none match wildcard unsafe", http.MethodPost, map[string]string{"If-None-Match": "*"}, http.StatusPreconditionFailed, 0},
		{"none match other tag", http.MethodGet, map[string]string{"If-None-Match": `"X"`}, http.StatusOK, 1},
		{"match wildcard", http.MethodDelete, map[string]string{"If-Match": "*"}, http.StatusOK, 1},
		{"match in list", http.MethodPatch, map[string]string{"If-Match": `"A", "W1"`}, http.StatusOK, 1},
		{"match weak form of strong tag", http.MethodPatch, map[string]string{"If-Match": `W/"W1"`}, http.StatusPreconditionFailed, 0},
		{"malformed discards both", http.MethodPut, map[string]string{"If-Match": `"X"`, "If-None-Match": `W1`}, http.StatusOK, 1},
		{"no headers", http.MethodDelete, nil, http.StatusOK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
			h := newHandler(conditional.New(&resource{version: "W1"}), mock)

			w := serve(h, tt.method, tt.headers)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if mock.GetRequestCount() != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", mock.GetRequestCount(), tt.wantCalls)
			}
			if w.Header().Get("ETag") != `"W1"` {
				t.Errorf("ETag = %q", w.Header().Get("ETag"))
			}
		})
	}
}

func TestProcessor_EmptyTagNeverShortCircuits(t *testing.T) {
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	h := newHandler(conditional.New(&resource{}), mock)

	w := serve(h, http.MethodGet, map[string]string{"If-None-Match": "*"})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("ETag") != `""` {
		t.Errorf("ETag = %q, want quoted empty", w.Header().Get("ETag"))
	}
}

func TestProcessor_Rebuild(t *testing.T) {
	res := &resource{version: "W1"}
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	mock.OnRequest(func(*http.Request) { res.set("W2") })

	plain := newHandler(conditional.New(res), mock)
	if w := serve(plain, http.MethodPut, map[string]string{"If-Match": `"W1"`}); w.Header().Get("ETag") != `"W1"` {
		t.Errorf("without rebuild ETag = %q, want \"W1\"", w.Header().Get("ETag"))
	}

	res.set("W1")
	rebuilt := newHandler(conditional.New(res, conditional.WithRebuildAfterMethodEvaluation(true)), mock)
	if w := serve(rebuilt, http.MethodPut, map[string]string{"If-Match": `"W1"`}); w.Header().Get("ETag") != `"W2"` {
		t.Errorf("with rebuild ETag = %q, want \"W2\"", w.Header().Get("ETag"))
	}
}

func TestProcessor_HandlerHeadersKept(t *testing.T) {
	mock := testutil.NewMockHandler(testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       `{"id":1}`,
		Headers:    map[string]string{"Content-Type": "application/json", "Location": "/books/1/"},
	})
	h := newHandler(conditional.New(&resource{version: "abc"}), mock)

	w := serve(h, http.MethodPost, nil)
	if w.Code != http.StatusCreated || w.Header().Get("Location") != "/books/1/" {
		t.Errorf("response = %d %v", w.Code, w.Header())
	}
	if w.Header().Get("Content-Length") != "8" {
		t.Errorf("Content-Length = %q", w.Header().Get("Content-Length"))
	}
}

// countingTag counts how often the tag is computed.
type countingTag struct{ calls int }

func (c *countingTag) Key(*view.Call) (string, error) {
	c.calls++
	return "W1", nil
}

func TestAPIProcessor_GateFirst(t *testing.T) {
	tag := &countingTag{}
	mock := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	h := newHandler(conditional.NewAPI(tag, nil), mock)

	w := serve(h, http.MethodDelete, nil)
	if w.Code != http.StatusPreconditionRequired {
		t.Fatalf("status = %d, want 428", w.Code)
	}
	want := `{"detail":"Precondition required. This \"DELETE\" request is required to be conditional. Try again by providing all following HTTP headers: \"If-Match\"."}`
	if w.Body.String() != want {
		t.Errorf("body = %s", w.Body.String())
	}
	if tag.calls != 0 {
		t.Errorf("entity tag computed %d times before the gate", tag.calls)
	}

	w = serve(h, http.MethodDelete, map[string]string{"If-Match": `"W1"`})
	if w.Code != http.StatusOK || tag.calls != 1 {
		t.Errorf("conditional DELETE = %d, tag calls %d", w.Code, tag.calls)
	}
}

func TestAPIProcessor_CustomMap(t *testing.T) {
	h := newHandler(
		conditional.NewAPI(&resource{version: "W1"}, precondition.Map{http.MethodPost: {"If-None-Match"}}),
		testutil.NewMockHandler(testutil.NewJSONResponse(`{}`)),
	)

	if w := serve(h, http.MethodDelete, nil); w.Code != http.StatusOK {
		t.Errorf("DELETE with custom map = %d, want 200", w.Code)
	}
	if w := serve(h, http.MethodPost, nil); w.Code != http.StatusPreconditionRequired {
		t.Errorf("POST with custom map = %d, want 428", w.Code)
	}
}
