package mixins_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sternrassler/restext/internal/testutil"
	"github.com/Sternrassler/restext/pkg/cache"
	"github.com/Sternrassler/restext/pkg/keyconstructor"
	"github.com/Sternrassler/restext/pkg/mixins"
	"github.com/Sternrassler/restext/pkg/routers"
	"github.com/Sternrassler/restext/pkg/settings"
	"github.com/Sternrassler/restext/pkg/view"
)

type bookView struct{}

func decorated(m mixins.Mixins, v any, action string, kwargs map[string]string, next http.Handler) http.Handler {
	return view.Chain(m.DecorateAction(action, next), testutil.Bind(v, action, kwargs))
}

func do(h http.Handler, method string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/books/", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestETag_ListNotModified(t *testing.T) {
	d := keyconstructor.NewDefaults(settings.Default())
	handler := testutil.NewMockHandler(testutil.NewJSONResponse(`[]`))
	h := decorated(mixins.Mixins{mixins.ETag(d)}, bookView{}, routers.ActionList, nil, handler)

	first := do(h, http.MethodGet, nil)
	etag := first.Header().Get("ETag")
	if first.Code != http.StatusOK || etag == "" {
		t.Fatalf("first: status %d etag %q", first.Code, etag)
	}

	second := do(h, http.MethodGet, http.Header{"If-None-Match": {etag}})
	if second.Code != http.StatusNotModified {
		t.Errorf("second: status = %d, want 304", second.Code)
	}
	if second.Header().Get("ETag") != etag {
		t.Errorf("second: etag = %q, want %q", second.Header().Get("ETag"), etag)
	}
	if handler.GetRequestCount() != 1 {
		t.Errorf("handler called %d times, want 1", handler.GetRequestCount())
	}
}

func TestETag_UpdatePreconditionFailed(t *testing.T) {
	d := keyconstructor.NewDefaults(settings.Default())
	handler := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	h := decorated(mixins.Mixins{mixins.ETag(d)}, bookView{}, routers.ActionUpdate,
		map[string]string{"pk": "1"}, handler)

	rec := do(h, http.MethodPut, http.Header{"If-Match": {`"stale"`}})
	if rec.Code != http.StatusPreconditionFailed {
		t.Errorf("status = %d, want 412", rec.Code)
	}
	if handler.GetRequestCount() != 0 {
		t.Error("handler ran despite failed precondition")
	}
}

func TestETag_UndecoratedAction(t *testing.T) {
	d := keyconstructor.NewDefaults(settings.Default())
	handler := testutil.NewMockHandler(testutil.MockResponse{StatusCode: http.StatusCreated, Body: `{}`})
	h := decorated(mixins.Mixins{mixins.ETag(d)}, bookView{}, routers.ActionCreate, nil, handler)

	rec := do(h, http.MethodPost, nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("create carries an entity tag")
	}
}

func TestAPIETag_RequiresPrecondition(t *testing.T) {
	d := keyconstructor.NewDefaults(settings.Default())
	handler := testutil.NewMockHandler(testutil.NewJSONResponse(`{}`))
	h := decorated(mixins.Mixins{mixins.APIETag(d, nil)}, bookView{}, routers.ActionPartialUpdate,
		map[string]string{"pk": "1"}, handler)

	rec := do(h, http.MethodPatch, nil)
	if rec.Code != http.StatusPreconditionRequired {
		t.Errorf("status = %d, want 428", rec.Code)
	}
	if handler.GetRequestCount() != 0 {
		t.Error("handler ran without precondition")
	}
}

func TestAPIETag_ListFromQuery(t *testing.T) {
	db := testutil.OpenDB(t, &testutil.Record{})
	db.Create(&testutil.Record{Name: "a", Owner: "alice", Revision: 1})

	d := keyconstructor.NewDefaults(settings.Default())
	handler := testutil.NewMockHandler(testutil.NewJSONResponse(`[]`))
	all := decorated(mixins.Mixins{mixins.APIETag(d, nil)}, &testutil.RecordView{DB: db},
		routers.ActionList, nil, handler)
	owned := decorated(mixins.Mixins{mixins.APIETag(d, nil)}, &testutil.RecordView{DB: db, Owner: "alice"},
		routers.ActionList, nil, handler)

	a := do(all, http.MethodGet, nil).Header().Get("ETag")
	b := do(owned, http.MethodGet, nil).Header().Get("ETag")
	if a == "" || b == "" {
		t.Fatalf("missing etag: %q %q", a, b)
	}
	if a == b {
		t.Error("different list queries share an entity tag")
	}
}

func TestCacheResponse(t *testing.T) {
	s := settings.Default()
	d := keyconstructor.NewDefaults(s)
	m := mixins.Mixins{mixins.CacheResponse(d, cache.WithRegistry(cache.NewRegistry(s)))}
	handler := testutil.NewMockHandler(testutil.NewJSONResponse(`{"id":1}`))

	one := decorated(m, bookView{}, routers.ActionRetrieve, map[string]string{"pk": "1"}, handler)
	two := decorated(m, bookView{}, routers.ActionRetrieve, map[string]string{"pk": "2"}, handler)

	for i := 0; i < 3; i++ {
		rec := do(one, http.MethodGet, nil)
		if rec.Code != http.StatusOK || rec.Body.String() != `{"id":1}` {
			t.Fatalf("call %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}
	if handler.GetRequestCount() != 1 {
		t.Errorf("handler called %d times, want 1", handler.GetRequestCount())
	}

	do(two, http.MethodGet, nil)
	if handler.GetRequestCount() != 2 {
		t.Errorf("other object served from cache")
	}
}

func TestMixins_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := mixins.Mixins{
		mixins.Action(routers.ActionList, mark("outer")),
		mixins.Action(routers.ActionList, mark("inner")),
		mixins.Action(routers.ActionRetrieve, mark("other")),
	}
	h := m.DecorateAction(routers.ActionList, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}
