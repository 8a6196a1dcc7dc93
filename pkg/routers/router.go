// Package routers maps viewsets onto URL patterns, including viewsets
// nested under the detail routes of other viewsets.
//
//	r := routers.NewRouter(s)
//	r.Register("users", &UserViewSet{}, "user").
//		Register("groups", &GroupViewSet{}, "users-group", []string{"user"})
//
// produces, among others,
//
//	^users/(?P<parent_lookup_user>[^/.]+)/groups/(?P<pk>[^/.]+)/$
//
// Routes are immutable descriptors; registering a viewset twice under
// different parents yields independent routes. Handler builds a chi mux
// dispatching every route with a view.Call bound to the request.
package routers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/precondition"
	"github.com/Sternrassler/restext/pkg/render"
	"github.com/Sternrassler/restext/pkg/request"
	"github.com/Sternrassler/restext/pkg/settings"
	"github.com/Sternrassler/restext/pkg/view"
)

// Router collects routes and serves them.
type Router struct {
	settings      settings.Settings
	trailingSlash bool
	rootView      bool
	renderers     map[string]string
	middlewares   []func(http.Handler) http.Handler
	logger        zerolog.Logger

	routes []Route
}

// Option configures a Router.
type Option func(*Router)

// WithTrailingSlash controls the trailing slash of every pattern.
// Enabled by default.
func WithTrailingSlash(enabled bool) Option {
	return func(r *Router) { r.trailingSlash = enabled }
}

// WithRootView controls the API root listing at "/". Enabled by default.
func WithRootView(enabled bool) Option {
	return func(r *Router) { r.rootView = enabled }
}

// WithRenderers sets the format tokens and media types offered to clients.
func WithRenderers(renderers map[string]string) Option {
	return func(r *Router) { r.renderers = renderers }
}

// WithMiddleware appends middleware run after request negotiation.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(r *Router) { r.middlewares = append(r.middlewares, mws...) }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// NewRouter returns an empty router.
func NewRouter(s settings.Settings, opts ...Option) *Router {
	r := &Router{
		settings:      s,
		trailingSlash: true,
		rootView:      true,
		logger:        logging.NewLogger("routers"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds the list and detail routes of vs under prefix. An empty
// basename is derived from the last prefix segment.
func (r *Router) Register(prefix string, vs any, basename string) *NestedRegistryItem {
	segs := splitPrefix(prefix)
	r.register(segs, vs, basename, nil)
	return &NestedRegistryItem{
		router:    r,
		ancestors: []ancestor{{prefix: segs, viewset: vs}},
	}
}

func (r *Router) register(segs []segment, vs any, basename string, parents []ParentLookup) {
	if basename == "" {
		for i := len(segs) - 1; i >= 0; i-- {
			if !segs[i].isCapture() {
				basename = segs[i].literal
				break
			}
		}
	}

	lookup := lookupOf(vs)
	detailSegs := append(append([]segment(nil), segs...), segment{kwarg: lookup.URLKwarg, regex: lookup.ValueRegex})

	for _, route := range []Route{
		buildRoute(basename+"-list", basename, vs, segs, parents, false, r.trailingSlash),
		buildRoute(basename+"-detail", basename, vs, detailSegs, parents, true, r.trailingSlash),
	} {
		if !bindsAny(route) {
			continue
		}
		r.logger.Debug().Str("route", route.Name).Str("regex", route.Regex).Msg("route registered")
		r.routes = append(r.routes, route)
	}
}

func bindsAny(route Route) bool {
	for _, action := range route.Mapping {
		if _, ok := actionHandler(route.ViewSet, action); ok {
			return true
		}
	}
	return false
}

// Routes returns every registered route in registration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// RootRoutes returns the routes listed by the API root: list routes
// without parent lookups.
func (r *Router) RootRoutes() []Route {
	var out []Route
	for _, route := range r.routes {
		if route.Detail || route.Nested() || r.hasParentLookupCapture(route) {
			continue
		}
		out = append(out, route)
	}
	return out
}

// hasParentLookupCapture catches captures named with the parent lookup
// prefix even on routes registered without nesting.
func (r *Router) hasParentLookupCapture(route Route) bool {
	prefix := r.settings.ParentLookupKwargName("")
	return prefix != "" && strings.Contains(route.Regex, "(?P<"+prefix)
}

// Handler builds the HTTP handler serving every route.
func (r *Router) Handler() http.Handler {
	mux := chi.NewRouter()

	mux.Use(
		logging.Middleware(r.logger),
		request.Middleware(request.Config{
			Languages: r.settings.Languages,
			Renderers: r.renderers,
		}),
	)
	mux.Use(r.middlewares...)

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.WriteError(w, render.NotFound())
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		render.WriteError(w, &render.Error{
			Status: http.StatusMethodNotAllowed,
			Detail: fmt.Sprintf("Method %q not allowed.", req.Method),
		})
	})

	if r.rootView {
		mux.Get("/", r.apiRoot)
		mux.Head("/", r.apiRoot)
	}

	for _, route := range r.routes {
		for method, action := range route.Mapping {
			h, ok := actionHandler(route.ViewSet, action)
			if !ok {
				continue
			}
			if d, ok := route.ViewSet.(ActionDecorator); ok {
				h = d.DecorateAction(action, h)
			}
			if isBulk(action) {
				h = precondition.BulkOperation(r.settings.DefaultBulkOperationHeaderName)(h)
			}
			mux.Method(method, route.Pattern, bind(route, action, h))
		}
	}
	return mux
}

// bind installs the view.Call and parent lookups of route on the request.
// Args carries the captures in URL order, Kwargs the same captures by name.
func bind(route Route, action string, next http.Handler) http.Handler {
	kwargNames := route.Kwargs()
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		args := make([]string, 0, len(kwargNames))
		kwargs := make(map[string]string, len(kwargNames))
		for _, name := range kwargNames {
			v := chi.URLParam(req, name)
			args = append(args, v)
			kwargs[name] = v
		}

		parents := make(map[string]string, len(route.ParentLookups))
		for _, p := range route.ParentLookups {
			parents[p.Lookup] = kwargs[p.Kwarg]
		}

		req = withRoute(req, route, parents)
		req = view.WithCall(req, &view.Call{
			View:   route.ViewSet,
			Method: action,
			Args:   args,
			Kwargs: kwargs,
		})
		next.ServeHTTP(w, req)
	})
}

// apiRoot lists the root routes as {basename: absolute URL}.
func (r *Router) apiRoot(w http.ResponseWriter, req *http.Request) {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	links := make(map[string]string)
	for _, route := range r.RootRoutes() {
		links[route.Basename] = scheme + "://" + req.Host + route.Pattern
	}
	if err := render.JSON(w, http.StatusOK, links); err != nil {
		hlog.FromRequest(req).Debug().Err(err).Msg("write api root")
	}
}

func lookupOf(vs any) view.Lookup {
	return view.LookupOf(vs)
}
