package bookstore

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/Sternrassler/restext/pkg/cache"
	"github.com/Sternrassler/restext/pkg/keybits"
	"github.com/Sternrassler/restext/pkg/keyconstructor"
	"github.com/Sternrassler/restext/pkg/mixins"
	"github.com/Sternrassler/restext/pkg/routers"
	"github.com/Sternrassler/restext/pkg/settings"
)

// App is the wired bookstore API.
type App struct {
	Books  *BookViewSet
	Users  *UserViewSet
	Groups *GroupViewSet
	Hello  *HelloViewSet

	router       *routers.Router
	registry     *cache.Registry
	ownsRegistry bool
}

type options struct {
	registry      *cache.Registry
	routerOptions []routers.Option
}

// Option configures New.
type Option func(*options)

// WithRegistry shares a cache registry. By default the app opens its own
// from the settings and closes it in Close.
func WithRegistry(r *cache.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithRouterOptions passes options to the router.
func WithRouterOptions(opts ...routers.Option) Option {
	return func(o *options) { o.routerOptions = append(o.routerOptions, opts...) }
}

// New wires the viewsets against db. Tables must already exist.
func New(db *gorm.DB, s settings.Settings, opts ...Option) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{registry: o.registry}
	if app.registry == nil {
		app.registry = cache.NewRegistry(s)
		app.ownsRegistry = true
	}
	cacheOpts := []cache.Option{cache.WithSettings(s), cache.WithRegistry(app.registry)}

	d := keyconstructor.NewDefaults(s)
	memo := keyconstructor.WithMemoizeForRequest(s.DefaultKeyConstructorMemoizeForRequest)

	// Cached book responses are keyed by the rows they render so a write
	// never replays a stale body.
	bookKeys := d
	bookKeys.ObjectCacheKeyFunc = d.ObjectCacheKeyFunc.Extend("book_object_cache_key").
		Bit("instance", keybits.RetrieveModel{}, keybits.Params{})
	bookKeys.ListCacheKeyFunc = d.ListCacheKeyFunc.Extend("book_list_cache_key").
		Bit("rows", keybits.ListModel{}, keybits.Params{})

	books, err := NewBookViewSet(db, mixins.Mixins{
		mixins.APIETag(d, nil),
		mixins.CacheResponse(bookKeys, cacheOpts...),
	})
	if err != nil {
		return nil, err
	}
	app.Books = books

	app.Users = &UserViewSet{DB: db, Mixins: mixins.Mixins{
		mixins.ETag(d),
		mixins.CacheResponse(d, cacheOpts...),
	}}
	app.Groups = &GroupViewSet{DB: db, Mixins: mixins.Mixins{
		mixins.APIETag(d, nil),
	}}

	helloKey := keyconstructor.NewDefaultKeyConstructor(memo).
		Bit("query_params", keybits.QueryParams{}, keybits.All)
	app.Hello = &HelloViewSet{Mixins: mixins.Mixins{
		mixins.Action(routers.ActionList, cache.NewProcessor(helloKey, cacheOpts...).Wrap),
	}}

	app.router = routers.NewRouter(s, o.routerOptions...)
	app.router.Register("books", app.Books, "book")
	app.router.Register("users", app.Users, "user").
		Register("groups", app.Groups, "users-group", []string{"user"})
	app.router.Register("hello", app.Hello, "hello")

	return app, nil
}

// Handler serves the API.
func (a *App) Handler() http.Handler {
	return a.router.Handler()
}

// Routes lists the registered routes.
func (a *App) Routes() []routers.Route {
	return a.router.Routes()
}

// Close releases the cache registry if the app opened it.
func (a *App) Close() error {
	if !a.ownsRegistry {
		return nil
	}
	if err := a.registry.Close(); err != nil {
		return fmt.Errorf("close bookstore: %w", err)
	}
	return nil
}

// Open migrates db, optionally seeds it and wires the app.
func Open(db *gorm.DB, s settings.Settings, seed bool, opts ...Option) (*App, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if seed {
		if err := Seed(db); err != nil {
			return nil, err
		}
	}
	return New(db, s, opts...)
}
