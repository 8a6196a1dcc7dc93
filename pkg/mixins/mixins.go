// Package mixins attaches the conditional and cache processors to viewset
// actions with the default key and entity tag functions.
//
// A viewset embeds Mixins and the router calls DecorateAction for every
// action it dispatches:
//
//	type BookViewSet struct {
//		mixins.Mixins
//		DB *gorm.DB
//	}
//
//	vs := &BookViewSet{Mixins: mixins.Mixins{
//		mixins.ETag(defaults),
//		mixins.CacheResponse(defaults),
//	}}
package mixins

import (
	"net/http"

	"github.com/Sternrassler/restext/pkg/cache"
	"github.com/Sternrassler/restext/pkg/conditional"
	"github.com/Sternrassler/restext/pkg/keyconstructor"
	"github.com/Sternrassler/restext/pkg/precondition"
	"github.com/Sternrassler/restext/pkg/routers"
)

// Mixin decorates the handler of one action. Actions it does not know
// pass through unchanged.
type Mixin interface {
	Wrap(action string, h http.Handler) http.Handler
}

// Mixins applies several mixins; the first one is the outermost.
type Mixins []Mixin

// DecorateAction implements routers.ActionDecorator.
func (m Mixins) DecorateAction(action string, h http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i].Wrap(action, h)
	}
	return h
}

// actions maps action names to the middleware wrapping them.
type actions map[string]func(http.Handler) http.Handler

func (a actions) Wrap(action string, h http.Handler) http.Handler {
	if wrap, ok := a[action]; ok {
		return wrap(h)
	}
	return h
}

// ETag computes entity tags for list, retrieve, update, partial_update and
// destroy. Updates rebuild the tag after the handler ran.
func ETag(d keyconstructor.Defaults, opts ...conditional.Option) Mixin {
	list := conditional.New(d.ListETagFunc, opts...)
	object := conditional.New(d.ObjectETagFunc, opts...)
	update := conditional.New(d.ObjectETagFunc, withRebuild(opts)...)

	return actions{
		routers.ActionList:          list.Wrap,
		routers.ActionRetrieve:      object.Wrap,
		routers.ActionDestroy:       object.Wrap,
		routers.ActionUpdate:        update.Wrap,
		routers.ActionPartialUpdate: update.Wrap,
	}
}

// APIETag is ETag over the model-derived tag functions, with unsafe
// methods gated on the headers m requires. A nil m uses
// precondition.DefaultMap.
func APIETag(d keyconstructor.Defaults, m precondition.Map, opts ...conditional.Option) Mixin {
	list := conditional.NewAPI(d.APIListETagFunc, m, opts...)
	object := conditional.NewAPI(d.APIObjectETagFunc, m, opts...)
	update := conditional.NewAPI(d.APIObjectETagFunc, m, withRebuild(opts)...)

	return actions{
		routers.ActionList:          list.Wrap,
		routers.ActionRetrieve:      object.Wrap,
		routers.ActionDestroy:       object.Wrap,
		routers.ActionUpdate:        update.Wrap,
		routers.ActionPartialUpdate: update.Wrap,
	}
}

// CacheResponse caches list and retrieve responses.
func CacheResponse(d keyconstructor.Defaults, opts ...cache.Option) Mixin {
	return actions{
		routers.ActionList:     cache.NewProcessor(d.ListCacheKeyFunc, opts...).Wrap,
		routers.ActionRetrieve: cache.NewProcessor(d.ObjectCacheKeyFunc, opts...).Wrap,
	}
}

// Action applies wrap to a single action.
func Action(action string, wrap func(http.Handler) http.Handler) Mixin {
	return actions{action: wrap}
}

func withRebuild(opts []conditional.Option) []conditional.Option {
	out := make([]conditional.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, conditional.WithRebuildAfterMethodEvaluation(true))
}
