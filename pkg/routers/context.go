package routers

import (
	"context"
	"net/http"
)

type routeKey struct{}

type routeInfo struct {
	route   Route
	parents map[string]string
}

func withRoute(r *http.Request, route Route, parents map[string]string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), routeKey{}, routeInfo{route: route, parents: parents}))
}

// RouteFrom returns the route dispatching the current request.
func RouteFrom(ctx context.Context) (Route, bool) {
	info, ok := ctx.Value(routeKey{}).(routeInfo)
	return info.route, ok
}

// ParentsQueryFrom returns {query lookup: captured value} for the
// ancestors of the current route, e.g. {"user": "42"}. It is empty for
// routes that are not nested.
func ParentsQueryFrom(ctx context.Context) map[string]string {
	info, ok := ctx.Value(routeKey{}).(routeInfo)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(info.parents))
	for k, v := range info.parents {
		out[k] = v
	}
	return out
}
