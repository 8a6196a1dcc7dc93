package routers

import (
	"strings"
)

// segment is a literal path part or a named capture.
type segment struct {
	literal string
	kwarg   string
	regex   string
}

func (s segment) isCapture() bool { return s.kwarg != "" }

// ParentLookup binds a URL capture to the query lookup it filters on.
type ParentLookup struct {
	// Kwarg is the capture name, e.g. "parent_lookup_user".
	Kwarg string

	// Lookup is the query lookup of the child, e.g. "user".
	Lookup string
}

// Route is an immutable description of one URL pattern.
type Route struct {
	// Name is "<basename>-list" or "<basename>-detail".
	Name string

	Basename string

	// Prefix is the registration prefix including ancestor segments.
	Prefix string

	// Regex is the anchored pattern with named groups, e.g.
	// ^users/(?P<parent_lookup_user>[^/.]+)/groups/$
	Regex string

	// Pattern is the chi pattern, e.g.
	// /users/{parent_lookup_user:[^/.]+}/groups/
	Pattern string

	// Mapping maps HTTP methods to viewset actions.
	Mapping map[string]string

	Detail bool

	// ParentLookups lists ancestor captures from the root down.
	ParentLookups []ParentLookup

	ViewSet any
}

// Nested reports whether the route has parent lookup captures.
func (r Route) Nested() bool { return len(r.ParentLookups) > 0 }

// Kwargs returns the capture names in URL order.
func (r Route) Kwargs() []string {
	names := make([]string, 0, len(r.ParentLookups)+1)
	for _, p := range r.ParentLookups {
		names = append(names, p.Kwarg)
	}
	if r.Detail {
		names = append(names, lookupOf(r.ViewSet).URLKwarg)
	}
	return names
}

func buildRoute(name, basename string, vs any, segs []segment, parents []ParentLookup, detail, trailingSlash bool) Route {
	prefixSegs := segs
	if detail {
		prefixSegs = segs[:len(segs)-1]
	}

	regex := "^" + joinRegex(segs)
	pattern := ""
	for _, s := range segs {
		if s.isCapture() {
			pattern += "/{" + s.kwarg + ":" + s.regex + "}"
		} else {
			pattern += "/" + s.literal
		}
	}
	if trailingSlash {
		regex += "/"
		pattern += "/"
	}
	regex += "$"

	mapping := listMapping
	if detail {
		mapping = detailMapping
	}
	m := make(map[string]string, len(mapping))
	for method, action := range mapping {
		m[method] = action
	}

	return Route{
		Name:          name,
		Basename:      basename,
		Prefix:        joinRegex(prefixSegs),
		Regex:         regex,
		Pattern:       pattern,
		Mapping:       m,
		Detail:        detail,
		ParentLookups: append([]ParentLookup(nil), parents...),
		ViewSet:       vs,
	}
}

func joinRegex(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		if s.isCapture() {
			parts[i] = "(?P<" + s.kwarg + ">" + s.regex + ")"
		} else {
			parts[i] = s.literal
		}
	}
	return strings.Join(parts, "/")
}

func splitPrefix(prefix string) []segment {
	var segs []segment
	for _, part := range strings.Split(strings.Trim(prefix, "/"), "/") {
		if part != "" {
			segs = append(segs, segment{literal: part})
		}
	}
	return segs
}
