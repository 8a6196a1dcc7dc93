package routers

import (
	"fmt"
)

type ancestor struct {
	prefix  []segment
	viewset any
}

// NestedRegistryItem is the handle returned by a registration. Registering
// on it nests the new viewset under the detail route of the previous one.
type NestedRegistryItem struct {
	router    *Router
	ancestors []ancestor
}

// Register nests vs under the item. parentsQueryLookups names, from the
// root down, the query lookup each ancestor identifier filters on; it
// needs one entry per ancestor. The capture of each ancestor is named
// with the configured parent lookup prefix and uses the ancestor's
// lookup value regex.
//
// Register panics when the number of lookups does not match the depth.
func (n *NestedRegistryItem) Register(prefix string, vs any, basename string, parentsQueryLookups []string) *NestedRegistryItem {
	if len(parentsQueryLookups) != len(n.ancestors) {
		panic(fmt.Sprintf("routers: %q needs %d parent query lookups, got %d",
			prefix, len(n.ancestors), len(parentsQueryLookups)))
	}

	var segs []segment
	parents := make([]ParentLookup, 0, len(n.ancestors))
	for i, a := range n.ancestors {
		kwarg := n.router.settings.ParentLookupKwargName(parentsQueryLookups[i])
		segs = append(segs, a.prefix...)
		segs = append(segs, segment{kwarg: kwarg, regex: lookupOf(a.viewset).ValueRegex})
		parents = append(parents, ParentLookup{Kwarg: kwarg, Lookup: parentsQueryLookups[i]})
	}
	own := splitPrefix(prefix)
	segs = append(segs, own...)

	n.router.register(segs, vs, basename, parents)

	ancestors := make([]ancestor, len(n.ancestors), len(n.ancestors)+1)
	copy(ancestors, n.ancestors)
	return &NestedRegistryItem{
		router:    n.router,
		ancestors: append(ancestors, ancestor{prefix: own, viewset: vs}),
	}
}

// Depth is the number of ancestors a child registered on n will have.
func (n *NestedRegistryItem) Depth() int {
	return len(n.ancestors)
}
