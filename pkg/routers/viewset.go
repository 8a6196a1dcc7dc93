package routers

import "net/http"

// Standard viewset actions.
const (
	ActionList          = "list"
	ActionCreate        = "create"
	ActionRetrieve      = "retrieve"
	ActionUpdate        = "update"
	ActionPartialUpdate = "partial_update"
	ActionDestroy       = "destroy"

	// ActionBulkPartialUpdate and ActionBulkDestroy act on every object of
	// the list route and require the bulk operation header.
	ActionBulkPartialUpdate = "partial_update_bulk"
	ActionBulkDestroy       = "destroy_bulk"
)

// Lister serves GET on the list route.
type Lister interface {
	List(w http.ResponseWriter, r *http.Request)
}

// Creator serves POST on the list route.
type Creator interface {
	Create(w http.ResponseWriter, r *http.Request)
}

// Retriever serves GET on the detail route.
type Retriever interface {
	Retrieve(w http.ResponseWriter, r *http.Request)
}

// Updater serves PUT on the detail route.
type Updater interface {
	Update(w http.ResponseWriter, r *http.Request)
}

// PartialUpdater serves PATCH on the detail route.
type PartialUpdater interface {
	PartialUpdate(w http.ResponseWriter, r *http.Request)
}

// Destroyer serves DELETE on the detail route.
type Destroyer interface {
	Destroy(w http.ResponseWriter, r *http.Request)
}

// BulkPartialUpdater serves PATCH on the list route.
type BulkPartialUpdater interface {
	PartialUpdateBulk(w http.ResponseWriter, r *http.Request)
}

// BulkDestroyer serves DELETE on the list route.
type BulkDestroyer interface {
	DestroyBulk(w http.ResponseWriter, r *http.Request)
}

// ActionDecorator viewsets wrap their action handlers, typically with the
// conditional and cache processors.
type ActionDecorator interface {
	DecorateAction(action string, h http.Handler) http.Handler
}

var (
	listMapping = map[string]string{
		http.MethodGet:    ActionList,
		http.MethodHead:   ActionList,
		http.MethodPost:   ActionCreate,
		http.MethodPatch:  ActionBulkPartialUpdate,
		http.MethodDelete: ActionBulkDestroy,
	}
	detailMapping = map[string]string{
		http.MethodGet:    ActionRetrieve,
		http.MethodHead:   ActionRetrieve,
		http.MethodPut:    ActionUpdate,
		http.MethodPatch:  ActionPartialUpdate,
		http.MethodDelete: ActionDestroy,
	}
)

// actionHandler returns the handler vs provides for action.
func actionHandler(vs any, action string) (http.Handler, bool) {
	switch action {
	case ActionList:
		if v, ok := vs.(Lister); ok {
			return http.HandlerFunc(v.List), true
		}
	case ActionCreate:
		if v, ok := vs.(Creator); ok {
			return http.HandlerFunc(v.Create), true
		}
	case ActionRetrieve:
		if v, ok := vs.(Retriever); ok {
			return http.HandlerFunc(v.Retrieve), true
		}
	case ActionUpdate:
		if v, ok := vs.(Updater); ok {
			return http.HandlerFunc(v.Update), true
		}
	case ActionPartialUpdate:
		if v, ok := vs.(PartialUpdater); ok {
			return http.HandlerFunc(v.PartialUpdate), true
		}
	case ActionDestroy:
		if v, ok := vs.(Destroyer); ok {
			return http.HandlerFunc(v.Destroy), true
		}
	case ActionBulkPartialUpdate:
		if v, ok := vs.(BulkPartialUpdater); ok {
			return http.HandlerFunc(v.PartialUpdateBulk), true
		}
	case ActionBulkDestroy:
		if v, ok := vs.(BulkDestroyer); ok {
			return http.HandlerFunc(v.DestroyBulk), true
		}
	}
	return nil, false
}

func isBulk(action string) bool {
	return action == ActionBulkPartialUpdate || action == ActionBulkDestroy
}
