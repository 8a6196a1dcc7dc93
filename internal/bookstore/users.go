package bookstore

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/Sternrassler/restext/pkg/mixins"
	"github.com/Sternrassler/restext/pkg/pagination"
	"github.com/Sternrassler/restext/pkg/routers"
	"github.com/Sternrassler/restext/pkg/view"
)

// UserViewSet serves /users/.
type UserViewSet struct {
	mixins.Mixins
	DB *gorm.DB
}

// Lookup implements view.LookupDescriber. User ids are numeric, which
// also constrains the parent capture of nested routes.
func (v *UserViewSet) Lookup() view.Lookup {
	return view.Lookup{Field: "id", URLKwarg: "pk", ValueRegex: `[0-9]+`}
}

// Paginator implements view.Paginated.
func (v *UserViewSet) Paginator() pagination.Paginator {
	return pagination.LimitOffset{DefaultLimit: 50, MaxLimit: 200}
}

// ListQuery implements view.ListQuerier.
func (v *UserViewSet) ListQuery(call *view.Call) *gorm.DB {
	q := v.DB.Model(&User{}).Order("id")
	if call.Request != nil {
		q = q.Scopes(v.Paginator().Scope(call.Request))
	}
	return q
}

// List returns users.
func (v *UserViewSet) List(w http.ResponseWriter, r *http.Request) {
	var users []User
	err := v.ListQuery(callOf(r)).Find(&users).Error
	respond(w, r, http.StatusOK, users, err)
}

// Retrieve returns one user.
func (v *UserViewSet) Retrieve(w http.ResponseWriter, r *http.Request) {
	var user User
	err := v.DB.Where("id = ?", callOf(r).Kwargs["pk"]).Take(&user).Error
	respond(w, r, http.StatusOK, user, err)
}

// groupParentColumns maps parent query lookups to group columns.
var groupParentColumns = map[string]string{
	"user": "user_id",
}

// GroupViewSet serves the groups of one user under
// /users/{parent_lookup_user}/groups/.
type GroupViewSet struct {
	mixins.Mixins
	DB *gorm.DB
}

// ListQuery implements view.ListQuerier, filtered by the parent captures.
func (v *GroupViewSet) ListQuery(call *view.Call) *gorm.DB {
	q := v.DB.Model(&Group{})
	if call.Request == nil {
		return q
	}
	for lookup, value := range routers.ParentsQueryFrom(call.Request.Context()) {
		if column, ok := groupParentColumns[lookup]; ok {
			q = q.Where(column+" = ?", value)
		}
	}
	return q
}

// Paginator implements view.Paginated.
func (v *GroupViewSet) Paginator() pagination.Paginator {
	return pagination.Cursor{PageSize: 50}
}

// List returns one page of the groups of the parent user.
func (v *GroupViewSet) List(w http.ResponseWriter, r *http.Request) {
	var groups []Group
	err := v.ListQuery(callOf(r)).Scopes(v.Paginator().Scope(r)).Find(&groups).Error
	respond(w, r, http.StatusOK, groups, err)
}

// Retrieve returns one group of the parent user.
func (v *GroupViewSet) Retrieve(w http.ResponseWriter, r *http.Request) {
	call := callOf(r)
	var group Group
	err := v.ListQuery(call).Where("id = ?", call.Kwargs["pk"]).Take(&group).Error
	respond(w, r, http.StatusOK, group, err)
}

// DestroyBulk deletes every group of the parent user.
func (v *GroupViewSet) DestroyBulk(w http.ResponseWriter, r *http.Request) {
	err := v.ListQuery(callOf(r)).Delete(&Group{}).Error
	respond(w, r, http.StatusNoContent, nil, err)
}
