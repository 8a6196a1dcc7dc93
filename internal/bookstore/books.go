package bookstore

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/Sternrassler/restext/pkg/fields"
	"github.com/Sternrassler/restext/pkg/mixins"
	"github.com/Sternrassler/restext/pkg/pagination"
	"github.com/Sternrassler/restext/pkg/view"
)

// bookFields are the client-facing fields of a book.
var bookFields = []fields.Field{
	{Name: "id", ReadOnly: true},
	{Name: "title"},
	{Name: "author"},
	{Name: "revision", ReadOnly: true},
}

// BookViewSet serves /books/. Reads carry model-derived entity tags and
// are cached per revision; writes require If-Match.
type BookViewSet struct {
	mixins.Mixins

	DB    *gorm.DB
	model fields.Model
}

// NewBookViewSet returns the viewset decorated with m.
func NewBookViewSet(db *gorm.DB, m mixins.Mixins) (*BookViewSet, error) {
	model, err := fields.ModelColumns(db, &Book{})
	if err != nil {
		return nil, fmt.Errorf("book columns: %w", err)
	}
	return &BookViewSet{Mixins: m, DB: db, model: model}, nil
}

// VersionColumn implements view.Versioned.
func (v *BookViewSet) VersionColumn() string { return "revision" }

// Paginator implements view.Paginated.
func (v *BookViewSet) Paginator() pagination.Paginator {
	return pagination.PageNumber{PageSize: 20, PageSizeQueryParam: "page_size", MaxPageSize: 100}
}

// ListQuery implements view.ListQuerier.
func (v *BookViewSet) ListQuery(call *view.Call) *gorm.DB {
	q := v.DB.Model(&Book{}).Order("id")
	if call.Request != nil {
		q = q.Scopes(v.Paginator().Scope(call.Request))
	}
	return q
}

// ObjectQuery implements view.ObjectQuerier.
func (v *BookViewSet) ObjectQuery(call *view.Call) *gorm.DB {
	return v.DB.Model(&Book{}).Where("id = ?", call.Kwargs["pk"])
}

// List returns one page of books.
func (v *BookViewSet) List(w http.ResponseWriter, r *http.Request) {
	var books []Book
	err := v.ListQuery(callOf(r)).Find(&books).Error
	respond(w, r, http.StatusOK, books, err)
}

// Create adds a book.
func (v *BookViewSet) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if err := decode(w, r, &in); err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	book := Book{Title: in.Title, Author: in.Author, Revision: 1}
	err := v.DB.Create(&book).Error
	respond(w, r, http.StatusCreated, book, err)
}

// Retrieve returns one book.
func (v *BookViewSet) Retrieve(w http.ResponseWriter, r *http.Request) {
	book, err := v.get(callOf(r))
	respond(w, r, http.StatusOK, book, err)
}

// Update replaces the writable fields of a book.
func (v *BookViewSet) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if err := decode(w, r, &in); err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	call := callOf(r)
	book, err := v.write(call, map[string]any{"title": in.Title, "author": in.Author})
	respond(w, r, http.StatusOK, book, err)
}

// PartialUpdate writes only the fields the client sent.
func (v *BookViewSet) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := decode(w, r, &data); err != nil {
		respond(w, r, 0, nil, err)
		return
	}

	updates := fields.PartialUpdateValues(data, nil, bookFields, v.model)
	book, err := v.write(callOf(r), updates)
	respond(w, r, http.StatusOK, book, err)
}

// Destroy deletes a book.
func (v *BookViewSet) Destroy(w http.ResponseWriter, r *http.Request) {
	res := v.ObjectQuery(callOf(r)).Delete(&Book{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
	}
	respond(w, r, http.StatusNoContent, nil, err)
}

func (v *BookViewSet) get(call *view.Call) (Book, error) {
	var book Book
	err := v.ObjectQuery(call).Take(&book).Error
	return book, err
}

// write applies updates and bumps the revision. An empty update still
// bumps it so the entity tag moves.
func (v *BookViewSet) write(call *view.Call, updates map[string]any) (Book, error) {
	updates["revision"] = gorm.Expr("revision + 1")
	res := v.ObjectQuery(call).Updates(updates)
	if res.Error != nil {
		return Book{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Book{}, gorm.ErrRecordNotFound
	}
	return v.get(call)
}
