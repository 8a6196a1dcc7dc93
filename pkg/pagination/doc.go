// Package pagination declares how list views split their results.
//
// A Paginator names the query parameters it reads, so that response cache
// keys can vary on exactly those parameters, and produces a gorm scope that
// applies the requested page to a query set.
//
// Example usage:
//
//	p := pagination.PageNumber{PageSize: 20, PageSizeQueryParam: "page_size"}
//	var books []Book
//	db.Scopes(p.Scope(r)).Find(&books)
//
// Three styles are provided:
//   - PageNumber: ?page=N (and optionally ?page_size=M)
//   - LimitOffset: ?limit=N&offset=M
//   - Cursor: ?cursor=<opaque> ordered on a unique column
package pagination
