package precondition

import (
	"fmt"
	"net/http"

	"github.com/Sternrassler/restext/pkg/render"
)

// BulkOperation rejects PUT, PATCH and DELETE requests that do not carry
// headerName. It guards list routes where those methods touch every row.
func BulkOperation(headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				if r.Header.Get(headerName) == "" {
					render.WriteError(w, render.BadRequest(fmt.Sprintf(
						"Header %q should be provided for bulk operation.", headerName)))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
