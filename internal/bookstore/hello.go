package bookstore

import (
	"net/http"
	"sync/atomic"

	"github.com/Sternrassler/restext/pkg/mixins"
)

// HelloViewSet greets. Its list is cached per query string, so
// /hello/?x=1 and /hello/?x=2 are stored separately.
type HelloViewSet struct {
	mixins.Mixins

	served atomic.Int64
}

// List says hi.
func (v *HelloViewSet) List(w http.ResponseWriter, r *http.Request) {
	v.served.Add(1)
	respond(w, r, http.StatusOK, "hi", nil)
}

// Served is the number of greetings actually rendered.
func (v *HelloViewSet) Served() int64 {
	return v.served.Load()
}
