// Package precondition rejects unsafe requests that arrive without the
// conditional headers the resource requires.
package precondition

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/render"
	"github.com/Sternrassler/restext/pkg/request"
)

// Map lists the request headers each HTTP method requires.
type Map map[string][]string

// DefaultMap requires If-Match on PUT, PATCH and DELETE.
func DefaultMap() Map {
	return Map{
		http.MethodPut:    {"If-Match"},
		http.MethodPatch:  {"If-Match"},
		http.MethodDelete: {"If-Match"},
	}
}

// Required returns the headers method requires. Lookup ignores case.
func (m Map) Required(method string) []string {
	if headers, ok := m[method]; ok {
		return headers
	}
	upper := strings.ToUpper(method)
	for k, headers := range m {
		if strings.ToUpper(k) == upper {
			return headers
		}
	}
	return nil
}

// Gate enforces a Map.
type Gate struct {
	m      Map
	logger zerolog.Logger
}

// NewGate returns a gate for m. A nil map means DefaultMap.
func NewGate(m Map) *Gate {
	if m == nil {
		m = DefaultMap()
	}
	return &Gate{m: m, logger: logging.NewLogger("precondition")}
}

// Check returns nil when every required header is present, otherwise a
// 428 *render.Error naming the missing ones.
func (g *Gate) Check(r *http.Request) error {
	method := strings.ToUpper(r.Method)
	required := g.m.Required(method)
	if len(required) == 0 {
		return nil
	}

	meta := request.Meta(r)
	var missing []string
	for _, h := range required {
		if _, ok := meta[request.MetaHeaderName(h)]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	PreconditionRequired.WithLabelValues(method).Inc()
	return render.PreconditionRequired(fmt.Sprintf(
		"Precondition required. This %q request is required to be conditional. "+
			"Try again by providing all following HTTP headers: \"%s\".",
		method, strings.Join(missing, `", "`),
	))
}

// Wrap renders Check failures and otherwise calls next.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r); err != nil {
			logger := logging.ForRequest(g.logger, r)
			logger.Debug().Err(err).Msg("precondition required")
			render.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
