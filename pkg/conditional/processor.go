// Package conditional evaluates If-Match and If-None-Match against an
// entity tag computed for the current view call, short-circuits with 304
// or 412, and attaches the ETag header to every response it produces.
package conditional

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/precondition"
	"github.com/Sternrassler/restext/pkg/render"
	"github.com/Sternrassler/restext/pkg/response"
	"github.com/Sternrassler/restext/pkg/view"
)

// Processor is the entity tag wrapper of one view method.
type Processor struct {
	etag    view.KeyFunc
	rebuild bool
	logger  zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithRebuildAfterMethodEvaluation recomputes the tag after the handler
// ran, for handlers that change the resource.
func WithRebuildAfterMethodEvaluation(rebuild bool) Option {
	return func(p *Processor) { p.rebuild = rebuild }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// New returns a processor computing tags with etag.
func New(etag view.KeyFunc, opts ...Option) *Processor {
	p := &Processor{
		etag:   etag,
		logger: logging.NewLogger("conditional"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wrap returns next guarded by the processor.
func (p *Processor) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.ForRequest(p.logger, r)
		call := callFor(r)

		ifMatch, errMatch := ParseETags(r.Header.Get("If-Match"))
		ifNoneMatch, errNone := ParseETags(r.Header.Get("If-None-Match"))
		if errMatch != nil || errNone != nil {
			logger.Warn().
				Str("if_match", r.Header.Get("If-Match")).
				Str("if_none_match", r.Header.Get("If-None-Match")).
				Msg("discarding malformed conditional headers")
			ifMatch, ifNoneMatch = nil, nil
		}

		tag, err := p.etag.Key(call)
		if err != nil {
			logger.Error().Err(err).Msg("compute entity tag")
			render.WriteError(w, err)
			return
		}
		quoted := QuoteETag(tag)

		if status := evaluate(r.Method, quoted, tag != "", ifMatch, ifNoneMatch); status != 0 {
			ConditionalResponses.WithLabelValues(strconv.Itoa(status)).Inc()
			logger.Debug().Str("etag", quoted).Int("status", status).Msg("precondition short-circuit")
			w.Header().Set("ETag", quoted)
			w.WriteHeader(status)
			return
		}

		rec := response.NewRecorder()
		next.ServeHTTP(rec, r)

		if p.rebuild {
			if tag, err = p.etag.Key(call); err != nil {
				logger.Error().Err(err).Msg("rebuild entity tag")
				render.WriteError(w, err)
				return
			}
			quoted = QuoteETag(tag)
		}
		rec.Header().Set("ETag", quoted)
		rec.Finalize()
		if err := rec.WriteTo(w); err != nil {
			logger.Debug().Err(err).Msg("write response")
		}
	})
}

// evaluate returns the short-circuit status, or 0 to run the handler.
func evaluate(method, current string, present bool, ifMatch, ifNoneMatch []string) int {
	if !present {
		return 0
	}
	if len(ifNoneMatch) > 0 && weakMatch(current, ifNoneMatch) {
		if isSafe(method) {
			return http.StatusNotModified
		}
		return http.StatusPreconditionFailed
	}
	if len(ifMatch) > 0 && !listed(current, ifMatch) {
		return http.StatusPreconditionFailed
	}
	return 0
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func callFor(r *http.Request) *view.Call {
	if call := view.CallFrom(r.Context()); call != nil {
		return call
	}
	return &view.Call{Request: r}
}

// APIProcessor runs a precondition gate before the entity tag wrapper.
// A missing required header is answered with 428 before any tag is
// computed.
type APIProcessor struct {
	gate *precondition.Gate
	*Processor
}

// NewAPI returns a processor for API views. A nil map means
// precondition.DefaultMap.
func NewAPI(etag view.KeyFunc, m precondition.Map, opts ...Option) *APIProcessor {
	return &APIProcessor{
		gate:      precondition.NewGate(m),
		Processor: New(etag, opts...),
	}
}

// Wrap returns next guarded by the gate and then the processor.
func (p *APIProcessor) Wrap(next http.Handler) http.Handler {
	return p.gate.Wrap(p.Processor.Wrap(next))
}
