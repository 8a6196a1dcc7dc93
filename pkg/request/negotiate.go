package request

import (
	"net/http"
	"sort"
	"strings"

	"github.com/munnerz/goautoneg"
	"golang.org/x/text/language"
)

// FormatQueryParam overrides Accept-based format negotiation.
const FormatQueryParam = "format"

// DefaultRenderers maps renderer format tokens to media types.
var DefaultRenderers = map[string]string{
	"json": "application/json",
}

// Config drives Middleware.
type Config struct {
	// Languages are the supported language tags, the first is the fallback.
	Languages []string

	// Renderers maps format tokens to media types.
	Renderers map[string]string

	// DefaultFormat is used when negotiation finds nothing acceptable.
	DefaultFormat string
}

// Middleware installs a fresh State on every request.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	n := newNegotiator(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := NewState(n.language(r), n.format(r))
			next.ServeHTTP(w, WithState(r, s))
		})
	}
}

type negotiator struct {
	languages     []string
	matcher       language.Matcher
	formats       map[string]string
	byMedia       map[string]string
	media         []string
	defaultFormat string
}

func newNegotiator(cfg Config) *negotiator {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, language.Make(l))
	}

	renderers := cfg.Renderers
	if len(renderers) == 0 {
		renderers = DefaultRenderers
	}
	n := &negotiator{
		languages:     langs,
		matcher:       language.NewMatcher(tags),
		formats:       renderers,
		byMedia:       make(map[string]string, len(renderers)),
		defaultFormat: cfg.DefaultFormat,
	}
	if n.defaultFormat == "" {
		n.defaultFormat = "json"
	}
	for format, media := range renderers {
		n.byMedia[media] = format
		n.media = append(n.media, media)
	}
	// wildcard Accept values pick the first alternative
	sort.Slice(n.media, func(i, j int) bool {
		di, dj := n.byMedia[n.media[i]] == n.defaultFormat, n.byMedia[n.media[j]] == n.defaultFormat
		if di != dj {
			return di
		}
		return n.media[i] < n.media[j]
	})
	return n
}

func (n *negotiator) language(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return strings.ToLower(n.languages[0])
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return strings.ToLower(n.languages[0])
	}
	_, index, _ := n.matcher.Match(tags...)
	return strings.ToLower(n.languages[index])
}

func (n *negotiator) format(r *http.Request) string {
	if f := r.URL.Query().Get(FormatQueryParam); f != "" {
		if _, ok := n.formats[f]; ok {
			return f
		}
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return n.defaultFormat
	}
	if media := goautoneg.Negotiate(accept, n.media); media != "" {
		return n.byMedia[media]
	}
	return n.defaultFormat
}
