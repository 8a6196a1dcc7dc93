package conditional

import (
	"errors"
	"strings"
)

// ErrMalformedETags is returned by ParseETags for headers that are not a
// valid entity tag list.
var ErrMalformedETags = errors.New("malformed entity tag list")

// Any is the wildcard entity tag.
const Any = "*"

// ParseETags parses an If-Match or If-None-Match value into its entity
// tags, keeping quotes and weak prefixes. "*" parses to []string{"*"}.
// An empty header yields nil.
func ParseETags(header string) ([]string, error) {
	s := strings.TrimSpace(header)
	if s == "" {
		return nil, nil
	}
	if s == Any {
		return []string{Any}, nil
	}

	var tags []string
	for {
		s = strings.TrimLeft(s, " \t")
		tag, rest, ok := scanETag(s)
		if !ok {
			return nil, ErrMalformedETags
		}
		tags = append(tags, tag)

		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return tags, nil
		}
		if rest[0] != ',' {
			return nil, ErrMalformedETags
		}
		s = rest[1:]
		if strings.TrimSpace(s) == "" {
			return nil, ErrMalformedETags
		}
	}
}

// scanETag reads one entity-tag from the start of s.
func scanETag(s string) (tag, rest string, ok bool) {
	start := 0
	if strings.HasPrefix(s, "W/") {
		start = 2
	}
	if len(s) <= start || s[start] != '"' {
		return "", "", false
	}
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			return s[:i+1], s[i+1:], true
		}
		// etagc = %x21 / %x23-7E / obs-text
		if c < 0x21 || c == 0x7f {
			return "", "", false
		}
	}
	return "", "", false
}

// QuoteETag returns tag as a quoted entity tag. Values that are already
// quoted, weak or not, pass through unchanged.
func QuoteETag(tag string) string {
	if isQuoted(tag) {
		return tag
	}
	return `"` + strings.ReplaceAll(tag, `"`, `\"`) + `"`
}

func isQuoted(tag string) bool {
	t := strings.TrimPrefix(tag, "W/")
	return len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' && !strings.Contains(t[1:len(t)-1], `"`)
}

func opaque(tag string) string {
	return strings.TrimPrefix(tag, "W/")
}

// weakMatch compares opaque tags ignoring weakness (If-None-Match).
func weakMatch(current string, tags []string) bool {
	for _, t := range tags {
		if t == Any || opaque(t) == opaque(current) {
			return true
		}
	}
	return false
}

// listed reports whether current appears verbatim in tags, weak prefix
// included, or tags holds the wildcard (If-Match).
func listed(current string, tags []string) bool {
	for _, t := range tags {
		if t == Any || t == current {
			return true
		}
	}
	return false
}
