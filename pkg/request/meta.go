package request

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// MetaHeaderName converts a header name to its request-meta key
// (If-Match becomes HTTP_IF_MATCH). Content-Type and Content-Length are
// not prefixed.
func MetaHeaderName(header string) string {
	name := strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
	if name == "CONTENT_TYPE" || name == "CONTENT_LENGTH" {
		return name
	}
	return "HTTP_" + name
}

// Meta returns the CGI-style environment of r. Multiple header values are
// joined with a comma.
func Meta(r *http.Request) map[string]string {
	meta := map[string]string{
		"REQUEST_METHOD":  r.Method,
		"PATH_INFO":       r.URL.Path,
		"QUERY_STRING":    r.URL.RawQuery,
		"SERVER_PROTOCOL": r.Proto,
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		meta["REMOTE_ADDR"] = host
	}

	if r.Host != "" {
		host, port, err := net.SplitHostPort(r.Host)
		if err != nil {
			host = r.Host
			port = "80"
			if r.TLS != nil {
				port = "443"
			}
		}
		meta["SERVER_NAME"] = host
		meta["SERVER_PORT"] = port
	}

	if r.ContentLength > 0 {
		meta["CONTENT_LENGTH"] = strconv.FormatInt(r.ContentLength, 10)
	}

	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		meta[MetaHeaderName(name)] = strings.Join(values, ",")
	}

	return meta
}
