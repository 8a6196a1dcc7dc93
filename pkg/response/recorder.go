// Package response buffers what a handler writes so wrappers can inspect,
// decorate or store the response before it reaches the client.
package response

import (
	"bytes"
	"net/http"
	"strconv"
)

// Recorder is an http.ResponseWriter that keeps status, headers and body
// in memory until WriteTo is called.
type Recorder struct {
	Code int
	Head http.Header
	Body bytes.Buffer

	wroteHeader bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{Head: make(http.Header)}
}

// Header returns the response headers.
func (rec *Recorder) Header() http.Header {
	if rec.Head == nil {
		rec.Head = make(http.Header)
	}
	return rec.Head
}

// Write appends to the buffered body.
func (rec *Recorder) Write(buf []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	return rec.Body.Write(buf)
}

// WriteHeader records the first status code written.
func (rec *Recorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	rec.Code = code
	rec.wroteHeader = true
}

// Status returns the recorded status, 200 if the handler wrote nothing.
func (rec *Recorder) Status() int {
	if rec.Code == 0 {
		return http.StatusOK
	}
	return rec.Code
}

// Finalize sets Content-Length from the buffered body unless the handler
// already did, so stored copies of the response report it.
func (rec *Recorder) Finalize() {
	h := rec.Header()
	if h.Get("Content-Length") == "" && bodyAllowed(rec.Status()) {
		h.Set("Content-Length", strconv.Itoa(rec.Body.Len()))
	}
}

// WriteTo sends the buffered response to w.
func (rec *Recorder) WriteTo(w http.ResponseWriter) error {
	CopyHeader(w.Header(), rec.Header())
	status := rec.Status()
	w.WriteHeader(status)
	if !bodyAllowed(status) {
		return nil
	}
	_, err := w.Write(rec.Body.Bytes())
	return err
}

// CopyHeader replaces every header of src in dst.
func CopyHeader(dst, src http.Header) {
	for k, vv := range src {
		dst[k] = append([]string(nil), vv...)
	}
}

func bodyAllowed(status int) bool {
	return status != http.StatusNotModified && status != http.StatusNoContent && status >= 200
}
