package cache

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/restext/pkg/response"
)

// Entry is a rendered response as stored in a backend.
type Entry struct {
	// Body is the rendered response body
	Body []byte `json:"body"`

	// StatusCode is the HTTP status code of the rendered response
	StatusCode int `json:"status_code"`

	// Headers are the response headers, Content-Length included
	Headers http.Header `json:"headers"`

	// CachedAt is when the response was stored
	CachedAt time.Time `json:"cached_at"`
}

// EntryFromRecorder copies a finalized recorder into an Entry.
func EntryFromRecorder(rec *response.Recorder) *Entry {
	return &Entry{
		Body:       append([]byte(nil), rec.Body.Bytes()...),
		StatusCode: rec.Status(),
		Headers:    rec.Header().Clone(),
		CachedAt:   time.Now(),
	}
}

// WriteTo replays the entry on w without re-rendering.
func (e *Entry) WriteTo(w http.ResponseWriter) error {
	response.CopyHeader(w.Header(), e.Headers)
	w.WriteHeader(e.StatusCode)
	if len(e.Body) == 0 {
		return nil
	}
	_, err := w.Write(e.Body)
	return err
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}

func encodeEntry(e *Entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if e.StatusCode == 0 {
		return nil, fmt.Errorf("%w: missing status code", ErrInvalidEntry)
	}
	return &e, nil
}
