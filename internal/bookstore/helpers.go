package bookstore

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"gorm.io/gorm"

	"github.com/Sternrassler/restext/pkg/render"
	"github.com/Sternrassler/restext/pkg/view"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON object body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return render.BadRequest("JSON parse error - " + err.Error())
	}
	return nil
}

// respond renders v, or err through render.WriteError.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = render.NotFound()
		}
		var apiErr *render.Error
		if !errors.As(err, &apiErr) {
			hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		}
		render.WriteError(w, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	if err := render.JSON(w, status, v); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("write response")
	}
}

// callOf returns the call the router bound to r.
func callOf(r *http.Request) *view.Call {
	if call := view.CallFrom(r.Context()); call != nil {
		return call
	}
	return &view.Call{Request: r, Kwargs: map[string]string{}}
}
