package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// errInvalidRequest marks a request the client must fix.
var errInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidRequest),
		errors.As(err, &verrs),
		errors.Is(err, domain.ErrInvalidDomain),
		errors.Is(err, domain.ErrInvalidBlock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedListKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		}, "Request failed")
	}
	writeDetail(w, status, err.Error())
}

// decode reads a JSON body into dst and validates its struct tags.
func (h *handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("malformed JSON body: %v", err)
	}
	return h.validate.Struct(dst)
}

// intQuery reads an optional integer query parameter bounded to [lo, hi].
func intQuery(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, invalid("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

// optionalInt64Query reads an optional unix-seconds query parameter.
func optionalInt64Query(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalid("%s must be an integer", name)
	}
	return &v, nil
}
