package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string `json:"error"`
	FieldName string `json:"fieldName,omitempty"`
}

// handlerFunc is an endpoint that reports failures by returning them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *HTTPServer) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeFailure(w, r, err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrNotAvailable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ve.fields)
		return
	}

	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Request failed")
		writeError(w, status, "internal server error")
		return
	}

	logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	writeJSON(w, status, errorResponse{Error: err.Error(), FieldName: domain.FieldOf(err)})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// decodeBody reads a JSON body into dst and checks its validate tags.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.BadRequest("invalid JSON body: %v", err)
	}
	return validateStruct(dst)
}

// callerID reads the acting user from the request header.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return 0, domain.BadField(models.HeaderUserID, "header %s is required", models.HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadField(models.HeaderUserID, "header %s must be a number, got %q", models.HeaderUserID, raw)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadField(name, "%s must be a number, got %q", name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.BadField(name, "%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// pageParams reads from and size with their defaults. Range checks are left to the services.
func pageParams(r *http.Request) (from, size int, err error) {
	if from, err = queryInt(r, "from", models.DefaultPageFrom); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(r, "size", models.DefaultPageSize); err != nil {
		return 0, 0, err
	}
	return from, size, nil
}

func stateParam(r *http.Request) (models.State, error) {
	token := r.URL.Query().Get("state")
	if token == "" {
		token = models.DefaultStateToken
	}
	return domain.ParseState(token)
}
