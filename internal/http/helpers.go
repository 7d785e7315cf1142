package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	IDs     []string          `json:"ids,omitempty"`
	Issues  map[string]string `json:"issues,omitempty"`
}

type idsPayload struct {
	IDs []uuid.UUID `json:"ids"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// errBadRequest marks malformed requests that never reached the service.
var errBadRequest = errors.New("bad request")

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if baseClean == "/" {
		baseClean = ""
	}
	if trimmedSuffix == "" {
		if baseClean == "" {
			return "/"
		}
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return fmt.Errorf("%w: request body required", errBadRequest)
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body required", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var notFound *options.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: notFound.Error(),
			IDs:     idStrings(notFound.IDs),
		}
	}

	var deleted *options.AlreadyDeletedError
	if errors.As(err, &deleted) {
		return http.StatusConflict, errorResponse{
			Error:   "already_deleted",
			Message: deleted.Error(),
			IDs:     idStrings(deleted.IDs),
		}
	}

	var exists *options.AlreadyExistsError
	if errors.As(err, &exists) {
		return http.StatusConflict, errorResponse{
			Error:   "already_exists",
			Message: exists.Error(),
		}
	}

	var invalid *options.InvalidArgumentError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, errorResponse{
			Error:   "invalid_argument",
			Message: invalid.Error(),
			Issues:  invalid.FieldIssues(),
		}
	}

	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	if errors.Is(err, kinds.ErrUnknownKind) {
		return http.StatusNotFound, errorResponse{
			Error:   "unknown_kind",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("%w: id required", errBadRequest)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errBadRequest, trimmed)
	}
	return parsed, nil
}

func idStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
