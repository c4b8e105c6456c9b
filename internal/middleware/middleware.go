// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/addresscomplete/internal/domain"
)

type contextKey string

// statusByCode maps domain error codes to HTTP status codes.
// Unknown codes are served as 500.
var statusByCode = map[string]int{
	domain.EINVALID:     http.StatusBadRequest,
	domain.ENOTFOUND:    http.StatusNotFound,
	domain.ETOOLARGE:    http.StatusRequestEntityTooLarge,
	domain.ERATELIMIT:   http.StatusTooManyRequests,
	domain.ENOTIMPL:     http.StatusNotImplemented,
	domain.EUNAVAILABLE: http.StatusBadGateway,
}

func errorCodeToHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// respondWithError rejects a request from inside a middleware. It is a
// trimmed-down handler.ErrorResponse; handler imports this package, so the
// two cannot share code.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var body errorPayload
	body.Error.Code = domain.ErrorCode(err)
	body.Error.Message = domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(body.Error.Code)

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	GetLogger(r.Context()).Log(r.Context(), level, "request rejected",
		"error", err.Error(),
		"code", body.Error.Code,
		"status", status,
	)

	if !acceptsJSON(r) {
		http.Error(w, body.Error.Message, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r, domain.RateLimited(""))
}

func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r, domain.Errorf(domain.ETOOLARGE, "", "Request body too large"))
}

// acceptsJSON reports whether the client should get a JSON error body.
// Everything under /api/ does.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	for _, h := range []string{"Accept", "Content-Type"} {
		if strings.Contains(r.Header.Get(h), "application/json") {
			return true
		}
	}
	return false
}
