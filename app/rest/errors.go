package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/extractor"
	"github.com/Semior001/unpaywall/app/fetcher"
	"github.com/Semior001/unpaywall/app/resolver"
	"github.com/Semior001/unpaywall/app/revisor"
	"github.com/Semior001/unpaywall/pkg/logx"
)

// ErrorResponse is the body of all failed responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func errResponse(r *http.Request, msg string) ErrorResponse {
	id, _ := logx.RequestIDFromContext(r.Context())
	return ErrorResponse{Error: msg, RequestID: id}
}

// errStatus maps the pipeline error to the status and the message for the client.
func errStatus(err error) (int, string) {
	var (
		validationErr *article.ValidationError
		bypassErr     *resolver.BypassError
		extractErr    *extractor.Error
		fetchErr      *fetcher.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, revisor.ErrNoLanguage):
		return http.StatusBadRequest, "language is required"
	case errors.As(err, &bypassErr), errors.Is(err, resolver.ErrPaywallBypass):
		return http.StatusNotFound, resolver.BypassMessage
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity, "failed to extract the article, the source might have changed, try again later"
	case errors.Is(err, revisor.ErrTooManyTokens):
		return http.StatusUnprocessableEntity, "article is too long to be processed"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "failed to fetch the article source"
	case errors.Is(err, errNoRevisor):
		return http.StatusNotImplemented, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

var errNoRevisor = errors.New("article rewriting is not configured")

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errStatus(err)

	lvl := slog.LevelWarn
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		lvl = slog.LevelError
	}
	s.Logger.Log(r.Context(), lvl, "request failed", slog.Int("status", status), slog.Any("err", err))

	writeJSON(w, r, status, errResponse(r, msg))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "failed to write response", slog.Any("err", err))
	}
}
