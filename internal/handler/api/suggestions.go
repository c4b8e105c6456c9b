package api

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/canadapost"
	"github.com/dukerupert/addresscomplete/internal/domain"
	"github.com/dukerupert/addresscomplete/internal/handler"
	"github.com/dukerupert/addresscomplete/internal/middleware"
	"github.com/dukerupert/addresscomplete/internal/search"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

// SuggestionsHandler serves address suggestions for a partial query.
type SuggestionsHandler struct {
	provider canadapost.Provider
	params   func(query string) canadapost.FindParams
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewSuggestionsHandler creates a suggestions handler. params may be nil, in
// which case canadapost.DefaultFindParams is used.
func NewSuggestionsHandler(
	provider canadapost.Provider,
	params func(query string) canadapost.FindParams,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *SuggestionsHandler {
	if params == nil {
		params = canadapost.DefaultFindParams
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionsHandler{
		provider: provider,
		params:   params,
		metrics:  metrics,
		logger:   logger,
	}
}

// SuggestionResponse is one suggestion as sent to the browser.
type SuggestionResponse struct {
	ID string `json:"id,omitempty"`
	address.Address
	ShortLabel string `json:"short_label"`
	FullLabel  string `json:"full_label"`
	Complete   bool   `json:"complete"`
}

// SuggestionsResponse is the body of GET /api/addresses/suggestions.
type SuggestionsResponse struct {
	Query       string               `json:"query"`
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// List handles GET /api/addresses/suggestions?q=...&last_id=...
//
// Queries shorter than search.MinQueryLength are answered with an empty list
// without calling the provider, the same as the interactive controller.
// A provider failure is reported as 502 so the caller can tell "no matches"
// from "lookup down".
func (h *SuggestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "suggestions.list"

	query := r.URL.Query().Get("q")
	resp := SuggestionsResponse{Query: query, Suggestions: []SuggestionResponse{}}

	if !search.QueryAccepted(query) {
		h.metrics.GateRejected()
		handler.JSON(w, http.StatusOK, resp)
		return
	}

	params := h.params(query)
	if lastID := r.URL.Query().Get("last_id"); lastID != "" {
		params.LastID = canadapost.ContinueFrom(lastID)
	}

	res := canadapost.Lookup(r.Context(), h.provider, params)
	if !res.OK() {
		err := res.Err
		if !domain.IsCode(err, domain.EINVALID) {
			err = domain.Unavailable(err, op, "Address lookup is temporarily unavailable")
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	for _, raw := range res.Items {
		resp.Suggestions = append(resp.Suggestions, newSuggestion(raw.ID, address.ParseOne(raw)))
	}

	middleware.GetLogger(r.Context(), h.logger).Debug("suggestions served",
		"query", query,
		"count", len(resp.Suggestions),
	)
	handler.JSON(w, http.StatusOK, resp)
}

func newSuggestion(id string, a address.Address) SuggestionResponse {
	return SuggestionResponse{
		ID:         id,
		Address:    a,
		ShortLabel: a.ShortLabel(),
		FullLabel:  a.FullLabel(),
		Complete:   !a.IsDegenerate(),
	}
}
