package routes

import (
	"net/http"

	"github.com/dukerupert/addresscomplete/internal/handler/api"
	"github.com/dukerupert/addresscomplete/internal/middleware"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	SuggestionsHandler *api.SuggestionsHandler
	ValidateHandler    *api.ValidateHandler
	PhoneHandler       *api.PhoneHandler
	LiveHandler        *api.LiveHandler // Optional

	// SuggestionLimiter throttles lookups per client; AddressComplete bills
	// every Find call. Optional.
	SuggestionLimiter *middleware.RateLimiter

	// MaxBodyBytes caps POST bodies. Zero means middleware.DefaultMaxBodySize.
	MaxBodyBytes int64
}

// OpsDeps contains dependencies for health and metrics routes
type OpsDeps struct {
	MetricsHandler http.Handler
}
