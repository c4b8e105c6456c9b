package routes

import (
	"github.com/dukerupert/addresscomplete/internal/middleware"
	"github.com/dukerupert/addresscomplete/internal/router"
)

// RegisterAPIRoutes registers the address and phone API used by checkout forms.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	var lookup []router.Middleware
	if deps.SuggestionLimiter != nil {
		lookup = append(lookup, deps.SuggestionLimiter.Middleware)
	}
	r.Get("/api/addresses/suggestions", deps.SuggestionsHandler.List, lookup...)
	if deps.LiveHandler != nil {
		// Throttled per connection inside the handler.
		r.Get("/api/addresses/live", deps.LiveHandler.Serve)
	}

	body := r.Group(middleware.MaxBodySize(deps.MaxBodyBytes))
	body.Post("/api/addresses/validate", deps.ValidateHandler.Validate)
	body.Post("/api/phone/format", deps.PhoneHandler.Format)
}
