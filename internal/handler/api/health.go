package api

import (
	"net/http"

	"github.com/dukerupert/addresscomplete/internal/handler"
)

// Health handles GET /healthz. It reports process liveness only; it does not
// call AddressComplete, which bills per request.
func Health(w http.ResponseWriter, r *http.Request) {
	handler.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
