package api

import (
	"net/http"

	"github.com/dukerupert/addresscomplete/internal/domain"
	"github.com/dukerupert/addresscomplete/internal/handler"
	"github.com/dukerupert/addresscomplete/internal/phone"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

// maxPhoneInput bounds the raw edit text; a paste longer than this is not a
// phone number.
const maxPhoneInput = 64

// PhoneFieldState is the text and cursor of a phone input.
type PhoneFieldState struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// PhoneFormatRequest is the body of POST /api/phone/format. Previous is the
// field before the keystroke, Input is the raw text after it.
type PhoneFormatRequest struct {
	Previous PhoneFieldState `json:"previous"`
	Input    string          `json:"input"`
}

// PhoneFormatResponse is the field after the edit.
type PhoneFormatResponse struct {
	PhoneFieldState
	Digits    string `json:"digits"`
	Valid     bool   `json:"valid"`
	ShowError bool   `json:"show_error"`
	Accepted  bool   `json:"accepted"`
}

// PhoneHandler formats phone input one edit at a time.
type PhoneHandler struct {
	metrics *telemetry.Metrics
}

// NewPhoneHandler creates a phone handler.
func NewPhoneHandler(metrics *telemetry.Metrics) *PhoneHandler {
	return &PhoneHandler{metrics: metrics}
}

// Format handles POST /api/phone/format.
// An edit that would exceed ten digits is refused: the previous state comes
// back with accepted=false.
func (h *PhoneHandler) Format(w http.ResponseWriter, r *http.Request) {
	const op = "phone.format"

	var req PhoneFormatRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if len(req.Input) > maxPhoneInput {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, op, "input must be at most %d bytes", maxPhoneInput))
		return
	}
	if req.Previous.Cursor < 0 || req.Previous.Cursor > len(req.Previous.Text) {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, op, "cursor out of range: %d", req.Previous.Cursor))
		return
	}

	prev := phone.Field{Text: req.Previous.Text, Cursor: req.Previous.Cursor}
	accepted := phone.Accepts(req.Input)
	next := prev.Edit(req.Input)

	if accepted {
		h.metrics.PhoneEdited(telemetry.PhoneAccepted)
	} else {
		h.metrics.PhoneEdited(telemetry.PhoneRejected)
	}

	handler.JSON(w, http.StatusOK, PhoneFormatResponse{
		PhoneFieldState: PhoneFieldState{Text: next.Text, Cursor: next.Cursor},
		Digits:          next.Digits(),
		Valid:           next.Valid(),
		ShowError:       next.ShowError(),
		Accepted:        accepted,
	})
}
