package api

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/handler"
	"github.com/dukerupert/addresscomplete/internal/phone"
)

// ValidateRequest is the body of POST /api/addresses/validate: the address the
// user committed to plus an optional contact phone. The address is checked by
// the address.Validator; only the phone is checked by struct tags here.
type ValidateRequest struct {
	Address address.Address `json:"address" validate:"-"`
	Phone   string          `json:"phone" validate:"omitempty,phone10"`
}

// ValidateResponse reports the outcome. Address is the normalized copy.
type ValidateResponse struct {
	Valid    bool                      `json:"valid"`
	Address  *address.Address          `json:"address,omitempty"`
	Phone    string                    `json:"phone,omitempty"`
	Errors   []address.ValidationError `json:"errors"`
	Warnings []string                  `json:"warnings"`
}

// ValidateHandler checks a committed address (and phone) before it is used.
type ValidateHandler struct {
	validator address.Validator
	request   *validator.Validate
	logger    *slog.Logger
}

// NewValidateHandler creates a validate handler around v.
func NewValidateHandler(v address.Validator, logger *slog.Logger) (*ValidateHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	request := validator.New(validator.WithRequiredStructEnabled())
	request.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	if err := phone.RegisterValidation(request); err != nil {
		return nil, err
	}

	return &ValidateHandler{validator: v, request: request, logger: logger}, nil
}

// Validate handles POST /api/addresses/validate.
//
// Field problems are not an HTTP error: the response is 200 with valid=false
// and one entry per failing field, so a form can render them inline.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "address.validate"

	var req ValidateRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.validator.Validate(r.Context(), req.Address)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	resp := ValidateResponse{
		Valid:    result.IsValid,
		Address:  result.NormalizedAddress,
		Errors:   append([]address.ValidationError{}, result.Errors...),
		Warnings: append([]string{}, result.Warnings...),
	}

	if req.Phone != "" {
		resp.Phone = phone.Format(req.Phone)
	}

	if err := h.request.StructCtx(r.Context(), req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			handler.InternalErrorResponse(w, r, err)
			return
		}
		resp.Valid = false
		for _, fe := range fieldErrs {
			resp.Errors = append(resp.Errors, address.ValidationError{
				Field:   fe.Field(),
				Message: "must contain exactly 10 digits",
			})
		}
	}

	if !resp.Valid {
		h.logger.Debug("address rejected", "errors", len(resp.Errors))
	}

	handler.JSON(w, http.StatusOK, resp)
}
