package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/handler/api"
)

func postValidate(t *testing.T, h *api.ValidateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/addresses/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Validate(rec, req)
	return rec
}

func newValidateHandler(t *testing.T, v address.Validator) *api.ValidateHandler {
	t.Helper()

	h, err := api.NewValidateHandler(v, nil)
	require.NoError(t, err)
	return h
}

func decodeValidate(t *testing.T, rec *httptest.ResponseRecorder) api.ValidateResponse {
	t.Helper()

	var resp api.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestValidate_ValidAddressAndPhone(t *testing.T) {
	h := newValidateHandler(t, address.NewBasicValidator())

	rec := postValidate(t, h, `{
		"address": {"street":"24 Sussex Dr","city":"Ottawa","province":"on","postal_code":"k1m1m4"},
		"phone": "6135551234"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeValidate(t, rec)

	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
	require.NotNil(t, resp.Address)
	assert.Equal(t, "ON", resp.Address.Province)
	assert.Equal(t, "K1M 1M4", resp.Address.PostalCode)
	assert.Equal(t, "(613)-555-1234", resp.Phone)
}

func TestValidate_FieldErrors(t *testing.T) {
	h := newValidateHandler(t, address.NewBasicValidator())

	rec := postValidate(t, h, `{
		"address": {"street":"1 A St","city":"","province":"ZZ","postal_code":"K1A 0B1"},
		"phone": "613555"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeValidate(t, rec)

	assert.False(t, resp.Valid)

	fields := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"city", "province", "phone"}, fields)
}

func TestValidate_PhoneIsOptional(t *testing.T) {
	mock := address.NewMockValidator()
	h := newValidateHandler(t, mock)

	rec := postValidate(t, h, `{"address":{"street":"1 A St","city":"Ottawa","province":"ON","postal_code":"K1A 0B1"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeValidate(t, rec)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Phone)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "Ottawa", mock.Calls[0].City)
}

func TestValidate_BadRequests(t *testing.T) {
	h := newValidateHandler(t, address.NewMockValidator())

	for name, body := range map[string]string{
		"empty":         ``,
		"malformed":     `{"address":`,
		"unknown field": `{"address":{},"fax":"1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postValidate(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestValidate_ValidatorFailure(t *testing.T) {
	mock := address.NewMockValidator()
	mock.ValidateFunc = func(ctx context.Context, addr address.Address) (*address.ValidationResult, error) {
		return nil, errors.New("validator exploded")
	}
	h := newValidateHandler(t, mock)

	rec := postValidate(t, h, `{"address":{}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}
