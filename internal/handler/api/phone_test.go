package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addresscomplete/internal/handler/api"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

func postPhone(t *testing.T, h *api.PhoneHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/phone/format", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Format(rec, req)
	return rec
}

func TestPhoneFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
		want api.PhoneFormatResponse
	}{
		{
			name: "first digit",
			body: `{"previous":{"text":"","cursor":0},"input":"4"}`,
			want: api.PhoneFormatResponse{
				PhoneFieldState: api.PhoneFieldState{Text: "(4", Cursor: 2},
				Digits:          "4",
				ShowError:       true,
				Accepted:        true,
			},
		},
		{
			name: "fourth digit opens the exchange",
			body: `{"previous":{"text":"(416","cursor":4},"input":"(4165"}`,
			want: api.PhoneFormatResponse{
				PhoneFieldState: api.PhoneFieldState{Text: "(416)-5", Cursor: 7},
				Digits:          "4165",
				ShowError:       true,
				Accepted:        true,
			},
		},
		{
			name: "complete number",
			body: `{"previous":{"text":"(416)-555-123","cursor":13},"input":"(416)-555-1234"}`,
			want: api.PhoneFormatResponse{
				PhoneFieldState: api.PhoneFieldState{Text: "(416)-555-1234", Cursor: 14},
				Digits:          "4165551234",
				Valid:           true,
				Accepted:        true,
			},
		},
		{
			name: "eleventh digit is refused",
			body: `{"previous":{"text":"(416)-555-1234","cursor":14},"input":"(416)-555-12345"}`,
			want: api.PhoneFormatResponse{
				PhoneFieldState: api.PhoneFieldState{Text: "(416)-555-1234", Cursor: 14},
				Digits:          "4165551234",
				Valid:           true,
				Accepted:        false,
			},
		},
		{
			name: "cleared",
			body: `{"previous":{"text":"(4","cursor":2},"input":""}`,
			want: api.PhoneFormatResponse{Accepted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := api.NewPhoneHandler(nil)

			rec := postPhone(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var got api.PhoneFormatResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneFormat_BadRequests(t *testing.T) {
	h := api.NewPhoneHandler(nil)

	tests := map[string]string{
		"malformed":        `{"input":`,
		"negative cursor":  `{"previous":{"text":"(4","cursor":-1},"input":"(41"}`,
		"cursor past text": `{"previous":{"text":"(4","cursor":9},"input":"(41"}`,
		"oversized input":  `{"input":"` + strings.Repeat("9", 65) + `"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := postPhone(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPhoneFormat_RecordsMetrics(t *testing.T) {
	metrics := telemetry.NewMetrics("test", prometheus.NewRegistry())
	h := api.NewPhoneHandler(metrics)

	postPhone(t, h, `{"input":"416"}`)
	postPhone(t, h, `{"previous":{"text":"(416)-555-1234","cursor":14},"input":"416555123456"}`)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PhoneEdits.WithLabelValues(telemetry.PhoneAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PhoneEdits.WithLabelValues(telemetry.PhoneRejected)))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	api.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
