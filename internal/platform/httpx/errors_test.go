package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vendascope/vendascope/internal/salesapi"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &salesapi.ValidationError{Field: "id", Reason: "empty"}, http.StatusBadRequest},
		{"api", &salesapi.APIError{StatusCode: 500, Detail: "boom"}, http.StatusBadGateway},
		{"decode", &salesapi.DecodeError{Endpoint: "/vendas"}, http.StatusBadGateway},
		{"transport", &salesapi.TransportError{Op: "GET"}, http.StatusGatewayTimeout},
		{"unknown", errors.New("weird"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("unexpected content type %s", ct)
			}
		})
	}
}
