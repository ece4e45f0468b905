package salesapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *MemoryTokenStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	tokens := NewMemoryTokenStore()
	client := NewClient(server.URL, tokens, nil)
	return client, tokens, server
}

func TestListSalesOmitsEmptyFilterParams(t *testing.T) {
	var query string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := client.ListSales(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty result, got %d records", len(records))
	}
	if query != "" {
		t.Fatalf("expected no query parameters, got %q", query)
	}
}

func TestListSalesSendsBoundsAndBearer(t *testing.T) {
	var gotQuery, gotAuth, gotReqID string
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	})
	if err := tokens.Store(context.Background(), "tok-123"); err != nil {
		t.Fatalf("store token: %v", err)
	}

	filter := Filter{From: NewDate(2024, time.January, 1), To: NewDate(2024, time.January, 31)}
	if _, err := client.ListSales(context.Background(), filter); err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if gotQuery != "dataFim=2024-01-31&dataInicio=2024-01-01" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotReqID == "" {
		t.Fatalf("expected request id header")
	}
}

func TestListSalesOmitsAuthorizationWithoutToken(t *testing.T) {
	var header string
	var present bool
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.ListSales(context.Background(), Filter{}); err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if present || header != "" {
		t.Fatalf("expected authorization header omitted, got %q", header)
	}
}

func TestListSalesAPIErrorCarriesServerDetail(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detalhe":"banco indisponível"}`))
	})

	_, err := client.ListSales(context.Background(), Filter{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "banco indisponível" {
		t.Fatalf("expected server detail, got %q", apiErr.Detail)
	}
	if KindOf(err) != KindAPI {
		t.Fatalf("expected api kind, got %s", KindOf(err))
	}
}

func TestListSalesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(server.URL, nil, nil)

	_, err := client.ListSales(context.Background(), Filter{})
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %s", KindOf(err))
	}
}

func TestListSalesRejectsMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"oops"`,
		"negative quantity": `[{"id":"1","produto":"A","quantidade":-2,"data":"2024-01-01","valor":10}]`,
		"missing id":        `[{"produto":"A","quantidade":2,"data":"2024-01-01","valor":10}]`,
		"missing date":      `[{"id":"1","produto":"A","quantidade":2,"valor":10}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := client.ListSales(context.Background(), Filter{})
			var dErr *DecodeError
			if !errors.As(err, &dErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestGetSaleByIDRejectsBlankIDWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int64
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	for _, id := range []string{"", "   ", "\t"} {
		_, err := client.GetSaleByID(context.Background(), id)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("id %q: expected ValidationError, got %v", id, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero transport invocations, got %d", calls.Load())
	}
}

func TestGetSaleByID404ResolvesToNil(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	record, err := client.GetSaleByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record on 404, got %+v", record)
	}
}

func TestGetSaleByIDSuccess(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vendas/v-7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(SaleRecord{ID: "v-7", Product: "Teclado", Quantity: 2, Date: NewDate(2024, time.March, 5), Value: 150})
	})

	record, err := client.GetSaleByID(context.Background(), "v-7")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if record == nil || record.ID != "v-7" || record.Quantity != 2 {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Date.String() != "2024-03-05" {
		t.Fatalf("unexpected date %s", record.Date)
	}
}

func TestGetSaleByIDEscapesOpaqueID(t *testing.T) {
	var gotPath string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(SaleRecord{ID: "a/b?c", Product: "Mouse", Quantity: 1, Date: NewDate(2024, time.March, 6), Value: 80})
	})

	record, err := client.GetSaleByID(context.Background(), "a/b?c")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if record == nil || record.ID != "a/b?c" {
		t.Fatalf("unexpected record %+v", record)
	}
	if gotPath != "/vendas/a%2Fb%3Fc" {
		t.Fatalf("expected escaped id in path, got %q", gotPath)
	}
}

func TestLoginStoresToken(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode credentials: %v", err)
		}
		_, _ = w.Write([]byte(`{"token":"jwt-abc"}`))
	})

	err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token, _ := tokens.Token(context.Background())
	if token != "jwt-abc" {
		t.Fatalf("expected token persisted, got %q", token)
	}
}

func TestLoginFailureClearsStoredToken(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"credenciais inválidas"}`))
	})
	_ = tokens.Store(context.Background(), "stale")

	err := client.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "wrong"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	token, _ := tokens.Token(context.Background())
	if token != "" {
		t.Fatalf("expected stored token cleared, got %q", token)
	}
}

func TestLoginValidatesCredentialsBeforeTransport(t *testing.T) {
	var calls atomic.Int64
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	err := client.Login(context.Background(), Credentials{Email: "not-an-email", Password: ""})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero transport invocations, got %d", calls.Load())
	}
}
