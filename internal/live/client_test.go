package live_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/live"
)

func TestClientFetch(t *testing.T) {
	cats := []ledger.Category{
		{ID: ledger.NewID(), UserID: "user-1", Name: "Groceries"},
		{ID: ledger.NewID(), UserID: "user-1", Name: "Rent"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user-1/categories", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cats)
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	records, err := c.Fetch(context.Background(), live.Query{UserID: "user-1", Domain: ledger.DomainCategories})
	require.NoError(t, err)
	assert.Equal(t, cats, records.Categories)
	assert.Equal(t, 2, records.Len())
}

func TestClientFetchEmptyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	records, err := c.Fetch(context.Background(), live.Query{UserID: "user-1", Domain: ledger.DomainExpenses})
	require.NoError(t, err)
	assert.Equal(t, 0, records.Len())
}

func TestClientFetchDateRange(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, from.Format(time.RFC3339), r.URL.Query().Get("from"))
		assert.Equal(t, to.Format(time.RFC3339), r.URL.Query().Get("to"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	_, err := c.Fetch(context.Background(), live.Query{
		UserID: "user-1",
		Domain: ledger.DomainExpenses,
		From:   from,
		To:     to,
	})
	require.NoError(t, err)
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	_, err := c.Fetch(context.Background(), live.Query{UserID: "user-1", Domain: ledger.DomainCards})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClientFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 20*time.Millisecond, zerolog.Nop())
	_, err := c.Fetch(context.Background(), live.Query{UserID: "user-1", Domain: ledger.DomainIncome})
	assert.Error(t, err, "a hanging live query must resolve to a failure, not stay pending")
}

func TestClientApplySendsIdempotencyKey(t *testing.T) {
	var gotKey string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := live.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	m := live.NewMutation("user-1", ledger.DomainExpenses, live.OpCreate, json.RawMessage(`{"amount":"9.99"}`))
	require.NoError(t, c.Apply(context.Background(), m))

	assert.Equal(t, m.ID, gotKey)
	assert.Equal(t, "/v1/users/user-1/expenses/mutations", gotPath)
}

func TestHealthURL(t *testing.T) {
	c := live.NewClient("https://api.example.com/", time.Second, zerolog.Nop())
	assert.Equal(t, "https://api.example.com/healthz", c.HealthURL())
}
