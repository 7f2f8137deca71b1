package edgarfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srvURL string) *Client {
	return NewClient(Options{BaseURL: srvURL, UserAgent: "test-agent"})
}

func TestCompanyFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/xbrl/companyfacts/CIK0000320193.json", r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(companyFactsJSON))
	}))
	defer srv.Close()

	facts, err := newTestClient(srv.URL).CompanyFacts(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", facts.EntityName)
}

func TestCompanyFactsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(companyFactsJSON))
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).CompanyFactsRaw(context.Background(), "320193")
	require.NoError(t, err)
	assert.JSONEq(t, companyFactsJSON, string(data))
}

func TestCompanyFactsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(companyFactsJSON))
	}))
	defer srv.Close()

	facts, err := newTestClient(srv.URL).CompanyFacts(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, 320193, facts.CIK)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompanyFactsDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CompanyFacts(context.Background(), "320193")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompanyFactsHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).CompanyFacts(ctx, "320193")
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, defaultBaseURL, c.opts.BaseURL)
	assert.Equal(t, 3, c.opts.MaxRetries)
	assert.NotEmpty(t, c.opts.UserAgent)
}
