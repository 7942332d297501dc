package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/memledger/internal/adapter/http/dto"
	"github.com/iho/memledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/memledger/internal/adapter/http/middleware"
	"github.com/iho/memledger/internal/adapter/repository/memory"
	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/infrastructure/metrics"
	"github.com/iho/memledger/internal/usecase"
)

type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) NotifyAboutTransfer(context.Context, domain.Account, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++

	return nil
}

func newRouterConfig(opts ...func(*RouterConfig)) (RouterConfig, *countingNotifier) {
	repo := memory.NewAccountRepository(4)
	notifier := &countingNotifier{}

	cfg := RouterConfig{
		AccountHandler:  handler.NewAccountHandler(usecase.NewAccountUseCase(repo, nil, zerolog.Nop())),
		TransferHandler: handler.NewTransferHandler(usecase.NewTransferUseCase(repo, notifier, usecase.WithStrictDebit(true))),
		LedgerHandler:   handler.NewLedgerHandler(usecase.NewLedgerUseCase(repo)),
		HealthHandler:   handler.NewHealthHandler(nil),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, notifier
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	cfg, _ := newRouterConfig()
	router := NewRouter(cfg)

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	cfg, _ := newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = promhttp.Handler()
	})
	router := NewRouter(cfg)

	chiRoutes, ok := router.(chi.Router)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	for _, route := range []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/accounts/",
		"DELETE /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/transfers/",
		"POST /api/v1/transfers/batch",
		"GET /api/v1/ledger/total",
	} {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

func TestNewRouter_TransferFlow(t *testing.T) {
	cfg, notifier := newRouterConfig()
	router := NewRouter(cfg)

	rec := do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "A", "balance": 1000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "B", "balance": 1000})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "A", "balance": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/transfers", map[string]any{"account_from_id": "A", "account_to_id": "B", "amount": 333})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, tc := range []struct {
		body   map[string]any
		status int
	}{
		{map[string]any{"account_from_id": "A", "account_to_id": "C", "amount": 1}, http.StatusNotFound},
		{map[string]any{"account_from_id": "A", "account_to_id": "B", "amount": 5000}, http.StatusPreconditionFailed},
		{map[string]any{"account_from_id": "A", "account_to_id": "A", "amount": 1}, http.StatusBadRequest},
		{map[string]any{"account_from_id": "A", "account_to_id": "B", "amount": -1}, http.StatusBadRequest},
	} {
		rec = do(t, router, http.MethodPost, "/api/v1/transfers", tc.body)
		assert.Equal(t, tc.status, rec.Code, "body %v", tc.body)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(667)), "balance %s", account.Balance)

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/ledger/total", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals dto.LedgerTotalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.True(t, totals.TotalBalance.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 2, totals.Accounts)

	assert.Equal(t, 2, notifier.count)

	rec = do(t, router, http.MethodDelete, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/v1/accounts/A", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_BatchTransfer(t *testing.T) {
	cfg, _ := newRouterConfig()
	router := NewRouter(cfg)

	do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "A", "balance": 1000})
	do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "B", "balance": 1000})

	rec := do(t, router, http.MethodPost, "/api/v1/transfers/batch", map[string]any{
		"transfers": []map[string]any{
			{"account_from_id": "A", "account_to_id": "B", "amount": 286},
			{"account_from_id": "B", "account_to_id": "A", "amount": 12},
			{"account_from_id": "A", "account_to_id": "B", "amount": 99999},
			{"account_from_id": "A", "account_to_id": "B", "amount": 333},
			{"account_from_id": "B", "account_to_id": "A", "amount": 222},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchTransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, dto.TransferStatusRejected, resp.Results[2].Status)

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/B", nil)
	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1385)), "balance %s", account.Balance)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	cfg, _ := newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1, nil)
	})
	router := NewRouter(cfg)

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

type stubIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (s *stubIdempotencyStore) CheckAndSet(_ context.Context, key string, _ []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	s.values[key] = []byte("processing")

	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = response

	return nil
}

func (s *stubIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)

	return nil
}

func TestNewRouter_IdempotentTransferAppliedOnce(t *testing.T) {
	store := &stubIdempotencyStore{values: map[string][]byte{}}
	cfg, notifier := newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	})
	router := NewRouter(cfg)

	do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "A", "balance": 100})
	do(t, router, http.MethodPost, "/api/v1/accounts", map[string]any{"account_id": "B", "balance": 0})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
			bytes.NewBufferString(`{"account_from_id":"A","account_to_id":"B","amount":10}`))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "transfer-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	second := send()

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 2, notifier.count)

	rec := do(t, router, http.MethodGet, "/api/v1/accounts/A", nil)
	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(90)))
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	cfg, _ := newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	})
	router := NewRouter(cfg)

	do(t, router, http.MethodGet, "/health", nil)

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `memledger_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
