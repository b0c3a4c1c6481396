package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/http/handlers"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

const tokenOK = `{"status":"OK","message":"Token generated","cftoken":"tok_abc"}`

type harness struct {
	app      *fiber.App
	db       *sqlx.DB
	products *repos.ProductRepo
	orders   *repos.OrderRepo
	gwCalls  *atomic.Int32
	lastGW   *atomic.Value
}

func okGateway(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(tokenOK))
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		StockPolicy:        config.StockDecrement,
		FailOrphanedOrders: true,
		RateLimitMax:       1000,
		CORSOrigins:        "*",
		Gateway: config.GatewayConfig{
			BaseURL:      baseURL,
			ClientID:     "cid",
			ClientSecret: "csecret",
			Timeout:      2 * time.Second,
			Currency:     "INR",
		},
	}
}

// newHarness builds the full app over an in-memory store and a fake gateway. The store
// holds user 7 and product 1 (9.99, stock 5).
func newHarness(t *testing.T, gw http.HandlerFunc, mutate func(*config.Config)) *harness {
	t.Helper()
	h := &harness{gwCalls: &atomic.Int32{}, lastGW: &atomic.Value{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.gwCalls.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		h.lastGW.Store(body)
		gw(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	if mutate != nil {
		mutate(&cfg)
	}

	ctx := context.Background()
	db, err := repos.OpenDB(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`INSERT INTO users(id, name, email) VALUES (7, 'Asha', 'asha@example.com')`)
	require.NoError(t, err)
	h.products = repos.NewProductRepo(db)
	h.orders = repos.NewOrderRepo(db)
	_, err = h.products.Create(ctx, "Notebook", decimal.RequireFromString("9.99"), 5)
	require.NoError(t, err)
	h.db = db

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	deps := handlers.NewDeps(db, cfg, gateway.New(cfg.Gateway, srv.Client()), events.Nop{}, m)
	h.app = handlers.NewApp(deps, handlers.Options{
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitMax: cfg.RateLimitMax,
		Metrics:      m,
		Gatherer:     reg,
	})
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (h *harness) doJSON(t *testing.T, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	resp, raw := h.do(t, method, path, body, headers...)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func (h *harness) stock(t *testing.T) int {
	t.Helper()
	p, err := h.products.Get(context.Background(), 1)
	require.NoError(t, err)
	return p.Stock
}

func (h *harness) cartLines(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.Get(&n, `SELECT COUNT(*) FROM carts`))
	return n
}
