package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nebulashop-backend/api/middleware"
	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout"
	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	"github.com/angelmondragon/nebulashop-backend/pkg/types"
)

type testEnv struct {
	catalog  *catalog.Snapshot
	manager  *payments.Manager
	registry *checkout.Registry
}

func newTestEnv(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()
	snap, err := catalog.Load("")
	require.NoError(t, err)

	manager, err := payments.NewManager(payments.ManagerOptions{
		Store:  payments.NewMemoryStore(),
		Delays: payments.Delays{NebulaPay: delay, OnChain: delay, Voucher: delay, Hybrid: delay},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	registry, err := checkout.NewRegistry(1200, checkout.Dependencies{
		Catalog:      snap,
		Sessions:     manager,
		Waiter:       payments.NewPollingWaiter(manager, 2*time.Millisecond),
		AwaitTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return &testEnv{catalog: snap, manager: manager, registry: registry}
}

// call runs handler for one request scoped to shopperID. routePattern lets
// chi resolve URL params such as {productID}.
func call(t *testing.T, handler http.HandlerFunc, method, routePattern, target, shopperID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shopperID != "" {
				r = r.WithContext(middleware.WithShopperID(r.Context(), shopperID))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Method(method, routePattern, handler)

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope), resp.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error
}

func cartEntry(productID string, qty int) cart.Entry {
	return cart.Entry{ProductID: productID, Quantity: qty}
}
