package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rbos-labs/rbos-backend/internal/carts"
	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type routerCartService struct {
	fetches int
	merges  int
}

func (s *routerCartService) ResolveCart(ctx context.Context, token string, identityKey *string) (*types.CartMergeResponse, error) {
	s.fetches++
	return &types.CartMergeResponse{CartToken: "t1"}, nil
}

func (s *routerCartService) MergeCart(ctx context.Context, input carts.MergeInput) (*types.CartMergeResponse, error) {
	s.merges++
	return &types.CartMergeResponse{CartToken: "t2"}, nil
}

func testRouter(svc carts.Service) http.Handler {
	return NewRouter(RouterParams{
		Config: &config.Config{
			App: config.AppConfig{Env: config.AppEnvDev},
			JWT: config.JWTConfig{Secret: "test-secret", Issuer: "rbos", ExpirationMinutes: 15},
		},
		DBPinger:    okPinger{},
		RedisPinger: okPinger{},
		CartService: svc,
		Registry:    prometheus.NewRegistry(),
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := testRouter(&routerCartService{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testRouter(&routerCartService{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("/metrics returned %d", resp.Code)
	}
}

func TestRouterCartRoutes(t *testing.T) {
	svc := &routerCartService{}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || svc.fetches != 1 {
		t.Fatalf("fetch: code %d, calls %d", resp.Code, svc.fetches)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge",
		strings.NewReader(`{"items":[{"itemId":"soda","qty":1}]}`))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || svc.merges != 1 {
		t.Fatalf("merge: code %d, calls %d, body %s", resp.Code, svc.merges, resp.Body.String())
	}
}

func TestRouterRejectsInvalidBearer(t *testing.T) {
	router := testRouter(&routerCartService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("invalid bearer returned %d", resp.Code)
	}
}
