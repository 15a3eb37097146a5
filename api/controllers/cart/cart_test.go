package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rbos-labs/rbos-backend/api/middleware"
	"github.com/rbos-labs/rbos-backend/internal/carts"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

type stubCartService struct {
	resolved       *types.CartMergeResponse
	err            error
	lastToken      string
	lastIdentity   *string
	lastMergeInput carts.MergeInput
}

func (s *stubCartService) ResolveCart(ctx context.Context, token string, identityKey *string) (*types.CartMergeResponse, error) {
	s.lastToken = token
	s.lastIdentity = identityKey
	return s.resolved, s.err
}

func (s *stubCartService) MergeCart(ctx context.Context, input carts.MergeInput) (*types.CartMergeResponse, error) {
	s.lastMergeInput = input
	return s.resolved, s.err
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubCartService{resolved: &types.CartMergeResponse{
		Items:     []types.CartLine{{ItemID: "soda", Name: "Soda", UnitPrice: 2.50, Qty: 1, LineTotal: 2.50}},
		Subtotal:  2.50,
		Tax:       0.20,
		Total:     2.70,
		CartToken: "t1",
	}}
	handler := CartFetch(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(types.CartTokenHeader, "t0")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastToken != "t0" {
		t.Fatalf("service token = %q, want t0", svc.lastToken)
	}
	if got := resp.Header().Get(types.CartTokenHeader); got != "t1" {
		t.Fatalf("response header token = %q, want t1", got)
	}

	var envelope struct {
		Data types.CartMergeResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.CartToken != "t1" {
		t.Fatalf("payload = %+v", envelope.Data)
	}
}

func TestCartFetchPassesIdentityKey(t *testing.T) {
	svc := &stubCartService{resolved: &types.CartMergeResponse{CartToken: "t1"}}
	handler := CartFetch(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithIdentityKey(req.Context(), "user-1"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastIdentity == nil || *svc.lastIdentity != "user-1" {
		t.Fatalf("identity key = %v", svc.lastIdentity)
	}
}

func TestCartMergeSuccess(t *testing.T) {
	svc := &stubCartService{resolved: &types.CartMergeResponse{
		Items:     []types.CartLine{{ItemID: "soda", Qty: 2, UnitPrice: 2.50, LineTotal: 5.00}},
		CartToken: "t2",
		Conflicts: &types.ConflictReport{
			Merged: []types.ConflictEntry{{ItemID: "soda", Applied: 2}},
		},
	}}
	handler := CartMerge(svc, nil, nil)

	body := `{"cartToken":"t1","items":[{"itemId":"soda","name":"Soda","qty":2,"unitPrice":2.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", strings.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastMergeInput.Token != "t1" {
		t.Fatalf("merge token = %q", svc.lastMergeInput.Token)
	}
	if len(svc.lastMergeInput.Items) != 1 || svc.lastMergeInput.Items[0].ItemID != "soda" {
		t.Fatalf("merge items = %+v", svc.lastMergeInput.Items)
	}
	if got := resp.Header().Get(types.CartTokenHeader); got != "t2" {
		t.Fatalf("rotated token header = %q", got)
	}
}

func TestCartMergeHeaderTokenFallback(t *testing.T) {
	svc := &stubCartService{resolved: &types.CartMergeResponse{CartToken: "t2"}}
	handler := CartMerge(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge",
		strings.NewReader(`{"items":[{"itemId":"soda","qty":1}]}`))
	req.Header.Set(types.CartTokenHeader, "t0")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastMergeInput.Token != "t0" {
		t.Fatalf("merge token = %q, want header fallback", svc.lastMergeInput.Token)
	}
}

func TestCartMergeRejectsBadBody(t *testing.T) {
	handler := CartMerge(&stubCartService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge",
		strings.NewReader(`{"items":[{"itemId":"","qty":0}]}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("error code = %q", envelope.Error.Code)
	}
}

func TestCartMergeServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeDependency, "menu unavailable")}
	handler := CartMerge(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge",
		strings.NewReader(`{"items":[{"itemId":"soda","qty":1}]}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
