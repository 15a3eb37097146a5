package cartengine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rbos-labs/rbos-backend/pkg/config"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

// Gateway is the client side of the cart API. Both calls carry the current
// token in the request header and surface any rotated token on the
// response.
type Gateway interface {
	FetchCart(ctx context.Context, token string) (*types.CartMergeResponse, error)
	MergeCart(ctx context.Context, req types.CartMergeRequest) (*types.CartMergeResponse, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPGateway talks to the cart endpoints over HTTP.
type HTTPGateway struct {
	baseURL string
	client  httpDoer
}

// NewHTTPGateway builds a gateway against the configured base URL.
func NewHTTPGateway(cfg config.GatewayConfig) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base url required")
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// FetchCart resolves the cart behind a token. An empty token asks the
// server for a fresh anonymous cart.
func (g *HTTPGateway) FetchCart(ctx context.Context, token string) (*types.CartMergeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/v1/cart", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart fetch request")
	}
	if token != "" {
		req.Header.Set(types.CartTokenHeader, token)
	}
	return g.do(req)
}

// MergeCart submits the local lines for reconciliation. Byte-identical
// retries share an idempotency key so the server can replay instead of
// re-merging.
func (g *HTTPGateway) MergeCart(ctx context.Context, merge types.CartMergeRequest) (*types.CartMergeResponse, error) {
	body, err := json.Marshal(merge)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode merge request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/cart/merge", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart merge request")
	}
	req.Header.Set("Content-Type", "application/json")
	if merge.CartToken != "" {
		req.Header.Set(types.CartTokenHeader, merge.CartToken)
	}
	digest := sha256.Sum256(body)
	req.Header.Set("Idempotency-Key", hex.EncodeToString(digest[:]))
	return g.do(req)
}

func (g *HTTPGateway) do(req *http.Request) (*types.CartMergeResponse, error) {
	res, err := g.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart gateway unreachable")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart gateway response")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var failure types.ErrorEnvelope
		if json.Unmarshal(raw, &failure) == nil && failure.Error.Message != "" {
			return nil, pkgerrors.New(pkgerrors.CodeDependency,
				fmt.Sprintf("cart gateway: %s (%s)", failure.Error.Message, failure.Error.Code))
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("cart gateway: unexpected status %d", res.StatusCode))
	}

	var envelope struct {
		Data types.CartMergeResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart gateway response")
	}
	out := envelope.Data
	// Header rotation wins when the body omits the token.
	if out.CartToken == "" {
		out.CartToken = res.Header.Get(types.CartTokenHeader)
	}
	return &out, nil
}
