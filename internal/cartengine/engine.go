package cartengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/rbos-labs/rbos-backend/pkg/logger"
	"github.com/rbos-labs/rbos-backend/pkg/metrics"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

// Engine owns the cart state and token for one storefront instance and
// reconciles them with the server on identity transitions. It is the only
// writer allowed to replace state wholesale; every other mutation goes
// through Dispatch.
type Engine struct {
	mu    sync.Mutex
	state State
	token string

	store   Store
	gateway Gateway
	metrics *metrics.CartMetrics
	log     *logger.Logger

	// Reconciliation memory is keyed on the specific identity value, so a
	// switch from one user to another is never mistaken for a no-op.
	lastKey    *string
	observed   bool
	reconciled bool
	generation uint64

	subs    map[int]func(State)
	nextSub int
}

// NewEngine loads the persisted cart and token from the store. Metrics and
// logger may be nil.
func NewEngine(store Store, gateway Gateway, m *metrics.CartMetrics, log *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	state, token := store.Load()
	return &Engine{
		state:   state,
		token:   token,
		store:   store,
		gateway: gateway,
		metrics: m,
		log:     log,
		subs:    make(map[int]func(State)),
	}, nil
}

// State returns a snapshot of the current cart.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.state)
}

// Token returns the current cart token, empty when none is held.
func (e *Engine) Token() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

// Dispatch applies an action through the reducer and persists the result
// write-through.
func (e *Engine) Dispatch(action Action) error {
	e.mu.Lock()
	e.state = Reduce(e.state, action)
	state := snapshot(e.state)
	token := e.token
	e.mu.Unlock()

	err := e.store.Save(state, token)
	e.notify(state)
	return err
}

// Subscribe registers a listener called with a snapshot after every applied
// change. The returned func cancels the subscription.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// ObserveIdentity reports the current identity (nil for anonymous) and
// triggers at most one reconciliation per transition:
//
//	anonymous cold start:   fetch the cart behind the stored token
//	login or user switch:   merge the local lines into the server cart
//	logout:                 persist only, the cart becomes anonymous again
//
// An unchanged, already-reconciled identity is a no-op. A gateway failure
// leaves state and token untouched and the identity unreconciled, so the
// next observe retries. When transitions overlap, the later one wins: a
// stale response is discarded.
func (e *Engine) ObserveIdentity(ctx context.Context, key *string) error {
	e.mu.Lock()
	if e.observed && e.reconciled && identityEqual(e.lastKey, key) {
		e.mu.Unlock()
		return nil
	}
	prev := e.lastKey
	wasObserved := e.observed
	e.lastKey = copyIdentity(key)
	e.observed = true
	e.reconciled = false
	e.generation++
	gen := e.generation

	if key == nil && wasObserved && prev != nil {
		// Logout. The in-memory cart simply becomes this device's
		// anonymous cart; no server call is owed for the transition.
		e.reconciled = true
		state := snapshot(e.state)
		token := e.token
		e.mu.Unlock()
		err := e.store.Save(state, token)
		e.observeMetric(ctx, "persist", 0, err)
		return err
	}

	token := e.token
	items := make([]types.MergeRequestItem, 0, len(e.state.Lines))
	for _, line := range e.state.Lines {
		items = append(items, types.MergeRequestItem{
			ItemID:    line.ItemID,
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
		})
	}
	e.mu.Unlock()

	op := "merge"
	if key == nil {
		op = "fetch"
	}
	start := time.Now()
	var resp *types.CartMergeResponse
	var err error
	if key == nil {
		resp, err = e.gateway.FetchCart(ctx, token)
	} else {
		resp, err = e.gateway.MergeCart(ctx, types.CartMergeRequest{CartToken: token, Items: items})
	}
	e.observeMetric(ctx, op, time.Since(start), err)
	if err != nil {
		if e.log != nil {
			e.log.Warn(ctx, "cart reconciliation failed, keeping local cart")
		}
		return err
	}
	return e.apply(gen, resp, op == "fetch")
}

// apply installs a reconciliation result. Quantities the client sent were
// proposals; the response replaces local state wholesale, it is never
// unioned client-side.
func (e *Engine) apply(gen uint64, resp *types.CartMergeResponse, anonymousFetch bool) error {
	e.mu.Lock()
	if gen != e.generation {
		// A newer transition was observed while this response was in
		// flight; its reconciliation owns the outcome.
		e.mu.Unlock()
		return nil
	}

	pending := e.store.LoadPendingConflicts()
	combined := types.CombineReports(pending, resp.Conflicts)
	var parkErr error
	if !combined.IsEmpty() {
		// Park the batch so a crash before the banners are persisted
		// does not lose it.
		parkErr = e.store.SavePendingConflicts(combined)
	}
	banners := ProjectBanners(combined)
	e.metrics.CountConflicts(combined)

	// An empty fetch result for a device that still holds lines means the
	// server had nothing for this token; the local anonymous cart stands.
	keepLocal := anonymousFetch && len(resp.Items) == 0 && len(e.state.Lines) > 0
	if keepLocal {
		e.state.Banners = append(e.state.Banners, banners...)
	} else {
		next := State{
			Lines:   resp.Items,
			Banners: append(append([]string(nil), e.state.Banners...), banners...),
		}
		e.state = Reduce(e.state, replaceState{next: next})
	}
	if resp.CartToken != "" {
		e.token = resp.CartToken
	}
	e.reconciled = true
	state := snapshot(e.state)
	token := e.token
	e.mu.Unlock()

	saveErr := e.store.Save(state, token)
	var clearErr error
	if saveErr == nil {
		clearErr = e.store.SavePendingConflicts(nil)
	}
	e.notify(state)
	return multierr.Combine(parkErr, saveErr, clearErr)
}

func (e *Engine) notify(state State) {
	e.mu.Lock()
	fns := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (e *Engine) observeMetric(ctx context.Context, op string, elapsed time.Duration, err error) {
	e.metrics.ObserveReconcile(op, elapsed, err)
	if err == nil && e.log != nil {
		e.log.Debug(ctx, "cart reconciliation applied: "+op)
	}
}

func snapshot(state State) State {
	out := state
	out.Lines = append([]types.CartLine(nil), state.Lines...)
	out.Banners = append([]string(nil), state.Banners...)
	return out
}

func identityEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyIdentity(key *string) *string {
	if key == nil {
		return nil
	}
	val := *key
	return &val
}
