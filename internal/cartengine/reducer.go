package cartengine

import "github.com/rbos-labs/rbos-backend/pkg/types"

// State is the client-side cart: the resolved lines, totals derived from
// them, and the banner strings queued for display.
type State struct {
	Lines    []types.CartLine `json:"items"`
	Subtotal float64          `json:"subtotal"`
	Tax      float64          `json:"tax"`
	Total    float64          `json:"total"`
	Banners  []string         `json:"banners,omitempty"`
}

// Action is a cart state transition applied through Reduce.
type Action interface {
	isAction()
}

// AddItem appends the line with qty 1, or bumps the existing line's qty by
// one when the item is already in the cart. The line's Qty field is ignored.
type AddItem struct {
	Line types.CartLine
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
type UpdateQuantity struct {
	ItemID string
	Qty    int
}

// RemoveItem drops a line. A missing itemId is a no-op.
type RemoveItem struct {
	ItemID string
}

// ClearCart resets to the empty cart, banners included.
type ClearCart struct{}

// DismissBanners clears queued banners without touching the lines.
type DismissBanners struct{}

// replaceState swaps in a server-resolved cart wholesale. Only the engine
// issues it; every other mutation goes through the public actions.
type replaceState struct {
	next State
}

func (AddItem) isAction()        {}
func (UpdateQuantity) isAction() {}
func (RemoveItem) isAction()     {}
func (ClearCart) isAction()      {}
func (DismissBanners) isAction() {}
func (replaceState) isAction()   {}

// Reduce is a pure transition function. Totals are always re-derived from
// the resulting lines, never patched incrementally.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		lines := cloneLines(state.Lines)
		found := false
		for i := range lines {
			if lines[i].ItemID == a.Line.ItemID {
				lines[i].Qty++
				found = true
				break
			}
		}
		if !found {
			line := a.Line
			line.Qty = 1
			lines = append(lines, line)
		}
		return rebuild(state, lines)

	case UpdateQuantity:
		if a.Qty <= 0 {
			return Reduce(state, RemoveItem{ItemID: a.ItemID})
		}
		lines := cloneLines(state.Lines)
		for i := range lines {
			if lines[i].ItemID == a.ItemID {
				lines[i].Qty = a.Qty
			}
		}
		return rebuild(state, lines)

	case RemoveItem:
		lines := make([]types.CartLine, 0, len(state.Lines))
		for _, line := range state.Lines {
			if line.ItemID != a.ItemID {
				lines = append(lines, line)
			}
		}
		return rebuild(state, lines)

	case ClearCart:
		return State{}

	case DismissBanners:
		state.Banners = nil
		return state

	case replaceState:
		return rebuild(State{Banners: a.next.Banners}, a.next.Lines)

	default:
		return state
	}
}

// rebuild normalizes the lines (unique itemId, recomputed line totals) and
// re-derives the aggregate totals.
func rebuild(state State, lines []types.CartLine) State {
	state.Lines = types.NormalizeLines(lines)
	state.Subtotal, state.Tax, state.Total = types.Totals(state.Lines)
	return state
}

func cloneLines(lines []types.CartLine) []types.CartLine {
	if len(lines) == 0 {
		return nil
	}
	return append([]types.CartLine(nil), lines...)
}
