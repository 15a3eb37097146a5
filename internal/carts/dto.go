package carts

import "github.com/rbos-labs/rbos-backend/pkg/types"

// MergeInput carries one reconciliation request: the submitted proposal
// lines, the token the client currently holds, and the authenticated
// identity key when the request carried credentials.
type MergeInput struct {
	Token       string
	IdentityKey *string
	Items       []types.MergeRequestItem
}

// Conflict reasons surfaced to clients. These are wire values, not free
// text; the banner projector owns the user-facing copy.
const (
	ReasonOffMenu       = "no longer on the menu"
	ReasonOutOfStock    = "out of stock"
	ReasonLimitedStock  = "limited stock"
	ReasonPerOrderLimit = "per-order limit"
	ReasonDuplicateLine = "duplicate lines combined"
	ReasonCartMerged    = "combined with your saved cart"
)
