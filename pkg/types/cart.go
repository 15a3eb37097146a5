package types

// CartTokenHeader carries the opaque cart token on every gateway request and
// any rotation on the response. An empty or absent response value means no
// rotation.
const CartTokenHeader = "X-Cart-Token"

// CartLine is one resolved line of a cart. LineTotal always equals
// Qty * UnitPrice at cents precision.
type CartLine struct {
	ItemID      string  `json:"itemId"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unitPrice"`
	Qty         int     `json:"qty"`
	LineTotal   float64 `json:"lineTotal"`
	Notes       string  `json:"notes,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	DietaryTags string  `json:"dietaryTags,omitempty"`
}

// ConflictEntry reports one adjustment the server made to a requested line.
type ConflictEntry struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
}

// ConflictReport groups adjustments by kind. Only the server produces these;
// clients render them verbatim.
type ConflictReport struct {
	Dropped []ConflictEntry `json:"dropped,omitempty"`
	Clamped []ConflictEntry `json:"clamped,omitempty"`
	Merged  []ConflictEntry `json:"merged,omitempty"`
}

// IsEmpty reports whether the report carries no entries.
func (r *ConflictReport) IsEmpty() bool {
	return r == nil || (len(r.Dropped) == 0 && len(r.Clamped) == 0 && len(r.Merged) == 0)
}

// Len returns the total number of entries across all kinds.
func (r *ConflictReport) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Dropped) + len(r.Clamped) + len(r.Merged)
}

// CombineReports appends b's entries after a's, kind by kind. Either side may
// be nil; the result is nil when both are empty.
func CombineReports(a, b *ConflictReport) *ConflictReport {
	if a.IsEmpty() && b.IsEmpty() {
		return nil
	}
	out := &ConflictReport{}
	for _, r := range []*ConflictReport{a, b} {
		if r == nil {
			continue
		}
		out.Dropped = append(out.Dropped, r.Dropped...)
		out.Clamped = append(out.Clamped, r.Clamped...)
		out.Merged = append(out.Merged, r.Merged...)
	}
	return out
}

// MergeRequestItem is a proposed line the client submits for reconciliation.
// Prices are proposals; the server reprices from the menu.
type MergeRequestItem struct {
	ItemID    string  `json:"itemId" validate:"required"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty" validate:"min=1"`
	UnitPrice float64 `json:"unitPrice" validate:"min=0"`
}

// CartMergeRequest carries the local lines plus the current token.
type CartMergeRequest struct {
	CartToken string             `json:"cartToken,omitempty"`
	Items     []MergeRequestItem `json:"items" validate:"dive"`
}

// CartMergeResponse is the authoritative resolved cart returned by both
// gateway endpoints.
type CartMergeResponse struct {
	Items     []CartLine      `json:"items"`
	Subtotal  float64         `json:"subtotal"`
	Tax       float64         `json:"tax"`
	Total     float64         `json:"total"`
	CartToken string          `json:"cartToken,omitempty"`
	Conflicts *ConflictReport `json:"conflicts,omitempty"`
}
