package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbos-labs/rbos-backend/pkg/db/models"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type menuReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error)
}

// Service resolves cart tokens and reconciles submitted lines into the
// authoritative server-side cart.
type Service interface {
	ResolveCart(ctx context.Context, token string, identityKey *string) (*types.CartMergeResponse, error)
	MergeCart(ctx context.Context, input MergeInput) (*types.CartMergeResponse, error)
}

type service struct {
	repo Repository
	tx   txRunner
	menu menuReader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, menu menuReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu reader required")
	}
	return &service{repo: repo, tx: tx, menu: menu}, nil
}

// proposal is a submitted line after submission-level dedup, before the menu
// has had its say.
type proposal struct {
	itemID string
	name   string
	qty    int
}

// ResolveCart returns the cart the token (or identity) refers to, creating an
// empty cart under a fresh token when nothing matches.
func (s *service) ResolveCart(ctx context.Context, token string, identityKey *string) (*types.CartMergeResponse, error) {
	if identityKey != nil {
		record, err := s.repo.FindByIdentity(ctx, *identityKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart by identity")
		}
		if record != nil {
			return buildResponse(record, nil), nil
		}
	}

	if token != "" {
		record, err := s.repo.FindByToken(ctx, token)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart by token")
		}
		if record != nil {
			return buildResponse(record, nil), nil
		}
	}

	record := &models.CartRecord{
		ID:          uuid.New(),
		Token:       uuid.NewString(),
		IdentityKey: copyKey(identityKey),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return buildResponse(record, nil), nil
}

// MergeCart reconciles the submitted lines into the target cart. Submitted
// quantities and prices are proposals; the menu is authoritative. Conflicts
// are derived fresh from this submission, so identical retries cannot
// compound them.
func (s *service) MergeCart(ctx context.Context, input MergeInput) (*types.CartMergeResponse, error) {
	for _, item := range input.Items {
		if item.ItemID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
		}
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item qty must be at least 1")
		}
	}

	report := &types.ConflictReport{}
	proposals := collapseSubmission(input.Items, report)

	var resp *types.CartMergeResponse
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, absorbed, err := targetCart(ctx, txRepo, input)
		if err != nil {
			return err
		}

		// A saved cart under a different token holds prior facts the
		// submission does not know about; fold them in. When the token
		// already points at the target cart the submission is the whole
		// truth and replaces it.
		if record != nil && record.Token != input.Token && len(record.Lines) > 0 {
			proposals = unionWithSaved(proposals, record.Lines, report)
		}

		lines, err := s.resolveAgainstMenu(ctx, proposals, report)
		if err != nil {
			return err
		}

		subtotalCents := 0
		for _, line := range lines {
			subtotalCents += line.LineTotalCents
		}
		_, tax, total := types.Totals(toWireLines(lines))

		created := record == nil
		if created {
			record = &models.CartRecord{ID: uuid.New(), IdentityKey: copyKey(input.IdentityKey)}
		}
		if record.IdentityKey == nil && input.IdentityKey != nil {
			record.IdentityKey = copyKey(input.IdentityKey)
		}
		record.Token = uuid.NewString()
		record.SubtotalCents = subtotalCents
		record.TaxCents = types.Cents(tax)
		record.TotalCents = types.Cents(total)

		if created {
			if err := txRepo.Create(ctx, record); err != nil {
				return err
			}
		} else if err := txRepo.Update(ctx, record); err != nil {
			return err
		}
		if err := txRepo.ReplaceLines(ctx, record.ID, lines); err != nil {
			return err
		}
		if absorbed != nil {
			if err := txRepo.Delete(ctx, absorbed.ID); err != nil {
				return err
			}
		}

		record.Lines = lines
		resp = buildResponse(record, report)
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart merge")
	}

	return resp, nil
}

// targetCart picks the cart this merge lands in. An authenticated merge
// always lands in that identity's single cart; a token cart left behind by
// the same request is absorbed (deleted) after the merge.
func targetCart(ctx context.Context, repo Repository, input MergeInput) (record, absorbed *models.CartRecord, err error) {
	byToken := func() (*models.CartRecord, error) {
		if input.Token == "" {
			return nil, nil
		}
		found, err := repo.FindByToken(ctx, input.Token)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return found, nil
	}

	if input.IdentityKey == nil {
		record, err = byToken()
		if err != nil {
			return nil, nil, err
		}
		if record != nil && record.IdentityKey != nil {
			// Anonymous requests never write into an identity's cart.
			return nil, nil, nil
		}
		return record, nil, nil
	}

	record, err = repo.FindByIdentity(ctx, *input.IdentityKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	tokenCart, err := byToken()
	if err != nil {
		return nil, nil, err
	}

	if record != nil {
		if tokenCart != nil && tokenCart.ID != record.ID && tokenCart.IdentityKey == nil {
			absorbed = tokenCart
		}
		return record, absorbed, nil
	}

	if tokenCart != nil && tokenCart.IdentityKey == nil {
		// First authenticated merge claims the anonymous cart.
		return tokenCart, nil, nil
	}
	return nil, nil, nil
}

func collapseSubmission(items []types.MergeRequestItem, report *types.ConflictReport) []proposal {
	index := make(map[string]int, len(items))
	out := make([]proposal, 0, len(items))
	for _, item := range items {
		if at, ok := index[item.ItemID]; ok {
			out[at].qty += item.Qty
			report.Merged = append(report.Merged, types.ConflictEntry{
				ItemID:    item.ItemID,
				Name:      out[at].name,
				Reason:    ReasonDuplicateLine,
				Requested: item.Qty,
				Applied:   out[at].qty,
			})
			continue
		}
		index[item.ItemID] = len(out)
		out = append(out, proposal{itemID: item.ItemID, name: item.Name, qty: item.Qty})
	}
	return out
}

func unionWithSaved(proposals []proposal, saved []models.CartLine, report *types.ConflictReport) []proposal {
	index := make(map[string]int, len(saved))
	out := make([]proposal, 0, len(saved)+len(proposals))
	for _, line := range saved {
		index[line.ItemID] = len(out)
		out = append(out, proposal{itemID: line.ItemID, name: line.Name, qty: line.Qty})
	}
	for _, p := range proposals {
		if at, ok := index[p.itemID]; ok {
			out[at].qty += p.qty
			report.Merged = append(report.Merged, types.ConflictEntry{
				ItemID:    p.itemID,
				Name:      out[at].name,
				Reason:    ReasonCartMerged,
				Requested: p.qty,
				Applied:   out[at].qty,
			})
			continue
		}
		index[p.itemID] = len(out)
		out = append(out, p)
	}
	return out
}

func (s *service) resolveAgainstMenu(ctx context.Context, proposals []proposal, report *types.ConflictReport) ([]models.CartLine, error) {
	ids := make([]string, 0, len(proposals))
	for _, p := range proposals {
		ids = append(ids, p.itemID)
	}
	menuByID, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}

	lines := make([]models.CartLine, 0, len(proposals))
	for _, p := range proposals {
		item, ok := menuByID[p.itemID]
		if !ok {
			report.Dropped = append(report.Dropped, types.ConflictEntry{
				ItemID:    p.itemID,
				Name:      p.name,
				Reason:    ReasonOffMenu,
				Requested: p.qty,
			})
			continue
		}
		if !item.Available || item.StockQty <= 0 {
			report.Dropped = append(report.Dropped, types.ConflictEntry{
				ItemID:    p.itemID,
				Name:      item.Name,
				Reason:    ReasonOutOfStock,
				Requested: p.qty,
			})
			continue
		}

		limit := item.StockQty
		reason := ReasonLimitedStock
		if item.MaxPerOrder > 0 && item.MaxPerOrder < limit {
			limit = item.MaxPerOrder
			reason = ReasonPerOrderLimit
		}
		qty := p.qty
		if qty > limit {
			report.Clamped = append(report.Clamped, types.ConflictEntry{
				ItemID:    p.itemID,
				Name:      item.Name,
				Reason:    reason,
				Requested: qty,
				Applied:   limit,
			})
			qty = limit
		}

		lines = append(lines, models.CartLine{
			ItemID:         item.ID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			Qty:            qty,
			LineTotalCents: item.PriceCents * qty,
			ImageURL:       item.ImageURL,
			DietaryTags:    item.DietaryTags,
		})
	}
	return lines, nil
}

func toWireLines(lines []models.CartLine) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, types.CartLine{
			ItemID:      line.ItemID,
			Name:        line.Name,
			UnitPrice:   types.Dollars(line.UnitPriceCents),
			Qty:         line.Qty,
			LineTotal:   types.Dollars(line.LineTotalCents),
			ImageURL:    line.ImageURL,
			DietaryTags: line.DietaryTags,
		})
	}
	return out
}

func buildResponse(record *models.CartRecord, report *types.ConflictReport) *types.CartMergeResponse {
	resp := &types.CartMergeResponse{
		Items:     toWireLines(record.Lines),
		Subtotal:  types.Dollars(record.SubtotalCents),
		Tax:       types.Dollars(record.TaxCents),
		Total:     types.Dollars(record.TotalCents),
		CartToken: record.Token,
	}
	if !report.IsEmpty() {
		resp.Conflicts = report
	}
	return resp
}

func copyKey(key *string) *string {
	if key == nil {
		return nil
	}
	val := *key
	return &val
}
