package cartengine

import (
	"testing"

	"github.com/rbos-labs/rbos-backend/pkg/types"
)

func line(id string, price float64) types.CartLine {
	return types.CartLine{ItemID: id, Name: id, UnitPrice: price}
}

func TestReduceAddItem(t *testing.T) {
	state := Reduce(State{}, AddItem{Line: line("soda", 2.50)})
	if len(state.Lines) != 1 || state.Lines[0].Qty != 1 {
		t.Fatalf("first add: %+v", state.Lines)
	}
	state = Reduce(state, AddItem{Line: line("soda", 2.50)})
	if len(state.Lines) != 1 || state.Lines[0].Qty != 2 {
		t.Fatalf("second add should bump qty: %+v", state.Lines)
	}
	if state.Lines[0].LineTotal != 5.00 {
		t.Fatalf("line total = %v, want 5.00", state.Lines[0].LineTotal)
	}
	if state.Subtotal != 5.00 || state.Tax != 0.40 || state.Total != 5.40 {
		t.Fatalf("totals = %v/%v/%v", state.Subtotal, state.Tax, state.Total)
	}
}

func TestReduceUpdateQuantity(t *testing.T) {
	state := Reduce(State{}, AddItem{Line: line("salad", 8.99)})
	state = Reduce(state, UpdateQuantity{ItemID: "salad", Qty: 3})
	if state.Lines[0].Qty != 3 || state.Lines[0].LineTotal != 26.97 {
		t.Fatalf("after update: %+v", state.Lines[0])
	}
	state = Reduce(state, UpdateQuantity{ItemID: "salad", Qty: 0})
	if len(state.Lines) != 0 {
		t.Fatalf("qty 0 should remove the line: %+v", state.Lines)
	}
	if state.Subtotal != 0 || state.Total != 0 {
		t.Fatalf("totals should reset: %v/%v", state.Subtotal, state.Total)
	}
}

func TestReduceRemoveMissingIsNoop(t *testing.T) {
	state := Reduce(State{}, AddItem{Line: line("soda", 2.50)})
	next := Reduce(state, RemoveItem{ItemID: "ghost"})
	if len(next.Lines) != 1 || next.Subtotal != state.Subtotal {
		t.Fatalf("removing a missing item changed state: %+v", next)
	}
}

func TestReduceClearCart(t *testing.T) {
	state := Reduce(State{}, AddItem{Line: line("soda", 2.50)})
	state.Banners = []string{"old banner"}
	state = Reduce(state, ClearCart{})
	if len(state.Lines) != 0 || len(state.Banners) != 0 || state.Total != 0 {
		t.Fatalf("clear left residue: %+v", state)
	}
}

func TestReduceDismissBannersKeepsLines(t *testing.T) {
	state := Reduce(State{}, AddItem{Line: line("soda", 2.50)})
	state.Banners = []string{"a", "b"}
	state = Reduce(state, DismissBanners{})
	if len(state.Banners) != 0 {
		t.Fatalf("banners survived dismissal: %v", state.Banners)
	}
	if len(state.Lines) != 1 {
		t.Fatalf("dismissal touched lines: %+v", state.Lines)
	}
}

func TestReduceTotalsAlwaysDerivedFromLines(t *testing.T) {
	state := State{}
	actions := []Action{
		AddItem{Line: line("soda", 2.50)},
		AddItem{Line: line("salad", 8.99)},
		AddItem{Line: line("soda", 2.50)},
		UpdateQuantity{ItemID: "salad", Qty: 4},
		RemoveItem{ItemID: "soda"},
		AddItem{Line: line("pizza", 14.50)},
	}
	for _, action := range actions {
		state = Reduce(state, action)
		sum := 0.0
		for _, l := range state.Lines {
			if l.LineTotal != types.LineTotal(l.UnitPrice, l.Qty) {
				t.Fatalf("line total drift on %T: %+v", action, l)
			}
			sum += l.LineTotal
		}
		if state.Subtotal != types.Round2(sum) {
			t.Fatalf("subtotal drift on %T: %v vs %v", action, state.Subtotal, sum)
		}
		if state.Total != types.Round2(state.Subtotal+state.Tax) {
			t.Fatalf("total drift on %T: %+v", action, state)
		}
	}
}

func TestReduceReplaceStateDeduplicates(t *testing.T) {
	dup := []types.CartLine{
		{ItemID: "soda", Name: "Soda", UnitPrice: 2.50, Qty: 1},
		{ItemID: "soda", Name: "Soda", UnitPrice: 2.50, Qty: 1},
	}
	state := Reduce(State{}, replaceState{next: State{Lines: dup}})
	if len(state.Lines) != 1 || state.Lines[0].Qty != 2 {
		t.Fatalf("duplicate lines survived replace: %+v", state.Lines)
	}
}
