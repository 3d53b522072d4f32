package fulfill

import (
	"errors"
	"testing"

	"supplyline/store"
	"supplyline/supplier"
)

type fakeSource struct {
	suppliers   []store.Supplier
	supplierErr error
	consumed    map[string]struct{}
	consumedErr error
	orders      []store.Order
	ordersErr   error

	gotLocationIDs []string
}

func (f *fakeSource) ListSupplierLookup() ([]store.Supplier, error) {
	return f.suppliers, f.supplierErr
}

func (f *fakeSource) ListConsumedOrderItemIDs() (map[string]struct{}, error) {
	if f.consumed == nil {
		f.consumed = map[string]struct{}{}
	}
	return f.consumed, f.consumedErr
}

func (f *fakeSource) ListSubmittedOrders(locationIDs []string) ([]store.Order, error) {
	f.gotLocationIDs = locationIDs
	return f.orders, f.ordersErr
}

func loaderOrders() []store.Order {
	return []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			qtyLine("l1", "salmon", salmonItem(), 3),
			qtyLine("l2", "salmon", salmonItem(), 2),
		},
	}}
}

func loaderSuppliers() []store.Supplier {
	return []store.Supplier{{ID: "s1", Name: "Ocean Fresh", Active: true}}
}

func TestLoadPendingExcludesConsumedAndDeferred(t *testing.T) {
	src := &fakeSource{
		suppliers: loaderSuppliers(),
		consumed:  map[string]struct{}{"l1": {}},
		orders:    loaderOrders(),
	}
	set, err := LoadPending(src, LoadOptions{ExcludeLineIDs: map[string]struct{}{"l2": {}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Orders) != 0 {
		t.Fatalf("orders = %d, want 0 (all lines filtered, order dropped)", len(set.Orders))
	}
	if len(set.Resolutions) != 0 {
		t.Errorf("resolutions = %d, want 0", len(set.Resolutions))
	}
}

func TestLoadPendingResolvesSurvivors(t *testing.T) {
	src := &fakeSource{suppliers: loaderSuppliers(), orders: loaderOrders()}
	set, err := LoadPending(src, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Orders) != 1 || len(set.Orders[0].Lines) != 2 {
		t.Fatalf("want 1 order with 2 lines, got %+v", set.Orders)
	}
	for _, id := range []string{"l1", "l2"} {
		res, ok := set.Resolutions[id]
		if !ok {
			t.Fatalf("line %s has no resolution", id)
		}
		if res.EffectiveSupplierID != "s1" {
			t.Errorf("line %s effective = %s, want s1", id, res.EffectiveSupplierID)
		}
	}
}

func TestLoadPendingLookupFailureIsHard(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{supplierErr: boom}
	if _, err := LoadPending(src, LoadOptions{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped lookup failure", err)
	}
}

func TestLoadPendingLineFilters(t *testing.T) {
	nan := 0.0
	nan /= nan
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			qtyLine("keep-qty", "salmon", salmonItem(), 3),
			qtyLine("drop-zero", "salmon", salmonItem(), 0),
			{ID: "drop-cancelled", InventoryItemID: "salmon", InputMode: store.InputModeQuantity,
				Quantity: 2, Status: store.LineStatusCancelled, Item: salmonItem()},
			{ID: "keep-remaining", InventoryItemID: "salmon", InputMode: store.InputModeRemaining,
				RemainingReported: fltp(10), Item: salmonItem()},
			{ID: "drop-remaining-nan", InventoryItemID: "salmon", InputMode: store.InputModeRemaining,
				RemainingReported: &nan, Item: salmonItem()},
			{ID: "keep-decided", InventoryItemID: "salmon", InputMode: store.InputModeRemaining,
				DecidedQuantity: fltp(4), Item: salmonItem()},
			{ID: "drop-no-signal", InventoryItemID: "salmon", InputMode: store.InputModeRemaining,
				Item: salmonItem()},
		},
	}}
	src := &fakeSource{suppliers: loaderSuppliers(), orders: orders}
	set, err := LoadPending(src, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"keep-qty": true, "keep-remaining": true, "keep-decided": true}
	if len(set.Orders) != 1 || len(set.Orders[0].Lines) != len(want) {
		t.Fatalf("kept %d lines, want %d", len(set.Orders[0].Lines), len(want))
	}
	for _, ln := range set.Orders[0].Lines {
		if !want[ln.ID] {
			t.Errorf("line %s should have been filtered", ln.ID)
		}
	}
}

func TestLoadPendingMissingItemGetsSentinel(t *testing.T) {
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			{ID: "l1", InventoryItemID: "ghost", InputMode: store.InputModeQuantity,
				Quantity: 1, Item: nil},
		},
	}}
	src := &fakeSource{suppliers: loaderSuppliers(), orders: orders}
	set, err := LoadPending(src, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	res := set.Resolutions["l1"]
	if res.EffectiveSupplierID != supplier.UnknownItemID {
		t.Errorf("effective = %s, want %s", res.EffectiveSupplierID, supplier.UnknownItemID)
	}
}

func TestLoadPendingPassesLocationScope(t *testing.T) {
	src := &fakeSource{suppliers: loaderSuppliers()}
	if _, err := LoadPending(src, LoadOptions{LocationIDs: []string{"loc1", "loc2"}}); err != nil {
		t.Fatal(err)
	}
	if len(src.gotLocationIDs) != 2 {
		t.Errorf("location scope not forwarded: %v", src.gotLocationIDs)
	}
}
