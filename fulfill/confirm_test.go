package fulfill

import (
	"testing"

	"supplyline/store"
)

func confirmOrders() []store.Order {
	return []store.Order{
		{
			ID: "o1", LocationID: "loc1", LocationName: "Sushi-A",
			UserID: "u1", UserName: "Aki",
			Lines: []store.OrderLine{
				qtyLine("l1", "salmon", salmonItem(), 3),
			},
		},
		{
			ID: "o2", LocationID: "loc1", LocationName: "Sushi-A",
			UserID: "u2", UserName: "Ben",
			Lines: []store.OrderLine{
				qtyLine("l2", "salmon", salmonItem(), 2),
			},
		},
	}
}

func TestBuildConfirmationMergesContributors(t *testing.T) {
	conf := BuildConfirmation("s1", buildSet(confirmOrders()), nil, nil)
	if len(conf.Regular) != 1 {
		t.Fatalf("regular = %d, want 1", len(conf.Regular))
	}
	r := conf.Regular[0]
	if r.Quantity != 5 || r.SumOfContributorQuantities != 5 {
		t.Errorf("qty/sum = %v/%v, want 5/5", r.Quantity, r.SumOfContributorQuantities)
	}
	if len(r.Contributors) != 2 {
		t.Fatalf("contributors = %d, want 2", len(r.Contributors))
	}
	if len(r.Locations) != 1 || r.Locations[0].Quantity != 5 {
		t.Fatalf("want one location carrying 5, got %+v", r.Locations)
	}
	if r.Locations[0].OrderedBy != "Aki, Ben" {
		t.Errorf("orderedBy = %q, want combined names", r.Locations[0].OrderedBy)
	}
}

func TestBuildConfirmationOverrideReplaces(t *testing.T) {
	key := ConfirmKey(GroupSushi, "salmon", store.UnitTypePack)
	conf := BuildConfirmation("s1", buildSet(confirmOrders()), nil, map[string]float64{key: 9})
	r := conf.Regular[0]
	if r.Quantity != 9 {
		t.Errorf("quantity = %v, want override 9", r.Quantity)
	}
	if r.SumOfContributorQuantities != 5 {
		t.Errorf("raw sum = %v, want preserved 5", r.SumOfContributorQuantities)
	}
	if !r.Overridden {
		t.Error("Overridden should be set")
	}
}

func TestBuildConfirmationZeroOverrideDrops(t *testing.T) {
	key := ConfirmKey(GroupSushi, "salmon", store.UnitTypePack)
	conf := BuildConfirmation("s1", buildSet(confirmOrders()), nil, map[string]float64{key: 0})
	if len(conf.Regular) != 0 {
		t.Fatalf("regular = %d, want 0 after zero override", len(conf.Regular))
	}
}

func TestBuildConfirmationDraftsAsOrderLater(t *testing.T) {
	drafts := []store.SupplierDraftItem{{
		ID: "d1", DeferredItemID: "def1", SupplierID: "s1",
		InventoryItemID: strp("salmon"), Name: "Salmon", Category: "fish",
		Quantity: 4, UnitType: store.UnitTypePack, UnitLabel: "case",
		LocationGroup: GroupSushi, LocationID: "loc9", LocationName: "Sushi-C",
	}}
	conf := BuildConfirmation("s1", buildSet(confirmOrders()), drafts, nil)
	if len(conf.Regular) != 1 {
		t.Fatalf("regular = %d, want 1 (draft merges into same key)", len(conf.Regular))
	}
	r := conf.Regular[0]
	if r.Quantity != 9 {
		t.Errorf("quantity = %v, want 5+4", r.Quantity)
	}
	if len(r.DraftIDs) != 1 || r.DraftIDs[0] != "d1" {
		t.Errorf("draftIDs = %v, want [d1]", r.DraftIDs)
	}
	var found bool
	for _, c := range r.Contributors {
		if c.UserID == nil && c.Name == OrderLaterContributor {
			found = true
			if c.Quantity != 4 {
				t.Errorf("Order Later quantity = %v, want 4", c.Quantity)
			}
		}
	}
	if !found {
		t.Error("synthetic Order Later contributor missing")
	}
}

func TestBuildConfirmationRemainingPerLine(t *testing.T) {
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A",
		UserID: "u1", UserName: "Aki",
		Lines: []store.OrderLine{
			{ID: "l1", InventoryItemID: "salmon", UnitType: store.UnitTypeBase,
				InputMode: store.InputModeRemaining, RemainingReported: fltp(10),
				Item: salmonItem()},
			{ID: "l2", InventoryItemID: "salmon", UnitType: store.UnitTypeBase,
				InputMode: store.InputModeRemaining, RemainingReported: fltp(3),
				DecidedQuantity: fltp(7), Item: salmonItem()},
		},
	}}
	conf := BuildConfirmation("s1", buildSet(orders), nil, nil)
	if len(conf.Remaining) != 2 {
		t.Fatalf("remaining = %d, want 2 (never merged)", len(conf.Remaining))
	}
	if conf.Remaining[0].DecidedQuantity != nil {
		t.Error("first line should be undecided")
	}
	if conf.Remaining[1].DecidedQuantity == nil || *conf.Remaining[1].DecidedQuantity != 7 {
		t.Error("second line should carry decided quantity 7")
	}
}

func TestBuildConfirmationFiltersSupplier(t *testing.T) {
	tuna := &store.InventoryItem{
		ID: "tuna", Name: "Tuna", Category: "fish",
		BaseUnit: "lb", DefaultSupplierID: strp("s2"), Active: true,
	}
	orders := confirmOrders()
	orders[0].Lines = append(orders[0].Lines, qtyLine("l9", "tuna", tuna, 1))
	conf := BuildConfirmation("s1", buildSet(orders), nil, nil)
	for _, r := range conf.Regular {
		if r.InventoryItemID == "tuna" {
			t.Error("line resolving to a different supplier leaked into confirmation")
		}
	}
}

func TestBuildConfirmationSortedByGroupThenName(t *testing.T) {
	avocado := &store.InventoryItem{
		ID: "avocado", Name: "Avocado", Category: "produce",
		BaseUnit: "ea", DefaultSupplierID: strp("s1"), Active: true,
	}
	orders := []store.Order{
		{
			ID: "o1", LocationID: "loc2", LocationName: "Poki-B",
			UserID: "u1", UserName: "Aki",
			Lines: []store.OrderLine{qtyLine("l1", "salmon", salmonItem(), 1)},
		},
		{
			ID: "o2", LocationID: "loc1", LocationName: "Sushi-A",
			UserID: "u2", UserName: "Ben",
			Lines: []store.OrderLine{
				qtyLine("l2", "salmon", salmonItem(), 1),
				qtyLine("l3", "avocado", avocado, 1),
			},
		},
	}
	conf := BuildConfirmation("s1", buildSet(orders), nil, nil)
	if len(conf.Regular) != 3 {
		t.Fatalf("regular = %d, want 3", len(conf.Regular))
	}
	got := []string{
		conf.Regular[0].LocationGroup + "/" + conf.Regular[0].Name,
		conf.Regular[1].LocationGroup + "/" + conf.Regular[1].Name,
		conf.Regular[2].LocationGroup + "/" + conf.Regular[2].Name,
	}
	want := []string{"poki/Salmon", "sushi/Avocado", "sushi/Salmon"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("regular[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
