package fulfill

import (
	"math/rand"
	"strings"
	"testing"

	"supplyline/store"
	"supplyline/supplier"
)

func strp(s string) *string   { return &s }
func fltp(f float64) *float64 { return &f }

func testLookup() *supplier.Lookup {
	return supplier.NewLookup([]store.Supplier{
		{ID: "s1", Name: "Ocean Fresh", Active: true},
		{ID: "s2", Name: "Pacific Produce", Active: true},
		{ID: "s3", Name: "Dry Goods Co", Active: false},
	})
}

func salmonItem() *store.InventoryItem {
	return &store.InventoryItem{
		ID: "salmon", Name: "Salmon", Category: "fish",
		BaseUnit: "lb", PackUnit: "case", PackSize: 10,
		DefaultSupplierID: strp("s1"), Active: true,
	}
}

// buildSet assembles a PendingSet the way the loader would, resolving each
// line against the test lookup.
func buildSet(orders []store.Order) *PendingSet {
	set := &PendingSet{
		Orders:      orders,
		Lookup:      testLookup(),
		Resolutions: make(map[string]supplier.Resolved),
		Issues:      &supplier.Issues{},
	}
	for _, o := range orders {
		for i := range o.Lines {
			ln := &o.Lines[i]
			set.Resolutions[ln.ID] = supplier.Resolve(ln.Item, ln, set.Lookup, set.Issues)
		}
	}
	return set
}

func qtyLine(id, itemID string, item *store.InventoryItem, qty float64) store.OrderLine {
	return store.OrderLine{
		ID: id, InventoryItemID: itemID, UnitType: store.UnitTypePack,
		InputMode: store.InputModeQuantity, Quantity: qty, Item: item,
	}
}

func TestAggregateSalmonTwoLocations(t *testing.T) {
	orders := []store.Order{
		{
			ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
			Lines: []store.OrderLine{qtyLine("l1", "salmon", salmonItem(), 3)},
		},
		{
			ID: "o2", LocationID: "loc2", LocationName: "Poki-B", UserName: "Ben",
			Lines: []store.OrderLine{qtyLine("l2", "salmon", salmonItem(), 2)},
		},
	}
	res := Aggregate(buildSet(orders), nil)

	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(res.Groups))
	}
	g := res.Groups[0]
	if g.SupplierID != "s1" {
		t.Fatalf("supplier = %s, want s1", g.SupplierID)
	}
	if len(g.Categories) != 1 || len(g.Categories[0].Items) != 1 {
		t.Fatalf("want exactly one item in one category, got %+v", g.Categories)
	}
	item := g.Categories[0].Items[0]
	if item.TotalQuantity != 5 {
		t.Errorf("total = %v, want 5", item.TotalQuantity)
	}
	if len(item.Locations) != 2 {
		t.Fatalf("locations = %d, want 2", len(item.Locations))
	}

	split := SplitByLocation(g)
	if len(split) != 2 {
		t.Fatalf("split rows = %d, want 2", len(split))
	}
	if split[0].LocationGroup != GroupSushi || split[0].Quantity != 3 {
		t.Errorf("sushi split = %s/%v, want sushi/3", split[0].LocationGroup, split[0].Quantity)
	}
	if split[1].LocationGroup != GroupPoki || split[1].Quantity != 2 {
		t.Errorf("poki split = %s/%v, want poki/2", split[1].LocationGroup, split[1].Quantity)
	}
}

func TestAggregateConservation(t *testing.T) {
	orders := []store.Order{
		{
			ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
			Lines: []store.OrderLine{
				qtyLine("l1", "salmon", salmonItem(), 3),
				qtyLine("l2", "salmon", salmonItem(), 4),
			},
		},
		{
			ID: "o2", LocationID: "loc2", LocationName: "Poki-B", UserName: "Ben",
			Lines: []store.OrderLine{qtyLine("l3", "salmon", salmonItem(), 2)},
		},
	}
	res := Aggregate(buildSet(orders), nil)
	for _, g := range res.Groups {
		for _, cat := range g.Categories {
			for _, item := range cat.Items {
				if item.Mode != ModeQuantity {
					continue
				}
				var sum float64
				for _, loc := range item.Locations {
					sum += loc.Quantity
				}
				if sum != item.TotalQuantity {
					t.Errorf("item %s: total %v != location sum %v", item.Key, item.TotalQuantity, sum)
				}
			}
		}
	}
}

func TestAggregateMergeDeterminism(t *testing.T) {
	rice := &store.InventoryItem{
		ID: "rice", Name: "Rice", Category: "dry",
		BaseUnit: "kg", PackUnit: "bag", PackSize: 20,
		DefaultSupplierID: strp("s3"), Active: true,
	}
	lines := []store.OrderLine{
		qtyLine("l1", "salmon", salmonItem(), 3),
		qtyLine("l2", "rice", rice, 1),
		qtyLine("l3", "salmon", salmonItem(), 2),
		qtyLine("l4", "rice", rice, 5),
		qtyLine("l5", "salmon", salmonItem(), 7),
	}

	collect := func(res Result) map[string]float64 {
		out := map[string]float64{}
		for _, g := range res.Groups {
			for _, cat := range g.Categories {
				for _, item := range cat.Items {
					out[item.Key] = item.TotalQuantity
				}
			}
		}
		return out
	}

	baseOrders := func(ls []store.OrderLine) []store.Order {
		return []store.Order{{
			ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
			Lines: ls,
		}}
	}

	want := collect(Aggregate(buildSet(baseOrders(lines)), nil))

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]store.OrderLine(nil), lines...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := collect(Aggregate(buildSet(baseOrders(shuffled)), nil))
		if len(got) != len(want) {
			t.Fatalf("trial %d: %d items, want %d", trial, len(got), len(want))
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("trial %d: key %s total = %v, want %v", trial, k, got[k], v)
			}
		}
	}
}

func TestAggregateRemainingMode(t *testing.T) {
	line := store.OrderLine{
		ID: "l1", InventoryItemID: "salmon", UnitType: store.UnitTypeBase,
		InputMode: store.InputModeRemaining, RemainingReported: fltp(10),
		Item: salmonItem(),
	}
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{line},
	}}

	res := Aggregate(buildSet(orders), nil)
	item := res.Groups[0].Categories[0].Items[0]
	if item.TotalQuantity != 0 {
		t.Errorf("undecided total = %v, want 0", item.TotalQuantity)
	}
	if item.RemainingReportedTotal != 10 {
		t.Errorf("reported total = %v, want 10", item.RemainingReportedTotal)
	}
	if !item.Locations[0].HasUndecidedRemaining {
		t.Error("HasUndecidedRemaining should be true before a decision")
	}

	// Remaining-mode zero-quantity splits still appear.
	split := SplitByLocation(res.Groups[0])
	if len(split) != 1 {
		t.Fatalf("split rows = %d, want 1", len(split))
	}

	// A fresh aggregation after the decision counts the decided quantity.
	orders[0].Lines[0].DecidedQuantity = fltp(7)
	res = Aggregate(buildSet(orders), nil)
	item = res.Groups[0].Categories[0].Items[0]
	if item.TotalQuantity != 7 {
		t.Errorf("decided total = %v, want 7", item.TotalQuantity)
	}
	if item.Locations[0].HasUndecidedRemaining {
		t.Error("HasUndecidedRemaining should clear after the decision")
	}
}

func TestAggregateSentinelExclusion(t *testing.T) {
	mystery := &store.InventoryItem{
		ID: "mystery", Name: "Mystery", Category: "dry",
		BaseUnit: "ea", Active: true,
	}
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			qtyLine("l1", "salmon", salmonItem(), 3),
			qtyLine("l2", "mystery", mystery, 1),
			{ID: "l3", InventoryItemID: "ghost", UnitType: store.UnitTypeBase,
				InputMode: store.InputModeQuantity, Quantity: 2, Item: nil},
		},
	}}

	res := Aggregate(buildSet(orders), nil)
	for _, g := range res.Groups {
		if strings.HasPrefix(g.SupplierID, supplier.SentinelUnknown) ||
			strings.HasPrefix(g.SupplierID, supplier.SentinelUnresolved) {
			t.Errorf("sentinel supplier %s leaked into groups", g.SupplierID)
		}
	}
	if len(res.Unresolved) != 2 {
		t.Errorf("unresolved = %d, want 2", len(res.Unresolved))
	}
}

func TestAggregateLocationTotality(t *testing.T) {
	for _, tc := range []struct{ name, code, want string }{
		{"Poki-B", "PKB", GroupPoki},
		{"Downtown Poke Bar", "", GroupPoki},
		{"Sushi-A", "SUA", GroupSushi},
		{"", "", GroupSushi},
		{"Warehouse 7", "W7", GroupSushi},
	} {
		got := GetLocationGroup(tc.name, tc.code)
		if got != tc.want {
			t.Errorf("GetLocationGroup(%q,%q) = %s, want %s", tc.name, tc.code, got, tc.want)
		}
		if got != GroupSushi && got != GroupPoki {
			t.Errorf("GetLocationGroup(%q,%q) = %s, outside the fixed groups", tc.name, tc.code, got)
		}
	}
}

func TestAggregateGroupSorting(t *testing.T) {
	rice := &store.InventoryItem{
		ID: "rice", Name: "Rice", Category: "dry",
		BaseUnit: "kg", DefaultSupplierID: strp("s3"), Active: true,
	}
	tuna := &store.InventoryItem{
		ID: "tuna", Name: "Tuna", Category: "fish",
		BaseUnit: "lb", DefaultSupplierID: strp("s2"), Active: true,
	}
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			qtyLine("l1", "rice", rice, 1),
			qtyLine("l2", "tuna", tuna, 1),
			qtyLine("l3", "salmon", salmonItem(), 1),
		},
	}}
	res := Aggregate(buildSet(orders), nil)
	if len(res.Groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(res.Groups))
	}
	// Active suppliers first (Ocean Fresh, Pacific Produce), inactive last.
	want := []string{"s1", "s2", "s3"}
	for i, g := range res.Groups {
		if g.SupplierID != want[i] {
			t.Errorf("group[%d] = %s, want %s", i, g.SupplierID, want[i])
		}
	}
}

func TestAggregateDraftOnlySupplierKept(t *testing.T) {
	drafts := []store.SupplierDraftItem{{
		ID: "d1", DeferredItemID: "def1", SupplierID: "s2",
		Name: "Wasabi", Category: "dry", Quantity: 2,
		UnitType: store.UnitTypeBase, UnitLabel: "tube",
		LocationGroup: GroupSushi, LocationID: "loc1", LocationName: "Sushi-A",
	}}
	res := Aggregate(buildSet(nil), drafts)
	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1 (draft-only supplier)", len(res.Groups))
	}
	g := res.Groups[0]
	if g.SupplierID != "s2" || len(g.Drafts) != 1 {
		t.Fatalf("group = %s drafts=%d, want s2 with 1 draft", g.SupplierID, len(g.Drafts))
	}
	if g.SupplierName != "Pacific Produce" {
		t.Errorf("supplier name = %s, want looked-up name", g.SupplierName)
	}

	split := SplitByLocation(g)
	if len(split) != 1 {
		t.Fatalf("split rows = %d, want 1 draft row", len(split))
	}
	row := split[0]
	if row.DraftID != "d1" || len(row.SourceLineIDs) != 0 {
		t.Errorf("draft row = draftID %s sourceLines %d, want d1 with no source lines", row.DraftID, len(row.SourceLineIDs))
	}
	if row.Mode != ModeQuantity || row.Quantity != 2 {
		t.Errorf("draft row = %s/%v, want quantity/2", row.Mode, row.Quantity)
	}
}

func TestAggregateUnitConfigSplitsKeys(t *testing.T) {
	// Same item id, different pack size: must not merge.
	a := salmonItem()
	b := salmonItem()
	b.PackSize = 25
	orders := []store.Order{{
		ID: "o1", LocationID: "loc1", LocationName: "Sushi-A", UserName: "Aki",
		Lines: []store.OrderLine{
			qtyLine("l1", "salmon", a, 3),
			qtyLine("l2", "salmon", b, 2),
		},
	}}
	res := Aggregate(buildSet(orders), nil)
	items := res.Groups[0].Categories[0].Items
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 distinct unit configurations", len(items))
	}
}
