package fulfill

import (
	"sort"
	"strconv"
	"strings"

	"supplyline/store"
	"supplyline/supplier"
)

// Result is the output of one aggregation pass. Unresolved holds the rows
// whose effective supplier is a sentinel; they never appear in Groups but
// stay discoverable for diagnostics.
type Result struct {
	Groups     []SupplierGroup  `json:"groups"`
	Unresolved []AggregatedItem `json:"unresolved"`
}

// mergeKey identifies an AggregatedItem. Name and unit configuration are part
// of the key on purpose: two catalog rows that look like the same item but
// disagree on units must never be silently merged.
func mergeKey(itemID, name, supplierID, category, mode, unitType, baseUnit, packUnit string, packSize float64) string {
	return strings.Join([]string{
		itemID,
		strings.ToLower(strings.TrimSpace(name)),
		supplierID,
		category,
		mode,
		unitType,
		baseUnit,
		packUnit,
		strconv.FormatFloat(packSize, 'f', -1, 64),
	}, "|")
}

// Aggregate merges the pending set's order lines into supplier-scoped,
// category-bucketed AggregatedItems. Drafts only decide which otherwise-empty
// supplier groups must still be shown; their rows surface via SplitByLocation
// and the confirmation builder.
func Aggregate(set *PendingSet, drafts []store.SupplierDraftItem) Result {
	var keys []string
	index := map[string]*AggregatedItem{}

	for _, o := range set.Orders {
		group := GetLocationGroup(o.LocationName, o.LocationShortCode)
		for i := range o.Lines {
			ln := &o.Lines[i]
			res, ok := set.Resolutions[ln.ID]
			if !ok {
				res = supplier.Resolve(ln.Item, ln, set.Lookup, nil)
			}

			mode := ModeQuantity
			if ln.InputMode == store.InputModeRemaining {
				mode = ModeRemaining
			}

			var name, category, baseUnit, packUnit string
			var packSize float64
			if ln.Item != nil {
				name = ln.Item.Name
				category = ln.Item.Category
				baseUnit = ln.Item.BaseUnit
				packUnit = ln.Item.PackUnit
				packSize = ln.Item.PackSize
			}

			key := mergeKey(ln.InventoryItemID, name, res.EffectiveSupplierID, category, mode,
				ln.UnitType, baseUnit, packUnit, packSize)
			agg, exists := index[key]
			if !exists {
				agg = &AggregatedItem{
					Key:             key,
					InventoryItemID: ln.InventoryItemID,
					Name:            name,
					Category:        category,
					SupplierID:      res.EffectiveSupplierID,
					SupplierName:    res.EffectiveSupplierName,
					Mode:            mode,
					UnitType:        ln.UnitType,
					BaseUnit:        baseUnit,
					PackUnit:        packUnit,
					PackSize:        packSize,
				}
				index[key] = agg
				keys = append(keys, key)
			}

			qty, reported, undecided := lineContribution(ln)
			agg.TotalQuantity += qty
			agg.RemainingReportedTotal += reported
			agg.Notes = appendUnique(agg.Notes, strings.TrimSpace(ln.Note))
			agg.SourceLineIDs = append(agg.SourceLineIDs, ln.ID)
			agg.OrderIDs = appendUnique(agg.OrderIDs, o.ID)

			entry := findLocationEntry(&agg.Locations, o.LocationID)
			if entry == nil {
				agg.Locations = append(agg.Locations, LocationEntry{
					LocationID:    o.LocationID,
					LocationName:  o.LocationName,
					LocationGroup: group,
				})
				entry = &agg.Locations[len(agg.Locations)-1]
			}
			entry.Quantity += qty
			entry.RemainingReported += reported
			entry.HasUndecidedRemaining = entry.HasUndecidedRemaining || undecided
			entry.Notes = appendUnique(entry.Notes, strings.TrimSpace(ln.Note))
			entry.OrderedBy = appendUnique(entry.OrderedBy, o.UserName)
			entry.SourceLineIDs = append(entry.SourceLineIDs, ln.ID)
		}
	}

	var result Result
	buckets := map[string]*SupplierGroup{}
	var supplierIDs []string

	ensureGroup := func(id, name string) *SupplierGroup {
		if g, ok := buckets[id]; ok {
			return g
		}
		g := &SupplierGroup{SupplierID: id, SupplierName: name, Active: true}
		if s, ok := set.Lookup.ByID(id); ok {
			g.SupplierName = s.Name
			g.Active = s.Active
		}
		buckets[id] = g
		supplierIDs = append(supplierIDs, id)
		return g
	}

	catIndex := map[string]map[string]int{}
	for _, key := range keys {
		agg := index[key]
		sort.Slice(agg.Locations, func(i, j int) bool {
			return agg.Locations[i].LocationID < agg.Locations[j].LocationID
		})
		sort.Strings(agg.SourceLineIDs)
		if supplier.IsSentinel(agg.SupplierID) {
			result.Unresolved = append(result.Unresolved, *agg)
			continue
		}
		g := ensureGroup(agg.SupplierID, agg.SupplierName)
		cats, ok := catIndex[agg.SupplierID]
		if !ok {
			cats = map[string]int{}
			catIndex[agg.SupplierID] = cats
		}
		ci, ok := cats[agg.Category]
		if !ok {
			g.Categories = append(g.Categories, CategoryGroup{
				Category: agg.Category,
				Label:    CategoryLabel(agg.Category),
			})
			ci = len(g.Categories) - 1
			cats[agg.Category] = ci
		}
		g.Categories[ci].Items = append(g.Categories[ci].Items, *agg)
	}

	// A supplier with only deferred drafts still gets a (possibly empty)
	// group so managers can see and send Order Later items.
	for _, d := range drafts {
		if supplier.IsSentinel(d.SupplierID) {
			continue
		}
		g := ensureGroup(d.SupplierID, d.SupplierID)
		g.Drafts = append(g.Drafts, d)
	}

	for _, id := range supplierIDs {
		g := buckets[id]
		sort.Slice(g.Categories, func(i, j int) bool {
			return g.Categories[i].Label < g.Categories[j].Label
		})
		for ci := range g.Categories {
			items := g.Categories[ci].Items
			sort.Slice(items, func(i, j int) bool {
				a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
				if a != b {
					return a < b
				}
				return items[i].Key < items[j].Key
			})
		}
		result.Groups = append(result.Groups, *g)
	}

	sort.Slice(result.Groups, func(i, j int) bool {
		a, b := result.Groups[i], result.Groups[j]
		if a.Active != b.Active {
			return a.Active
		}
		an, bn := strings.ToLower(a.SupplierName), strings.ToLower(b.SupplierName)
		if an != bn {
			return an < bn
		}
		return a.SupplierID < b.SupplierID
	})
	sort.Slice(result.Unresolved, func(i, j int) bool {
		return result.Unresolved[i].Key < result.Unresolved[j].Key
	})

	return result
}

// lineContribution returns the counted quantity, the reported-remaining
// amount, and whether the line still awaits a decision. A remaining-mode line
// contributes 0 until decided but must stay visible.
func lineContribution(ln *store.OrderLine) (qty, reported float64, undecided bool) {
	if ln.InputMode == store.InputModeRemaining {
		if ln.RemainingReported != nil && *ln.RemainingReported > 0 {
			reported = *ln.RemainingReported
		}
		if ln.DecidedQuantity == nil {
			return 0, reported, true
		}
		if q := *ln.DecidedQuantity; q > 0 {
			qty = q
		}
		return qty, reported, false
	}
	if ln.Quantity > 0 {
		qty = ln.Quantity
	}
	return qty, 0, false
}

// SplitByLocation breaks every item of a supplier group into per-location-
// group partial rows and appends the supplier's deferred drafts as synthetic
// quantity-mode rows with no source lines.
func SplitByLocation(group SupplierGroup) []LocationGroupedItem {
	var out []LocationGroupedItem

	for _, cat := range group.Categories {
		for _, item := range cat.Items {
			for _, lg := range []string{GroupSushi, GroupPoki} {
				row := LocationGroupedItem{
					LocationGroup:   lg,
					InventoryItemID: item.InventoryItemID,
					Name:            item.Name,
					Category:        item.Category,
					Mode:            item.Mode,
					UnitType:        item.UnitType,
					UnitLabel:       unitLabel(item.UnitType, item.BaseUnit, item.PackUnit),
				}
				for _, loc := range item.Locations {
					if loc.LocationGroup != lg {
						continue
					}
					row.Quantity += loc.Quantity
					row.RemainingReportedTotal += loc.RemainingReported
					for _, n := range loc.Notes {
						row.Notes = appendUnique(row.Notes, n)
					}
					row.Locations = append(row.Locations, loc)
					row.SourceLineIDs = append(row.SourceLineIDs, loc.SourceLineIDs...)
				}
				if len(row.Locations) == 0 {
					continue
				}
				// Zero-quantity splits are dropped, except remaining-mode
				// ones: those represent pending decisions.
				if item.Mode == ModeQuantity && row.Quantity == 0 {
					continue
				}
				out = append(out, row)
			}
		}
	}

	for _, d := range group.Drafts {
		out = append(out, draftRow(d))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationGroup != out[j].LocationGroup {
			return out[i].LocationGroup == GroupSushi
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// draftRow converts a promoted deferred item into the location-grouped shape.
// Drafts are always quantity-mode and carry no source order lines, which is
// what distinguishes "remove via the deferred-queue flow" from normal edits.
func draftRow(d store.SupplierDraftItem) LocationGroupedItem {
	itemID := ""
	if d.InventoryItemID != nil {
		itemID = *d.InventoryItemID
	}
	row := LocationGroupedItem{
		LocationGroup:   d.LocationGroup,
		InventoryItemID: itemID,
		Name:            d.Name,
		Category:        d.Category,
		Mode:            ModeQuantity,
		UnitType:        d.UnitType,
		UnitLabel:       d.UnitLabel,
		Quantity:        d.Quantity,
		DraftID:         d.ID,
	}
	if d.Note != "" {
		row.Notes = []string{d.Note}
	}
	if d.LocationID != "" || d.LocationName != "" {
		row.Locations = []LocationEntry{{
			LocationID:    d.LocationID,
			LocationName:  d.LocationName,
			LocationGroup: d.LocationGroup,
			Quantity:      d.Quantity,
		}}
	}
	return row
}

func unitLabel(unitType, baseUnit, packUnit string) string {
	if unitType == store.UnitTypePack && packUnit != "" {
		return packUnit
	}
	return baseUnit
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func findLocationEntry(entries *[]LocationEntry, locationID string) *LocationEntry {
	for i := range *entries {
		if (*entries)[i].LocationID == locationID {
			return &(*entries)[i]
		}
	}
	return nil
}
