package fulfill

import (
	"sort"
	"strings"

	"supplyline/store"
	"supplyline/supplier"
)

// OrderLaterContributor is the display name of the synthetic contributor
// attached to deferred-draft quantities on the confirmation screen.
const OrderLaterContributor = "Order Later"

// ConfirmKey identifies a regular confirmation row. Deliberately coarser than
// the aggregation merge key: at send time the manager has already accepted
// the item identity, so unit configuration no longer splits rows.
func ConfirmKey(locationGroup, inventoryItemID, unitType string) string {
	return strings.Join([]string{locationGroup, inventoryItemID, unitType}, "|")
}

// BuildConfirmation re-derives the send view for one supplier from the raw
// pending set, never from the grouped view. Overrides map ConfirmKey to a
// manager-edited quantity; an override replaces the summed quantity and a
// zero override drops the row entirely.
func BuildConfirmation(supplierID string, set *PendingSet, drafts []store.SupplierDraftItem, overrides map[string]float64) Confirmation {
	conf := Confirmation{SupplierID: supplierID}

	var keys []string
	index := map[string]*RegularItem{}

	ensure := func(key, lg, itemID, unitType, name, unitLabel string) *RegularItem {
		if r, ok := index[key]; ok {
			return r
		}
		r := &RegularItem{
			Key:             key,
			LocationGroup:   lg,
			InventoryItemID: itemID,
			UnitType:        unitType,
			Name:            name,
			UnitLabel:       unitLabel,
		}
		index[key] = r
		keys = append(keys, key)
		return r
	}

	for _, o := range set.Orders {
		lg := GetLocationGroup(o.LocationName, o.LocationShortCode)
		for i := range o.Lines {
			ln := &o.Lines[i]
			res, ok := set.Resolutions[ln.ID]
			if !ok {
				res = supplier.Resolve(ln.Item, ln, set.Lookup, nil)
			}
			if res.EffectiveSupplierID != supplierID {
				continue
			}

			var name, baseUnit, packUnit string
			if ln.Item != nil {
				name = ln.Item.Name
				baseUnit = ln.Item.BaseUnit
				packUnit = ln.Item.PackUnit
			}
			label := unitLabel(ln.UnitType, baseUnit, packUnit)

			if ln.InputMode == store.InputModeRemaining {
				conf.Remaining = append(conf.Remaining, RemainingItem{
					LineID:                ln.ID,
					LocationGroup:         lg,
					InventoryItemID:       ln.InventoryItemID,
					Name:                  name,
					UnitType:              ln.UnitType,
					UnitLabel:             label,
					ReportedRemaining:     ln.RemainingReported,
					DecidedQuantity:       ln.DecidedQuantity,
					Note:                  ln.Note,
					OrderedBy:             o.UserName,
					LocationID:            o.LocationID,
					LocationName:          o.LocationName,
					SecondarySupplierID:   res.SecondarySupplierID,
					SecondarySupplierName: res.SecondarySupplierName,
				})
				continue
			}

			qty := ln.Quantity
			if qty < 0 {
				qty = 0
			}
			key := ConfirmKey(lg, ln.InventoryItemID, ln.UnitType)
			r := ensure(key, lg, ln.InventoryItemID, ln.UnitType, name, label)
			r.SumOfContributorQuantities += qty
			r.SourceLineIDs = append(r.SourceLineIDs, ln.ID)
			addContributor(r, &o.UserID, o.UserName, qty)
			addLocation(r, o.LocationID, o.LocationName, o.UserName, qty)
			addNote(r, o.UserName, ln.Note)
		}
	}

	for _, d := range drafts {
		if d.SupplierID != supplierID {
			continue
		}
		itemID := ""
		if d.InventoryItemID != nil {
			itemID = *d.InventoryItemID
		}
		key := ConfirmKey(d.LocationGroup, itemID, d.UnitType)
		r := ensure(key, d.LocationGroup, itemID, d.UnitType, d.Name, d.UnitLabel)
		if r.Name == "" {
			r.Name = d.Name
		}
		r.SumOfContributorQuantities += d.Quantity
		r.DraftIDs = append(r.DraftIDs, d.ID)
		addContributor(r, nil, OrderLaterContributor, d.Quantity)
		addLocation(r, d.LocationID, d.LocationName, OrderLaterContributor, d.Quantity)
		addNote(r, OrderLaterContributor, d.Note)
	}

	for _, key := range keys {
		r := index[key]
		r.Quantity = r.SumOfContributorQuantities
		if ovr, ok := overrides[key]; ok {
			r.Quantity = ovr
			r.Overridden = true
		}
		if r.Quantity <= 0 {
			continue
		}
		sort.Strings(r.SourceLineIDs)
		conf.Regular = append(conf.Regular, *r)
	}

	sort.Slice(conf.Regular, func(i, j int) bool {
		a, b := conf.Regular[i], conf.Regular[j]
		if a.LocationGroup != b.LocationGroup {
			return a.LocationGroup < b.LocationGroup
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	sort.Slice(conf.Remaining, func(i, j int) bool {
		a, b := conf.Remaining[i], conf.Remaining[j]
		if a.LocationGroup != b.LocationGroup {
			return a.LocationGroup < b.LocationGroup
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.LineID < b.LineID
	})

	return conf
}

func addContributor(r *RegularItem, userID *string, name string, qty float64) {
	for i := range r.Contributors {
		c := &r.Contributors[i]
		if samePtr(c.UserID, userID) && c.Name == name {
			c.Quantity += qty
			return
		}
	}
	var idCopy *string
	if userID != nil {
		v := *userID
		idCopy = &v
	}
	r.Contributors = append(r.Contributors, Contributor{UserID: idCopy, Name: name, Quantity: qty})
}

func addLocation(r *RegularItem, locationID, locationName, orderedBy string, qty float64) {
	for i := range r.Locations {
		l := &r.Locations[i]
		if l.LocationID == locationID {
			l.Quantity += qty
			if orderedBy != "" && !strings.Contains(", "+l.OrderedBy+", ", ", "+orderedBy+", ") {
				if l.OrderedBy == "" {
					l.OrderedBy = orderedBy
				} else {
					l.OrderedBy += ", " + orderedBy
				}
			}
			return
		}
	}
	r.Locations = append(r.Locations, ConfirmationLocation{
		LocationID:   locationID,
		LocationName: locationName,
		Quantity:     qty,
		OrderedBy:    orderedBy,
	})
}

// addNote deduplicates by author+text, insertion order preserved.
func addNote(r *RegularItem, author, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, n := range r.Notes {
		if n.Author == author && n.Text == text {
			return
		}
	}
	r.Notes = append(r.Notes, ConfirmationNote{Author: author, Text: text})
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
