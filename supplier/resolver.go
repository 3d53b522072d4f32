package supplier

import "supplyline/store"

// candidate is one extraction strategy over the inventory row. Candidates are
// evaluated in fixed order; the first that resolves wins, and the first
// non-empty value that does NOT resolve is treated as authoritative-but-wrong:
// it records an issue and stops the scan.
type candidate struct {
	source string
	isID   bool
	get    func(*store.InventoryItem) *string
}

var primaryCandidates = []candidate{
	{source: "default_supplier_id", isID: true, get: func(it *store.InventoryItem) *string { return it.DefaultSupplierID }},
	{source: "default_supplier_name", get: func(it *store.InventoryItem) *string { return it.DefaultSupplierName }},
	{source: "supplier_name", get: func(it *store.InventoryItem) *string { return it.SupplierName }},
	{source: "vendor_name", get: func(it *store.InventoryItem) *string { return it.VendorName }},
}

var secondaryCandidates = []candidate{
	{source: "secondary_supplier_id", isID: true, get: func(it *store.InventoryItem) *string { return it.SecondarySupplierID }},
	{source: "secondary_supplier_name", get: func(it *store.InventoryItem) *string { return it.SecondarySupplierName }},
}

// Resolve determines the primary, secondary, and effective supplier for one
// order line. It is pure over its inputs and idempotent: downstream code
// caches the result per line and must be able to trust a recomputation to
// match. Resolution gaps degrade to sentinels; issues go to the accumulator.
func Resolve(item *store.InventoryItem, line *store.OrderLine, lookup *Lookup, issues *Issues) Resolved {
	if item == nil {
		return Resolved{
			EffectiveSupplierID:   UnknownItemID,
			EffectiveSupplierName: "UNKNOWN ITEM",
		}
	}

	var r Resolved

	primary, primaryOK := resolveCandidates(item, lookup, primaryCandidates, IssueInventoryPrimary, issues)
	if primaryOK {
		r.PrimarySupplierID = primary.ID
		r.PrimarySupplierName = primary.Name
	}

	if secondary, ok := resolveCandidates(item, lookup, secondaryCandidates, IssueInventorySecondary, issues); ok {
		r.SecondarySupplierID = secondary.ID
		r.SecondarySupplierName = secondary.Name
	}

	// Effective: override if valid, else primary, else sentinel.
	r.EffectiveSupplierID = r.PrimarySupplierID
	r.EffectiveSupplierName = r.PrimarySupplierName

	if line != nil && line.SupplierOverrideID != nil && *line.SupplierOverrideID != "" {
		if ovr, ok := lookup.ByID(*line.SupplierOverrideID); ok {
			if ovr.ID != r.PrimarySupplierID {
				r.EffectiveSupplierID = ovr.ID
				r.EffectiveSupplierName = ovr.Name
			}
			// Preserves the source rule: an override on top of an unresolved
			// primary is effective but not flagged as overridden.
			r.IsOverridden = primaryOK && ovr.ID != r.PrimarySupplierID
		} else if issues != nil {
			issues.Add(IssueOrderOverride, item.ID, item.Name, *line.SupplierOverrideID)
		}
	}

	if r.EffectiveSupplierID == "" {
		name := firstNonEmptyName(item)
		if name != "" {
			r.EffectiveSupplierID = SentinelUnresolved + Slug(name)
			r.EffectiveSupplierName = "UNRESOLVED SUPPLIER (" + name + ")"
		} else {
			r.EffectiveSupplierID = SentinelUnresolved + item.ID
			r.EffectiveSupplierName = "UNRESOLVED SUPPLIER"
		}
	}

	return r
}

// resolveCandidates walks the strategy list in order. An id candidate tries an
// exact id match first, then a name match on the same value. The first
// non-empty unresolved value records an issue and aborts the scan.
func resolveCandidates(item *store.InventoryItem, lookup *Lookup, cands []candidate, issueKind string, issues *Issues) (store.Supplier, bool) {
	for _, c := range cands {
		v := c.get(item)
		if v == nil || NormalizeName(*v) == "" {
			continue
		}
		if c.isID {
			if s, ok := lookup.ByID(*v); ok {
				return s, true
			}
		}
		if s, ok := lookup.ByName(*v); ok {
			return s, true
		}
		if issues != nil {
			issues.Add(issueKind, item.ID, item.Name, *v)
		}
		return store.Supplier{}, false
	}
	return store.Supplier{}, false
}

func firstNonEmptyName(item *store.InventoryItem) string {
	for _, c := range primaryCandidates {
		if c.isID {
			continue
		}
		if v := c.get(item); v != nil && NormalizeName(*v) != "" {
			return *v
		}
	}
	return ""
}
