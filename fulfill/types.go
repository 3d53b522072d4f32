package fulfill

import (
	"supplyline/store"
	"supplyline/supplier"
)

// Mode tags for aggregated rows.
const (
	ModeQuantity  = "quantity"
	ModeRemaining = "remaining"
)

// PendingSet is one load cycle's worth of source data: the submitted orders
// that survived filtering, the supplier lookup, and the resolution side-table
// keyed by order line id. The whole set is discarded and rebuilt on every
// refresh; resolutions are never patched in place.
type PendingSet struct {
	Orders      []store.Order
	Lookup      *supplier.Lookup
	Resolutions map[string]supplier.Resolved
	Issues      *supplier.Issues
}

// LocationEntry is one location's share of an AggregatedItem.
type LocationEntry struct {
	LocationID            string   `json:"location_id"`
	LocationName          string   `json:"location_name"`
	LocationGroup         string   `json:"location_group"`
	Quantity              float64  `json:"quantity"`
	RemainingReported     float64  `json:"remaining_reported"`
	HasUndecidedRemaining bool     `json:"has_undecided_remaining"`
	Notes                 []string `json:"notes"`
	OrderedBy             []string `json:"ordered_by"`
	SourceLineIDs         []string `json:"source_line_ids"`
}

// AggregatedItem is one merged row across all matching order lines in the
// current load. Rebuilt on every load; never persisted.
type AggregatedItem struct {
	Key                    string          `json:"key"`
	InventoryItemID        string          `json:"inventory_item_id"`
	Name                   string          `json:"name"`
	Category               string          `json:"category"`
	SupplierID             string          `json:"supplier_id"`
	SupplierName           string          `json:"supplier_name"`
	Mode                   string          `json:"mode"`
	UnitType               string          `json:"unit_type"`
	BaseUnit               string          `json:"base_unit"`
	PackUnit               string          `json:"pack_unit"`
	PackSize               float64         `json:"pack_size"`
	TotalQuantity          float64         `json:"total_quantity"`
	RemainingReportedTotal float64         `json:"remaining_reported_total"`
	Notes                  []string        `json:"notes"`
	Locations              []LocationEntry `json:"locations"`
	SourceLineIDs          []string        `json:"source_line_ids"`
	OrderIDs               []string        `json:"order_ids"`
}

// CategoryGroup buckets a supplier's items by catalog category.
type CategoryGroup struct {
	Category string           `json:"category"`
	Label    string           `json:"label"`
	Items    []AggregatedItem `json:"items"`
}

// SupplierGroup is one supplier's slice of the manager's working view.
type SupplierGroup struct {
	SupplierID   string                    `json:"supplier_id"`
	SupplierName string                    `json:"supplier_name"`
	Active       bool                      `json:"active"`
	Categories   []CategoryGroup           `json:"categories"`
	Drafts       []store.SupplierDraftItem `json:"drafts"`
}

// LocationGroupedItem is an AggregatedItem split by location group, or a
// promoted deferred draft rendered into the same shape. Draft rows have an
// empty SourceLineIDs list and carry the draft id instead.
type LocationGroupedItem struct {
	LocationGroup          string          `json:"location_group"`
	InventoryItemID        string          `json:"inventory_item_id"`
	Name                   string          `json:"name"`
	Category               string          `json:"category"`
	Mode                   string          `json:"mode"`
	UnitType               string          `json:"unit_type"`
	UnitLabel              string          `json:"unit_label"`
	Quantity               float64         `json:"quantity"`
	RemainingReportedTotal float64         `json:"remaining_reported_total"`
	Notes                  []string        `json:"notes"`
	Locations              []LocationEntry `json:"locations"`
	SourceLineIDs          []string        `json:"source_line_ids"`
	DraftID                string          `json:"draft_id,omitempty"`
}

// Contributor is one employee's share of a confirmation row. A nil UserID
// marks the synthetic "Order Later" contributor.
type Contributor struct {
	UserID   *string `json:"user_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// ConfirmationLocation is one location's share of a confirmation row.
type ConfirmationLocation struct {
	LocationID   string  `json:"location_id"`
	LocationName string  `json:"location_name"`
	Quantity     float64 `json:"quantity"`
	OrderedBy    string  `json:"ordered_by"`
}

// ConfirmationNote is a deduplicated note keyed by author+text.
type ConfirmationNote struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// RegularItem is one quantity-mode row on the review/send screen.
type RegularItem struct {
	Key                        string                 `json:"key"`
	LocationGroup              string                 `json:"location_group"`
	InventoryItemID            string                 `json:"inventory_item_id"`
	UnitType                   string                 `json:"unit_type"`
	Name                       string                 `json:"name"`
	UnitLabel                  string                 `json:"unit_label"`
	Quantity                   float64                `json:"quantity"`
	SumOfContributorQuantities float64                `json:"sum_of_contributor_quantities"`
	Overridden                 bool                   `json:"overridden"`
	Contributors               []Contributor          `json:"contributors"`
	Locations                  []ConfirmationLocation `json:"locations"`
	Notes                      []ConfirmationNote     `json:"notes"`
	SourceLineIDs              []string               `json:"source_line_ids"`
	DraftIDs                   []string               `json:"draft_ids"`
}

// RemainingItem is one remaining-mode order line on the review/send screen.
// Remaining-mode adjudication is per submission, so these are never merged.
type RemainingItem struct {
	LineID                string   `json:"line_id"`
	LocationGroup         string   `json:"location_group"`
	InventoryItemID       string   `json:"inventory_item_id"`
	Name                  string   `json:"name"`
	UnitType              string   `json:"unit_type"`
	UnitLabel             string   `json:"unit_label"`
	ReportedRemaining     *float64 `json:"reported_remaining"`
	DecidedQuantity       *float64 `json:"decided_quantity"`
	Note                  string   `json:"note"`
	OrderedBy             string   `json:"ordered_by"`
	LocationID            string   `json:"location_id"`
	LocationName          string   `json:"location_name"`
	SecondarySupplierID   string   `json:"secondary_supplier_id"`
	SecondarySupplierName string   `json:"secondary_supplier_name"`
}

// Confirmation is the frozen review shape for one supplier.
type Confirmation struct {
	SupplierID string          `json:"supplier_id"`
	Regular    []RegularItem   `json:"regular_items"`
	Remaining  []RemainingItem `json:"remaining_items"`
}

// categoryLabels maps catalog categories to their display labels; categories
// inside a supplier group sort by this label.
var categoryLabels = map[string]string{
	"fish":       "Fish",
	"protein":    "Protein",
	"produce":    "Produce",
	"dry":        "Dry Goods",
	"dairy_cold": "Dairy & Cold",
	"frozen":     "Frozen",
	"sauces":     "Sauces",
	"packaging":  "Packaging",
	"alcohol":    "Alcohol",
}

// CategoryLabel returns the display label for a category, falling back to the
// raw value for unknown categories.
func CategoryLabel(category string) string {
	if l, ok := categoryLabels[category]; ok {
		return l
	}
	return category
}
