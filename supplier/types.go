package supplier

import "strings"

// Sentinel id prefixes for lines that cannot be tied to a real supplier.
// Groups under these prefixes are never shown as orderable.
const (
	SentinelUnresolved = "unresolved:"
	SentinelUnknown    = "unknown:"
)

// UnknownItemID is the effective supplier for a line whose inventory row is
// missing entirely.
const UnknownItemID = SentinelUnknown + "item"

// Issue kinds reported by the resolver.
const (
	IssueInventoryPrimary   = "inventory_primary"
	IssueInventorySecondary = "inventory_secondary"
	IssueOrderOverride      = "order_override"
)

// Issue records a supplier name or id that could not be matched. Diagnostic
// only; never blocks the manager.
type Issue struct {
	Kind     string `json:"kind"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Value    string `json:"value"`
}

// Issues accumulates resolution gaps for one load cycle.
type Issues struct {
	list []Issue
}

func (is *Issues) Add(kind, itemID, itemName, value string) {
	is.list = append(is.list, Issue{Kind: kind, ItemID: itemID, ItemName: itemName, Value: value})
}

func (is *Issues) List() []Issue {
	if is == nil {
		return nil
	}
	return is.list
}

func (is *Issues) Len() int {
	if is == nil {
		return 0
	}
	return len(is.list)
}

// Resolved is the supplier annotation for one order line. Computed fresh on
// every load and never persisted.
type Resolved struct {
	PrimarySupplierID     string `json:"primary_supplier_id"`
	PrimarySupplierName   string `json:"primary_supplier_name"`
	SecondarySupplierID   string `json:"secondary_supplier_id"`
	SecondarySupplierName string `json:"secondary_supplier_name"`
	EffectiveSupplierID   string `json:"effective_supplier_id"`
	EffectiveSupplierName string `json:"effective_supplier_name"`
	IsOverridden          bool   `json:"is_overridden"`
}

// IsSentinel reports whether an effective supplier id is a synthesized
// placeholder rather than a real supplier.
func IsSentinel(id string) bool {
	return strings.HasPrefix(id, SentinelUnresolved) || strings.HasPrefix(id, SentinelUnknown)
}

// NormalizeName canonicalizes a supplier name for lookup: trim, lowercase,
// collapse internal whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// Slug turns a normalized name into a sentinel id suffix.
func Slug(s string) string {
	return strings.ReplaceAll(NormalizeName(s), " ", "-")
}
