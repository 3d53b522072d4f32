package fulfill

import (
	"fmt"
	"math"

	"supplyline/store"
	"supplyline/supplier"
)

// Source is the slice of the data store the loader reads from.
type Source interface {
	ListSupplierLookup() ([]store.Supplier, error)
	ListConsumedOrderItemIDs() (map[string]struct{}, error)
	ListSubmittedOrders(locationIDs []string) ([]store.Order, error)
}

// LoadOptions scope one load cycle.
type LoadOptions struct {
	// LocationIDs limits the load to a set of locations; empty means all.
	LocationIDs []string
	// ExcludeLineIDs are order line ids the caller has already consumed
	// elsewhere (on top of the deferred-queue exclusion the loader applies
	// itself).
	ExcludeLineIDs map[string]struct{}
}

// LoadPending fetches submitted orders with joined data, filters out lines
// with no usable signal or already spoken for by the deferred queue, and
// attaches a supplier resolution to each surviving line. A lookup failure is
// a hard error; resolution itself cannot fail (it degrades to sentinels).
func LoadPending(src Source, opts LoadOptions) (*PendingSet, error) {
	lookupRows, err := src.ListSupplierLookup()
	if err != nil {
		return nil, fmt.Errorf("load supplier lookup: %w", err)
	}
	lookup := supplier.NewLookup(lookupRows)

	deferredIDs, err := src.ListConsumedOrderItemIDs()
	if err != nil {
		return nil, fmt.Errorf("load deferred line ids: %w", err)
	}

	orders, err := src.ListSubmittedOrders(opts.LocationIDs)
	if err != nil {
		return nil, fmt.Errorf("load submitted orders: %w", err)
	}

	set := &PendingSet{
		Lookup:      lookup,
		Resolutions: make(map[string]supplier.Resolved),
		Issues:      &supplier.Issues{},
	}

	for _, o := range orders {
		kept := o
		kept.Lines = nil
		for _, ln := range o.Lines {
			if _, ok := opts.ExcludeLineIDs[ln.ID]; ok {
				continue
			}
			if _, ok := deferredIDs[ln.ID]; ok {
				continue
			}
			if !lineUsable(&ln) {
				continue
			}
			set.Resolutions[ln.ID] = supplier.Resolve(ln.Item, &ln, lookup, set.Issues)
			kept.Lines = append(kept.Lines, ln)
		}
		if len(kept.Lines) > 0 {
			set.Orders = append(set.Orders, kept)
		}
	}

	return set, nil
}

// lineUsable applies the per-line filter: status must be pending (or unset),
// quantity-mode lines need a positive quantity, remaining-mode lines need
// either a finite reported remaining or a positive decided quantity.
func lineUsable(ln *store.OrderLine) bool {
	if ln.Status != "" && ln.Status != store.LineStatusPending {
		return false
	}
	if ln.InputMode == store.InputModeRemaining {
		if ln.RemainingReported != nil && isFinite(*ln.RemainingReported) {
			return true
		}
		return ln.DecidedQuantity != nil && isFinite(*ln.DecidedQuantity) && *ln.DecidedQuantity > 0
	}
	return ln.Quantity > 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
