package supplier

import "supplyline/store"

// Lookup indexes the supplier table by id and by normalized name. Loaded once
// per refresh cycle and treated as immutable within it.
type Lookup struct {
	byID   map[string]store.Supplier
	byName map[string]store.Supplier
	rows   []store.Supplier
}

// NewLookup builds a Lookup from supplier rows. On duplicate normalized
// names the first row wins.
func NewLookup(rows []store.Supplier) *Lookup {
	l := &Lookup{
		byID:   make(map[string]store.Supplier, len(rows)),
		byName: make(map[string]store.Supplier, len(rows)),
		rows:   rows,
	}
	for _, s := range rows {
		l.byID[s.ID] = s
		key := NormalizeName(s.Name)
		if key == "" {
			continue
		}
		if _, exists := l.byName[key]; !exists {
			l.byName[key] = s
		}
	}
	return l
}

// ByID looks up a supplier by exact id.
func (l *Lookup) ByID(id string) (store.Supplier, bool) {
	s, ok := l.byID[id]
	return s, ok
}

// ByName looks up a supplier by case/whitespace-normalized name.
func (l *Lookup) ByName(name string) (store.Supplier, bool) {
	s, ok := l.byName[NormalizeName(name)]
	return s, ok
}

// Suppliers returns the underlying rows.
func (l *Lookup) Suppliers() []store.Supplier {
	return l.rows
}

// Len returns the number of indexed suppliers.
func (l *Lookup) Len() int {
	return len(l.byID)
}
