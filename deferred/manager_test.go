package deferred

import (
	"errors"
	"testing"
	"time"

	"supplyline/fulfill"
	"supplyline/store"
)

type fakeStore struct {
	deferred map[string]*store.DeferredItem
	drafts   map[string]*store.SupplierDraftItem

	// transitioned is what UpdateOrderItemStatusIf reports as affected; -1
	// means "all requested".
	transitioned  int64
	transitionErr error

	statusCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deferred:     map[string]*store.DeferredItem{},
		drafts:       map[string]*store.SupplierDraftItem{},
		transitioned: -1,
	}
}

func (f *fakeStore) GetDeferredItem(id string) (*store.DeferredItem, error) {
	d, ok := f.deferred[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) CreateDeferredItem(d *store.DeferredItem) error {
	cp := *d
	f.deferred[d.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateDeferredItemStatus(id, status string) error {
	if d, ok := f.deferred[id]; ok {
		d.Status = status
	}
	return nil
}

func (f *fakeStore) RescheduleDeferredItem(id string, at time.Time) error {
	if d, ok := f.deferred[id]; ok {
		d.ScheduledAt = &at
	}
	return nil
}

func (f *fakeStore) DeleteDeferredItem(id string) error {
	delete(f.deferred, id)
	return nil
}

func (f *fakeStore) CreateSupplierDraft(d *store.SupplierDraftItem) error {
	cp := *d
	f.drafts[d.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteSupplierDraft(id string) error {
	delete(f.drafts, id)
	return nil
}

func (f *fakeStore) DeleteSupplierDraftsByDeferredItem(deferredItemID string) error {
	for id, d := range f.drafts {
		if d.DeferredItemID == deferredItemID {
			delete(f.drafts, id)
		}
	}
	return nil
}

func (f *fakeStore) UpdateOrderItemStatusIf(ids []string, from, to string) (int64, error) {
	f.statusCalls = append(f.statusCalls, from+"->"+to)
	if f.transitionErr != nil {
		return 0, f.transitionErr
	}
	if f.transitioned >= 0 {
		return f.transitioned, nil
	}
	return int64(len(ids)), nil
}

func queuedItem(id string, srcIDs ...string) *store.DeferredItem {
	return &store.DeferredItem{
		ID: id, Status: store.DeferredStatusQueued,
		SourceOrderItemIDs: srcIDs,
		LocationID:         "loc1", LocationName: "Sushi-A",
		ItemName: "Wasabi", Unit: "tube", Quantity: 2,
	}
}

func TestPromoteCreatesDraftAndConsumesLines(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1", "l1", "l2")
	m := NewManager(fs)

	draft, err := m.Promote("def1", "s1", fulfill.GroupSushi)
	if err != nil {
		t.Fatal(err)
	}
	if draft.SupplierID != "s1" || draft.DeferredItemID != "def1" {
		t.Errorf("draft = %+v", draft)
	}
	if len(fs.drafts) != 1 {
		t.Fatalf("drafts persisted = %d, want 1", len(fs.drafts))
	}
	if fs.deferred["def1"].Status != store.DeferredStatusAdded {
		t.Errorf("deferred status = %s, want added", fs.deferred["def1"].Status)
	}
	if len(fs.statusCalls) != 1 || fs.statusCalls[0] != store.LineStatusPending+"->"+store.LineStatusConsumed {
		t.Errorf("status calls = %v", fs.statusCalls)
	}
}

func TestPromoteValidation(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1")
	m := NewManager(fs)

	if _, err := m.Promote("def1", "", fulfill.GroupSushi); !errors.Is(err, ErrValidation) {
		t.Errorf("missing supplier: err = %v, want ErrValidation", err)
	}
	if _, err := m.Promote("def1", "s1", "warehouse"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad group: err = %v, want ErrValidation", err)
	}
	if len(fs.drafts) != 0 {
		t.Error("validation failure must not touch the store")
	}
}

func TestPromoteRollsBackOnTransitionMismatch(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1", "l1", "l2")
	fs.transitioned = 1 // someone else already changed l2
	m := NewManager(fs)

	_, err := m.Promote("def1", "s1", fulfill.GroupSushi)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(fs.drafts) != 0 {
		t.Error("draft must be rolled back on conflict")
	}
	if fs.deferred["def1"].Status != store.DeferredStatusQueued {
		t.Error("deferred item must stay queued on conflict")
	}
}

func TestPromoteAlreadyAddedConflicts(t *testing.T) {
	fs := newFakeStore()
	d := queuedItem("def1")
	d.Status = store.DeferredStatusAdded
	fs.deferred["def1"] = d
	m := NewManager(fs)

	if _, err := m.Promote("def1", "s1", fulfill.GroupSushi); !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict for non-queued item", err)
	}
}

func TestPromoteWithoutSourceLinesSkipsTransition(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1")
	m := NewManager(fs)

	if _, err := m.Promote("def1", "s1", fulfill.GroupPoki); err != nil {
		t.Fatal(err)
	}
	if len(fs.statusCalls) != 0 {
		t.Errorf("no source lines, but status calls = %v", fs.statusCalls)
	}
}

func TestMoveToLaterCreatesAndTransitions(t *testing.T) {
	fs := newFakeStore()
	m := NewManager(fs)

	d, err := m.MoveToLater(MoveToLaterRequest{
		SourceOrderItemIDs: []string{"l1"},
		LocationID:         "loc1", LocationName: "Sushi-A",
		ItemName: "Nori", Unit: "pack", Quantity: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != store.DeferredStatusQueued {
		t.Errorf("status = %s, want queued", d.Status)
	}
	if _, ok := fs.deferred[d.ID]; !ok {
		t.Error("deferred item not persisted")
	}
	if len(fs.statusCalls) != 1 || fs.statusCalls[0] != store.LineStatusPending+"->"+store.LineStatusOrderLater {
		t.Errorf("status calls = %v", fs.statusCalls)
	}
}

func TestMoveToLaterRollsBackOnConflict(t *testing.T) {
	fs := newFakeStore()
	fs.transitioned = 0
	m := NewManager(fs)

	_, err := m.MoveToLater(MoveToLaterRequest{
		SourceOrderItemIDs: []string{"l1"},
		ItemName:           "Nori", Unit: "pack", Quantity: 3,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(fs.deferred) != 0 {
		t.Error("deferred item must be deleted on conflict")
	}
}

func TestMoveToLaterValidation(t *testing.T) {
	m := NewManager(newFakeStore())
	if _, err := m.MoveToLater(MoveToLaterRequest{Quantity: 3}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing name: err = %v", err)
	}
	if _, err := m.MoveToLater(MoveToLaterRequest{ItemName: "Nori"}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero quantity: err = %v", err)
	}
}

func TestRemoveDeletesDrafts(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1")
	fs.drafts["d1"] = &store.SupplierDraftItem{ID: "d1", DeferredItemID: "def1"}
	fs.drafts["d2"] = &store.SupplierDraftItem{ID: "d2", DeferredItemID: "other"}
	m := NewManager(fs)

	if err := m.Remove("def1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := fs.deferred["def1"]; ok {
		t.Error("deferred item not deleted")
	}
	if _, ok := fs.drafts["d1"]; ok {
		t.Error("attached draft not deleted")
	}
	if _, ok := fs.drafts["d2"]; !ok {
		t.Error("unrelated draft deleted")
	}
}

func TestRescheduleOnlyTouchesTime(t *testing.T) {
	fs := newFakeStore()
	fs.deferred["def1"] = queuedItem("def1")
	m := NewManager(fs)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	if err := m.Reschedule("def1", at); err != nil {
		t.Fatal(err)
	}
	d := fs.deferred["def1"]
	if d.ScheduledAt == nil || !d.ScheduledAt.Equal(at) {
		t.Errorf("scheduledAt = %v, want %v", d.ScheduledAt, at)
	}
	if d.Status != store.DeferredStatusQueued {
		t.Error("reschedule must not touch status")
	}

	if err := m.Reschedule("def1", time.Time{}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero time: err = %v", err)
	}
}
