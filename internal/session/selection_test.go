package session

import (
	"path/filepath"
	"testing"
)

func TestSelectionRoundTrip(t *testing.T) {
	sel := NewSelection(filepath.Join(t.TempDir(), "store.json"))

	if _, ok, err := sel.Load(); err != nil || ok {
		t.Fatalf("fresh selection: ok=%v err=%v", ok, err)
	}

	st, ok := StoreByID("NCF-003")
	if !ok {
		t.Fatal("NCF-003 missing from catalog")
	}
	if err := sel.Save(st); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := sel.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.ID != st.ID || got.Name != st.Name {
		t.Fatalf("loaded %+v, want %+v", got, st)
	}
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelection(filepath.Join(t.TempDir(), "store.json"))
	st, _ := StoreByID("NCF-001")
	if err := sel.Save(st); err != nil {
		t.Fatal(err)
	}
	if err := sel.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, err := sel.Load(); err != nil || ok {
		t.Fatalf("selection survived clear: ok=%v err=%v", ok, err)
	}
	// Clearing an already-empty selection is fine.
	if err := sel.Clear(); err != nil {
		t.Fatalf("double clear: %v", err)
	}
}

func TestStoreCatalog(t *testing.T) {
	if len(Stores) != 6 {
		t.Fatalf("catalog has %d stores, want 6", len(Stores))
	}
	if _, ok := StoreByID("NCF-999"); ok {
		t.Fatal("unknown store id resolved")
	}
	st, ok := StoreByID("NCF-006")
	if !ok || st.Name != "Crystal River" {
		t.Fatalf("NCF-006 = %+v ok=%v", st, ok)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleRSM, RoleEmployee} {
		if !r.Valid() {
			t.Fatalf("role %s reported invalid", r)
		}
	}
	if Role("owner").Valid() {
		t.Fatal("unknown role reported valid")
	}
}
