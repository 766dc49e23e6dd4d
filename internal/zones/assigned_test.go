package zones

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssignedWindows_ReplaceNotMerge(t *testing.T) {
	a := NewAssignedWindows()
	a.Assign(7, IndexSet{0})
	a.Assign(7, IndexSet{1})

	if got := a.ZoneIndexSetFromWindow(7); !got.Equal(IndexSet{1}) {
		t.Fatalf("ZoneIndexSetFromWindow = %s, want {1}", got)
	}
	if !a.IsZoneEmpty(0) || a.IsZoneEmpty(1) {
		t.Errorf("IsZoneEmpty(0)=%v IsZoneEmpty(1)=%v", a.IsZoneEmpty(0), a.IsZoneEmpty(1))
	}
}

func TestAssignedWindows_EmptyAssignDismisses(t *testing.T) {
	a := NewAssignedWindows()
	a.Assign(7, IndexSet{0})
	a.Assign(7, IndexSet{})

	if got := a.ZoneIndexSetFromWindow(7); !got.Empty() {
		t.Fatalf("ZoneIndexSetFromWindow = %s, want empty", got)
	}
	if !a.IsZoneEmpty(0) {
		t.Errorf("zone 0 should be empty after dismiss")
	}
	if len(a.Windows()) != 0 {
		t.Errorf("Windows() = %v, want none", a.Windows())
	}
}

func TestAssignedWindows_NullAndUnknown(t *testing.T) {
	a := NewAssignedWindows()
	a.Assign(0, IndexSet{2})
	if !a.IsZoneEmpty(2) {
		t.Errorf("null window must never be assigned")
	}
	if got := a.ZoneIndexSetFromWindow(42); !got.Empty() {
		t.Errorf("unknown window = %s, want empty", got)
	}
	a.Dismiss(42)
}

func TestAssignedWindows_CopiesSets(t *testing.T) {
	a := NewAssignedWindows()
	set := IndexSet{2, 0}
	a.Assign(3, set)
	set[0] = 9

	got := a.ZoneIndexSetFromWindow(3)
	if !got.Equal(IndexSet{0, 2}) {
		t.Fatalf("stored set = %s, want {0,2}", got)
	}
	got[0] = 5
	if a.IsZoneEmpty(0) {
		t.Errorf("mutating a returned set changed the table")
	}
}

func TestAssignedWindows_WindowsAndPrune(t *testing.T) {
	a := NewAssignedWindows()
	a.Assign(30, IndexSet{4})
	a.Assign(10, IndexSet{0, 3})
	a.Assign(20, IndexSet{1})

	if diff := cmp.Diff([]WindowID{10, 20, 30}, a.Windows()); diff != "" {
		t.Errorf("Windows mismatch (-want +got):\n%s", diff)
	}

	a.Prune(2)
	if diff := cmp.Diff([]WindowID{10, 20}, a.Windows()); diff != "" {
		t.Errorf("Windows after Prune mismatch (-want +got):\n%s", diff)
	}
	if got := a.ZoneIndexSetFromWindow(10); !got.Equal(IndexSet{0}) {
		t.Errorf("window 10 after Prune = %s, want {0}", got)
	}
}
