package zones

import (
	"testing"
)

// overlappingLayout has four nested zones used by the resolution tests.
func overlappingLayout(t *testing.T) *Layout {
	t.Helper()
	l := NewLayout(Settings{Type: LayoutCustomCanvas, SensitivityRadius: 20})
	for i, r := range []Rect{
		{0, 0, 100, 100},
		{10, 10, 90, 90},
		{10, 10, 150, 150},
		{10, 10, 50, 50},
	} {
		if err := l.AddZone(NewZone(r, i)); err != nil {
			t.Fatalf("AddZone(%d): %v", i, err)
		}
	}
	return l
}

func quadLayout(t *testing.T) *Layout {
	t.Helper()
	return mustBuild(t, Settings{Type: LayoutGrid, ZoneCount: 4, SensitivityRadius: 20}, Rect{0, 0, 200, 200})
}

func TestZonesFromPoint_BorderSemantics(t *testing.T) {
	l := NewLayout(Settings{Type: LayoutCustomCanvas, SensitivityRadius: 20})
	if err := l.AddZone(NewZone(Rect{0, 0, 100, 100}, 0)); err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	for _, p := range []Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}, {50, 50}} {
		if got := l.ZonesFromPoint(p, OverlapSmallest); !got.Equal(IndexSet{0}) {
			t.Errorf("ZonesFromPoint(%v) = %s, want {0}", p, got)
		}
	}
	for _, p := range []Point{{100, 50}, {50, 100}, {200, 200}, {-1, 50}} {
		if got := l.ZonesFromPoint(p, OverlapSmallest); !got.Empty() {
			t.Errorf("ZonesFromPoint(%v) = %s, want empty", p, got)
		}
	}
}

func TestZonesFromPoint_OverlapAlgorithms(t *testing.T) {
	l := overlappingLayout(t)
	tests := []struct {
		algo OverlappingAlgorithm
		want IndexSet
	}{
		{OverlapSmallest, IndexSet{3}},
		{OverlapLargest, IndexSet{2}},
		{OverlapPositional, IndexSet{0, 1, 2, 3}},
		{OverlapNone, IndexSet{3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			if got := l.ZonesFromPoint(Point{50, 50}, tt.algo); !got.Equal(tt.want) {
				t.Errorf("ZonesFromPoint(50,50) = %s, want %s", got, tt.want)
			}
		})
	}

	// (95,95) is strictly inside 0 and 2 and within the radius of 1.
	if got := l.ZonesFromPoint(Point{95, 95}, OverlapSmallest); !got.Equal(IndexSet{1}) {
		t.Errorf("ZonesFromPoint(95,95) = %s, want {1}", got)
	}
}

func TestZonesFromPoint_PositionalMultizone(t *testing.T) {
	l := quadLayout(t)
	tests := []struct {
		name string
		p    Point
		want IndexSet
	}{
		{"centre selects all quadrants", Point{100, 100}, IndexSet{0, 1, 2, 3}},
		{"left edge midpoint selects left column", Point{50, 100}, IndexSet{0, 2}},
		{"top edge midpoint selects top row", Point{100, 50}, IndexSet{0, 1}},
		{"inside one quadrant", Point{150, 150}, IndexSet{3}},
		{"outside work area", Point{400, 400}, IndexSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.ZonesFromPoint(tt.p, OverlapPositional); !got.Equal(tt.want) {
				t.Errorf("ZonesFromPoint(%v) = %s, want %s", tt.p, got, tt.want)
			}
		})
	}
}

func TestZonesFromRect(t *testing.T) {
	l := quadLayout(t)
	tests := []struct {
		name string
		r    Rect
		want IndexSet
	}{
		{"exact zone", Rect{0, 0, 100, 100}, IndexSet{0}},
		{"mostly one zone", Rect{10, 10, 110, 110}, IndexSet{0}},
		{"straddles two zones evenly", Rect{50, 0, 150, 100}, IndexSet{0, 1}},
		{"covers everything", Rect{0, 0, 200, 200}, IndexSet{0, 1, 2, 3}},
		{"empty rect", Rect{}, IndexSet{}},
		{"outside", Rect{300, 300, 400, 400}, IndexSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.ZonesFromRect(tt.r, OverlapSmallest); !got.Equal(tt.want) {
				t.Errorf("ZonesFromRect(%s) = %s, want %s", tt.r, got, tt.want)
			}
		})
	}
}

func TestZonesInRectAndBoundingRect(t *testing.T) {
	l := quadLayout(t)

	bounds, ok := l.BoundingRect(IndexSet{0, 3})
	if !ok || bounds != (Rect{0, 0, 200, 200}) {
		t.Fatalf("BoundingRect({0,3}) = %s, %v", bounds, ok)
	}
	if got := l.ZonesInRect(bounds); !got.Equal(IndexSet{0, 1, 2, 3}) {
		t.Errorf("ZonesInRect(%s) = %s", bounds, got)
	}

	bounds, _ = l.BoundingRect(IndexSet{0, 1})
	if got := l.ZonesInRect(bounds); !got.Equal(IndexSet{0, 1}) {
		t.Errorf("ZonesInRect(%s) = %s", bounds, got)
	}

	if _, ok := l.BoundingRect(IndexSet{7}); ok {
		t.Errorf("BoundingRect of unknown zone should report !ok")
	}
}

func TestParseOverlappingAlgorithm(t *testing.T) {
	if a, err := ParseOverlappingAlgorithm("positional"); err != nil || a != OverlapPositional {
		t.Errorf("ParseOverlappingAlgorithm(positional) = %q, %v", a, err)
	}
	if _, err := ParseOverlappingAlgorithm("biggest"); err == nil {
		t.Errorf("expected error for unknown algorithm")
	}
}
