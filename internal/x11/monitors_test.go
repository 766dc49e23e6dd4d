package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/zonetile/internal/zones"
)

func TestApplyStruts(t *testing.T) {
	left := zones.RectFromSize(0, 0, 1920, 1080)
	right := zones.RectFromSize(1920, 0, 2560, 1440)
	rootW, rootH := 4480, 1440

	// Top bar on the left monitor only, dock along the bottom of the right one.
	var struts []strut
	struts = append(struts, strutRects(&ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}, rootW, rootH)...)
	struts = append(struts, strutRects(&ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 1920, BottomEndX: 4479}, rootW, rootH)...)

	tests := []struct {
		name   string
		bounds zones.Rect
		want   zones.Rect
	}{
		{"top bar", left, zones.Rect{Left: 0, Top: 30, Right: 1920, Bottom: 1080}},
		{"bottom dock", right, zones.Rect{Left: 1920, Top: 0, Right: 4480, Bottom: 1392}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := applyStruts(tt.bounds, struts)
			if !ok {
				t.Fatalf("expected struts to apply")
			}
			if got != tt.want {
				t.Errorf("work area = %s, want %s", got, tt.want)
			}
		})
	}

	if _, ok := applyStruts(zones.RectFromSize(5000, 0, 100, 100), struts); ok {
		t.Errorf("expected no strut to touch a detached monitor")
	}
}

func TestFixedSize(t *testing.T) {
	pinned := uint(icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize)
	tests := []struct {
		name  string
		hints icccm.NormalHints
		want  bool
	}{
		{"no hints", icccm.NormalHints{}, false},
		{"min equals max", icccm.NormalHints{Flags: pinned, MinWidth: 400, MaxWidth: 400, MinHeight: 300, MaxHeight: 300}, true},
		{"range", icccm.NormalHints{Flags: pinned, MinWidth: 200, MaxWidth: 800, MinHeight: 300, MaxHeight: 300}, false},
		{"max unset", icccm.NormalHints{Flags: uint(icccm.SizeHintPMinSize), MinWidth: 400, MaxWidth: 400, MinHeight: 300, MaxHeight: 300}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixedSize(&tt.hints); got != tt.want {
				t.Errorf("fixedSize = %v, want %v", got, tt.want)
			}
		})
	}
}
