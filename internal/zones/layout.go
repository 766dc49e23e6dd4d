package zones

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidLayout is returned when a layout cannot produce valid zones.
var ErrInvalidLayout = errors.New("invalid layout")

// LayoutType selects the zone arrangement algorithm.
type LayoutType string

const (
	LayoutBlank        LayoutType = "blank"
	LayoutFocus        LayoutType = "focus"
	LayoutColumns      LayoutType = "columns"
	LayoutRows         LayoutType = "rows"
	LayoutGrid         LayoutType = "grid"
	LayoutPriorityGrid LayoutType = "priority-grid"
	LayoutCustomCanvas LayoutType = "custom-canvas"
	LayoutCustomGrid   LayoutType = "custom-grid"
)

// Valid reports whether t is a known layout type.
func (t LayoutType) Valid() bool {
	switch t {
	case LayoutBlank, LayoutFocus, LayoutColumns, LayoutRows, LayoutGrid,
		LayoutPriorityGrid, LayoutCustomCanvas, LayoutCustomGrid:
		return true
	}
	return false
}

// IsCustom reports whether the zone count comes from an external description.
func (t LayoutType) IsCustom() bool {
	return t == LayoutCustomCanvas || t == LayoutCustomGrid
}

// CanvasZone is one explicitly placed zone in reference coordinates.
type CanvasZone struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// CanvasInfo describes a free-form layout authored at a reference resolution.
type CanvasInfo struct {
	RefWidth  int          `yaml:"ref_width" json:"ref_width"`
	RefHeight int          `yaml:"ref_height" json:"ref_height"`
	Zones     []CanvasZone `yaml:"zones" json:"zones"`
}

// GridInfo describes a grid layout as row/column percentages (multiplied by
// 100, summing to GridMultiplier) and a cell to zone index map.
type GridInfo struct {
	RowsPercents    []int   `yaml:"rows_percents" json:"rows_percents"`
	ColumnsPercents []int   `yaml:"columns_percents" json:"columns_percents"`
	CellChildMap    [][]int `yaml:"cell_child_map" json:"cell_child_map"`
}

// Settings are the inputs a Layout is built from.
type Settings struct {
	ID                uuid.UUID
	Type              LayoutType
	ZoneCount         int
	Spacing           int
	ShowSpacing       bool
	SensitivityRadius int
	Canvas            *CanvasInfo
	Grid              *GridInfo
}

// Layout generates and owns the zones of one work area.
type Layout struct {
	settings Settings
	zones    []Zone // sorted by id
}

// NewLayout creates an unbuilt layout. A zero ID is replaced with a random one.
func NewLayout(settings Settings) *Layout {
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	return &Layout{settings: settings}
}

func (l *Layout) ID() uuid.UUID          { return l.settings.ID }
func (l *Layout) Type() LayoutType       { return l.settings.Type }
func (l *Layout) Settings() Settings     { return l.settings }
func (l *Layout) SensitivityRadius() int { return max(l.settings.SensitivityRadius, 0) }

// ZoneCount returns the number of zones currently held.
func (l *Layout) ZoneCount() int { return len(l.zones) }

// Zones returns the zones in index order.
func (l *Layout) Zones() []Zone {
	return slices.Clone(l.zones)
}

// Zone returns the zone with the given index.
func (l *Layout) Zone(index int) (Zone, bool) {
	i, found := slices.BinarySearchFunc(l.zones, index, func(z Zone, id int) int {
		return z.id - id
	})
	if !found {
		return Zone{}, false
	}
	return l.zones[i], true
}

// AddZone inserts a valid zone with an unused index.
func (l *Layout) AddZone(z Zone) error {
	if !z.IsValid() {
		return fmt.Errorf("%w: zone %d has invalid rect %s", ErrInvalidLayout, z.id, z.rect)
	}
	i, found := slices.BinarySearchFunc(l.zones, z.id, func(existing Zone, id int) int {
		return existing.id - id
	})
	if found {
		return fmt.Errorf("%w: duplicate zone index %d", ErrInvalidLayout, z.id)
	}
	l.zones = slices.Insert(l.zones, i, z)
	return nil
}

// Clone returns an independent copy with the same settings and zones, used
// when a new monitor or desktop inherits a parent layout.
func (l *Layout) Clone() *Layout {
	clone := &Layout{settings: l.settings, zones: slices.Clone(l.zones)}
	if l.settings.Canvas != nil {
		canvas := *l.settings.Canvas
		canvas.Zones = slices.Clone(canvas.Zones)
		clone.settings.Canvas = &canvas
	}
	if l.settings.Grid != nil {
		grid := cloneGrid(*l.settings.Grid)
		clone.settings.Grid = &grid
	}
	return clone
}

// Build regenerates the zones for workRect. On failure the previous zones are
// kept and an error wrapping ErrInvalidLayout is returned.
func (l *Layout) Build(workRect Rect) error {
	return l.BuildWith(l.settings, workRect)
}

// BuildWith rebuilds the layout from new settings. Settings and zones are
// only replaced when the build succeeds. The layout ID is never changed.
func (l *Layout) BuildWith(s Settings, workRect Rect) error {
	s.ID = l.settings.ID
	built, err := generate(s, workRect)
	if err != nil {
		return err
	}
	for _, z := range built {
		if !z.IsValid() {
			return fmt.Errorf("%w: zone %d has invalid rect %s (spacing %d)",
				ErrInvalidLayout, z.id, z.rect, s.Spacing)
		}
		if !workRect.ContainsRect(z.rect) {
			return fmt.Errorf("%w: zone %d %s outside work area %s",
				ErrInvalidLayout, z.id, z.rect, workRect)
		}
	}
	l.settings = s
	l.zones = built
	return nil
}

func generate(s Settings, workRect Rect) ([]Zone, error) {
	if workRect.Empty() {
		return nil, fmt.Errorf("%w: empty work area %s", ErrInvalidLayout, workRect)
	}
	if s.Type == LayoutBlank {
		return []Zone{}, nil
	}
	if s.ZoneCount <= 0 {
		return nil, fmt.Errorf("%w: zone count must be positive, got %d", ErrInvalidLayout, s.ZoneCount)
	}

	spacing := 0
	if s.ShowSpacing {
		spacing = s.Spacing
	}

	switch s.Type {
	case LayoutFocus:
		return focusZones(workRect, s.ZoneCount), nil
	case LayoutColumns:
		return gridZones(uniformGrid(1, s.ZoneCount, s.ZoneCount), workRect, spacing)
	case LayoutRows:
		return gridZones(uniformGrid(s.ZoneCount, 1, s.ZoneCount), workRect, spacing)
	case LayoutGrid:
		rows, cols := gridDimensions(s.ZoneCount)
		return gridZones(uniformGrid(rows, cols, s.ZoneCount), workRect, spacing)
	case LayoutPriorityGrid:
		if info, ok := priorityGrid(s.ZoneCount); ok {
			return gridZones(info, workRect, spacing)
		}
		rows, cols := gridDimensions(s.ZoneCount)
		return gridZones(uniformGrid(rows, cols, s.ZoneCount), workRect, spacing)
	case LayoutCustomCanvas:
		if s.Canvas == nil {
			return nil, fmt.Errorf("%w: custom canvas layout has no canvas description", ErrInvalidLayout)
		}
		if len(s.Canvas.Zones) != s.ZoneCount {
			return nil, fmt.Errorf("%w: canvas has %d zones, layout declares %d",
				ErrInvalidLayout, len(s.Canvas.Zones), s.ZoneCount)
		}
		return canvasZones(*s.Canvas, workRect)
	case LayoutCustomGrid:
		if s.Grid == nil {
			return nil, fmt.Errorf("%w: custom grid layout has no grid description", ErrInvalidLayout)
		}
		built, err := gridZones(*s.Grid, workRect, spacing)
		if err != nil {
			return nil, err
		}
		if len(built) != s.ZoneCount {
			return nil, fmt.Errorf("%w: grid maps %d zones, layout declares %d",
				ErrInvalidLayout, len(built), s.ZoneCount)
		}
		return built, nil
	default:
		return nil, fmt.Errorf("%w: unsupported layout type %q", ErrInvalidLayout, s.Type)
	}
}

// focusZones stacks count zones like a deck of cards. Each zone is the work
// area shrunk by (count-1) steps and shifted one step further than the last.
func focusZones(work Rect, count int) []Zone {
	step := 0
	if count > 1 {
		step = min(50, work.Width()/(4*count), work.Height()/(4*count))
	}
	out := make([]Zone, count)
	for i := 0; i < count; i++ {
		rest := count - 1 - i
		out[i] = NewZone(Rect{
			Left:   work.Left + i*step,
			Top:    work.Top + i*step,
			Right:  work.Right - rest*step,
			Bottom: work.Bottom - rest*step,
		}, i)
	}
	return out
}

// canvasZones scales reference-resolution zones onto the work area.
func canvasZones(info CanvasInfo, work Rect) ([]Zone, error) {
	if info.RefWidth <= 0 || info.RefHeight <= 0 {
		return nil, fmt.Errorf("%w: canvas reference size %dx%d", ErrInvalidLayout, info.RefWidth, info.RefHeight)
	}
	out := make([]Zone, len(info.Zones))
	for i, cz := range info.Zones {
		left := work.Left + cz.X*work.Width()/info.RefWidth
		top := work.Top + cz.Y*work.Height()/info.RefHeight
		right := work.Left + (cz.X+cz.Width)*work.Width()/info.RefWidth
		bottom := work.Top + (cz.Y+cz.Height)*work.Height()/info.RefHeight
		rect := Rect{Left: left, Top: top, Right: right, Bottom: bottom}.Intersect(work)
		out[i] = NewZone(rect, i)
	}
	return out, nil
}
