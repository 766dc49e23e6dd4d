package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/zones"
)

const (
	DefaultBuiltinLayout = "priority-grid"

	// referenceWidth and referenceHeight size the trial build that validates
	// layouts before any monitor is known.
	referenceWidth  = 1920
	referenceHeight = 1080
)

// layoutNamespace derives stable layout ids from layout names.
var layoutNamespace = uuid.MustParse("3f5a2c1e-8d4b-4e7a-9c60-2b1d7e0f9a18")

// LayoutConfig describes one named layout. Pointer fields fall back to the
// top-level defaults when unset.
type LayoutConfig struct {
	ID                string            `yaml:"id,omitempty"`
	Type              zones.LayoutType  `yaml:"type"`
	ZoneCount         int               `yaml:"zone_count,omitempty"`
	Spacing           *int              `yaml:"spacing,omitempty"`
	ShowSpacing       *bool             `yaml:"show_spacing,omitempty"`
	SensitivityRadius *int              `yaml:"sensitivity_radius,omitempty"`
	Canvas            *zones.CanvasInfo `yaml:"canvas,omitempty"`
	Grid              *zones.GridInfo   `yaml:"grid,omitempty"`
}

// Hotkeys are xgbutil keybind strings. Empty disables the binding.
type Hotkeys struct {
	SnapLeft    string `yaml:"snap_left"`
	SnapRight   string `yaml:"snap_right"`
	SnapUp      string `yaml:"snap_up"`
	SnapDown    string `yaml:"snap_down"`
	ExtendLeft  string `yaml:"extend_left"`
	ExtendRight string `yaml:"extend_right"`
	ExtendUp    string `yaml:"extend_up"`
	ExtendDown  string `yaml:"extend_down"`
}

// HistoryConfig selects where remembered app placements are stored.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	DefaultLayout             string                  `yaml:"default_layout"`
	Layouts                   map[string]LayoutConfig `yaml:"layouts"`
	MonitorLayouts            map[string]string       `yaml:"monitor_layouts,omitempty"`
	Spacing                   int                     `yaml:"spacing"`
	ShowSpacing               bool                    `yaml:"show_spacing"`
	ZoneCount                 int                     `yaml:"zone_count"`
	SensitivityRadius         int                     `yaml:"sensitivity_radius"`
	OverlappingZonesAlgorithm string                  `yaml:"overlapping_zones_algorithm"`
	BoundaryPolicy            string                  `yaml:"boundary_policy"`
	MoveWindowsByPosition     bool                    `yaml:"move_windows_based_on_position"`
	MonitorPollSeconds        int                     `yaml:"monitor_poll_seconds"`
	Hotkeys                   Hotkeys                 `yaml:"hotkeys"`
	History                   HistoryConfig           `yaml:"history"`
	Display                   string                  `yaml:"display,omitempty"`
	XAuthority                string                  `yaml:"xauthority,omitempty"`
	LogLevel                  string                  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultLayout:             DefaultBuiltinLayout,
		Layouts:                   BuiltinLayouts(),
		Spacing:                   16,
		ShowSpacing:               true,
		ZoneCount:                 3,
		SensitivityRadius:         20,
		OverlappingZonesAlgorithm: string(zones.OverlapSmallest),
		BoundaryPolicy:            string(snap.DefaultPolicy),
		MonitorPollSeconds:        2,
		Hotkeys: Hotkeys{
			SnapLeft:    "Mod4-Left",
			SnapRight:   "Mod4-Right",
			SnapUp:      "Mod4-Up",
			SnapDown:    "Mod4-Down",
			ExtendLeft:  "Mod4-Shift-Left",
			ExtendRight: "Mod4-Shift-Right",
			ExtendUp:    "Mod4-Shift-Up",
			ExtendDown:  "Mod4-Shift-Down",
		},
		History: HistoryConfig{
			Enabled: true,
			Backend: "json",
		},
		LogLevel: "info",
	}
}

// LayoutID returns the id of the named layout: the configured one, or one
// derived from the name.
func (c *Config) LayoutID(name string) (uuid.UUID, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("layout %q not found", name)
	}
	return layout.id(name)
}

func (l LayoutConfig) id(name string) (uuid.UUID, error) {
	if l.ID == "" {
		return uuid.NewSHA1(layoutNamespace, []byte(name)), nil
	}
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", l.ID, err)
	}
	return id, nil
}

// Settings resolves the named layout into build settings.
func (c *Config) Settings(name string) (zones.Settings, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return zones.Settings{}, fmt.Errorf("layout %q not found", name)
	}
	id, err := layout.id(name)
	if err != nil {
		return zones.Settings{}, err
	}

	s := zones.Settings{
		ID:                id,
		Type:              layout.Type,
		ZoneCount:         layout.ZoneCount,
		Spacing:           c.Spacing,
		ShowSpacing:       c.ShowSpacing,
		SensitivityRadius: c.SensitivityRadius,
		Canvas:            layout.Canvas,
		Grid:              layout.Grid,
	}
	if layout.Spacing != nil {
		s.Spacing = *layout.Spacing
	}
	if layout.ShowSpacing != nil {
		s.ShowSpacing = *layout.ShowSpacing
	}
	if layout.SensitivityRadius != nil {
		s.SensitivityRadius = *layout.SensitivityRadius
	}

	switch {
	case s.Type == zones.LayoutBlank:
		s.ZoneCount = 0
	case s.ZoneCount > 0:
	case s.Type == zones.LayoutCustomCanvas && s.Canvas != nil:
		s.ZoneCount = len(s.Canvas.Zones)
	case s.Type == zones.LayoutCustomGrid && s.Grid != nil:
		n, err := zones.ValidateGrid(*s.Grid)
		if err != nil {
			return zones.Settings{}, err
		}
		s.ZoneCount = n
	default:
		s.ZoneCount = c.ZoneCount
	}
	return s, nil
}

// LayoutFor returns the layout name used on monitor.
func (c *Config) LayoutFor(monitor string) string {
	if name, ok := c.MonitorLayouts[monitor]; ok {
		return name
	}
	return c.DefaultLayout
}

// WithMonitorLayout returns a copy of c that uses layout on monitor. An empty
// layout removes the override.
func (c *Config) WithMonitorLayout(monitor, layout string) *Config {
	out := *c
	out.MonitorLayouts = make(map[string]string, len(c.MonitorLayouts)+1)
	for m, l := range c.MonitorLayouts {
		out.MonitorLayouts[m] = l
	}
	if layout == "" {
		delete(out.MonitorLayouts, monitor)
	} else {
		out.MonitorLayouts[monitor] = layout
	}
	if len(out.MonitorLayouts) == 0 {
		out.MonitorLayouts = nil
	}
	return &out
}

// LayoutNames returns the configured layout names, sorted.
func (c *Config) LayoutNames() []string {
	names := make([]string, 0, len(c.Layouts))
	for name := range c.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Algorithm returns the parsed overlapping zones algorithm.
func (c *Config) Algorithm() zones.OverlappingAlgorithm {
	algo, err := zones.ParseOverlappingAlgorithm(c.OverlappingZonesAlgorithm)
	if err != nil {
		return zones.OverlapSmallest
	}
	return algo
}

// Policy returns the parsed keyboard snap boundary policy.
func (c *Config) Policy() snap.BoundaryPolicy {
	policy, err := snap.ParseBoundaryPolicy(c.BoundaryPolicy)
	if err != nil {
		return snap.DefaultPolicy
	}
	return policy
}

// SaveTo writes the configuration to path. Builtin layouts that were not
// changed are omitted.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Layouts = layoutsForSave(c.Layouts)

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func layoutsForSave(layouts map[string]LayoutConfig) map[string]LayoutConfig {
	builtin := BuiltinLayouts()
	out := make(map[string]LayoutConfig)
	for name, layout := range layouts {
		if base, ok := builtin[name]; ok && reflect.DeepEqual(base, layout) {
			continue
		}
		out[name] = layout
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	if c.DefaultLayout == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if _, ok := c.Layouts[c.DefaultLayout]; !ok {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout %q not found in layouts", c.DefaultLayout)}
	}
	for monitor, name := range c.MonitorLayouts {
		if _, ok := c.Layouts[name]; !ok {
			return &ValidationError{Path: "monitor_layouts." + monitor, Err: fmt.Errorf("layout %q not found in layouts", name)}
		}
	}
	if c.Spacing < 0 {
		return &ValidationError{Path: "spacing", Err: fmt.Errorf("spacing must be >= 0")}
	}
	if c.ZoneCount < 1 || c.ZoneCount > zones.MaxBitmaskIndex {
		return &ValidationError{Path: "zone_count", Err: fmt.Errorf("zone_count must be between 1 and %d", zones.MaxBitmaskIndex)}
	}
	if c.SensitivityRadius < 0 {
		return &ValidationError{Path: "sensitivity_radius", Err: fmt.Errorf("sensitivity_radius must be >= 0")}
	}
	if _, err := zones.ParseOverlappingAlgorithm(c.OverlappingZonesAlgorithm); err != nil {
		return &ValidationError{Path: "overlapping_zones_algorithm", Err: fmt.Errorf("overlapping_zones_algorithm must be one of: smallest, largest, positional, none")}
	}
	if _, err := snap.ParseBoundaryPolicy(c.BoundaryPolicy); err != nil {
		return &ValidationError{Path: "boundary_policy", Err: fmt.Errorf("boundary_policy must be one of: clamp, wrap, cross-monitor")}
	}
	if c.MonitorPollSeconds < 0 {
		return &ValidationError{Path: "monitor_poll_seconds", Err: fmt.Errorf("monitor_poll_seconds must be >= 0")}
	}
	switch c.History.Backend {
	case "json", "sqlite", "memory":
	default:
		return &ValidationError{Path: "history.backend", Err: fmt.Errorf("history.backend must be one of: json, sqlite, memory")}
	}
	if !validLogLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	ids := make(map[uuid.UUID]string)
	for _, name := range c.LayoutNames() {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts contains an empty name")}
		}
		path := "layouts." + name
		if err := c.validateLayout(name); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		id, _ := c.LayoutID(name)
		if other, dup := ids[id]; dup {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("id %s is already used by layout %q", id, other)}
		}
		ids[id] = name
	}
	return nil
}

// validateLayout checks a layout by building it on a reference work area.
func (c *Config) validateLayout(name string) error {
	layout := c.Layouts[name]
	if !layout.Type.Valid() {
		return fmt.Errorf("invalid type %q", layout.Type)
	}
	if layout.ZoneCount < 0 || layout.ZoneCount > zones.MaxBitmaskIndex {
		return fmt.Errorf("zone_count must be between 0 and %d", zones.MaxBitmaskIndex)
	}
	if layout.Spacing != nil && *layout.Spacing < 0 {
		return fmt.Errorf("spacing must be >= 0")
	}
	if layout.SensitivityRadius != nil && *layout.SensitivityRadius < 0 {
		return fmt.Errorf("sensitivity_radius must be >= 0")
	}
	if layout.Type == zones.LayoutCustomCanvas && layout.Canvas == nil {
		return fmt.Errorf("custom-canvas layouts require canvas")
	}
	if layout.Type == zones.LayoutCustomGrid && layout.Grid == nil {
		return fmt.Errorf("custom-grid layouts require grid")
	}

	s, err := c.Settings(name)
	if err != nil {
		return err
	}
	if s.ZoneCount > zones.MaxBitmaskIndex {
		return fmt.Errorf("layout has %d zones, at most %d are supported", s.ZoneCount, zones.MaxBitmaskIndex)
	}
	trial := zones.NewLayout(s)
	if err := trial.Build(zones.RectFromSize(0, 0, referenceWidth, referenceHeight)); err != nil {
		return err
	}
	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	}
	return false
}
