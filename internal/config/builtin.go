package config

import "github.com/1broseidon/zonetile/internal/zones"

// BuiltinLayouts returns the built-in layout library.
//
// These are always available to users without needing to define them in YAML.
// Zone counts default to the top-level zone_count.
func BuiltinLayouts() map[string]LayoutConfig {
	return map[string]LayoutConfig{
		"blank":         {Type: zones.LayoutBlank},
		"focus":         {Type: zones.LayoutFocus},
		"columns":       {Type: zones.LayoutColumns},
		"rows":          {Type: zones.LayoutRows},
		"grid":          {Type: zones.LayoutGrid},
		"priority-grid": {Type: zones.LayoutPriorityGrid},
	}
}
