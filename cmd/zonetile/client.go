package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/zones"
)

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := g.client().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return writeJSON(out, st)
			}
			fmt.Fprintf(out, "daemon_running:  %v\n", st.DaemonRunning)
			fmt.Fprintf(out, "desktop:         %s\n", st.Desktop)
			fmt.Fprintf(out, "monitors:        %s\n", strings.Join(st.Monitors, ", "))
			fmt.Fprintf(out, "work_areas:      %d\n", st.WorkAreas)
			fmt.Fprintf(out, "windows:         %d\n", st.Windows)
			fmt.Fprintf(out, "default_layout:  %s\n", st.DefaultLayout)
			fmt.Fprintf(out, "boundary_policy: %s\n", st.Policy)
			fmt.Fprintf(out, "overlap:         %s\n", st.Algorithm)
			fmt.Fprintf(out, "dragging:        %v\n", st.Dragging)
			fmt.Fprintf(out, "uptime_seconds:  %d\n", st.UptimeSeconds)
			return nil
		},
	}
}

func newMonitorsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List monitors in zone navigation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().GetMonitors()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return writeJSON(out, data)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tNAME\tBOUNDS\tWORK AREA\tLAYOUT")
			for _, m := range data.Monitors {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.Order, m.Name, formatRect(m.Bounds), formatRect(m.Work), m.Layout)
			}
			return tw.Flush()
		},
	}
}

func newZonesCmd(g *globals) *cobra.Command {
	var monitor string
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List zones and the windows in them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().ListZones(monitor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return writeJSON(out, data)
			}
			printZones(out, data)
			return nil
		},
	}
	cmd.Flags().StringVarP(&monitor, "monitor", "m", "", "only this monitor")
	return cmd
}

func printZones(w io.Writer, data *ipc.ZonesData) {
	for i, area := range data.Areas {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  layout=%s (%s)  work=%s\n", area.Monitor, area.Layout, area.LayoutType, formatRect(area.WorkRect))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, z := range area.Zones {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", z.Index, formatRect(z.Rect), formatWindows(z.Windows))
		}
		tw.Flush()
	}
}

func formatRect(r zones.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width(), r.Height(), r.Left, r.Top)
}

func formatWindows(ws []uint32) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("0x%x", w)
	}
	return strings.Join(parts, " ")
}

func printPlacement(cmd *cobra.Command, g *globals, res *ipc.SnapData) error {
	out := cmd.OutOrStdout()
	if g.jsonOut {
		return writeJSON(out, res)
	}
	state := "unchanged"
	if res.Changed {
		state = "moved"
	}
	fmt.Fprintf(out, "%s: %s zones %v\n", state, res.Monitor, res.Zones)
	return nil
}

func newSnapCmd(g *globals) *cobra.Command {
	var (
		window string
		mode   string
	)
	cmd := &cobra.Command{
		Use:       "snap <left|right|up|down>",
		Short:     "Move a window one zone in a direction",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right", "up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := zones.ParseDirection(args[0])
			if err != nil {
				return err
			}
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			res, err := g.client().Snap(id, dir, mode)
			if err != nil {
				return err
			}
			return printPlacement(cmd, g, res)
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "window id, decimal or 0x hex (default: active window)")
	cmd.Flags().StringVar(&mode, "mode", "", "index or position (default: from config)")
	return cmd
}

func newExtendCmd(g *globals) *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:       "extend <left|right|up|down>",
		Short:     "Grow a window into the neighbouring zone",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right", "up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := zones.ParseDirection(args[0])
			if err != nil {
				return err
			}
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			res, err := g.client().Extend(id, dir)
			if err != nil {
				return err
			}
			return printPlacement(cmd, g, res)
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "window id, decimal or 0x hex (default: active window)")
	return cmd
}

func newMoveCmd(g *globals) *cobra.Command {
	var (
		window  string
		monitor string
	)
	cmd := &cobra.Command{
		Use:   "move <zone>[,<zone>...]",
		Short: "Place a window into explicit zones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseZoneList(args)
			if err != nil {
				return err
			}
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			res, err := g.client().MoveToZones(id, monitor, indices)
			if err != nil {
				return err
			}
			return printPlacement(cmd, g, res)
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "window id, decimal or 0x hex (default: active window)")
	cmd.Flags().StringVarP(&monitor, "monitor", "m", "", "target monitor (default: the window's monitor)")
	return cmd
}

func newDragCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Feed drag events from a window manager hook",
	}

	var window string
	start := &cobra.Command{
		Use:   "start <x,y>",
		Short: "Begin dragging a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0])
			if err != nil {
				return err
			}
			id, err := parseWindowID(window)
			if err != nil {
				return err
			}
			if id == 0 {
				return fmt.Errorf("--window is required")
			}
			return g.client().MoveSizeStart(id, p)
		},
	}
	start.Flags().StringVarP(&window, "window", "w", "", "window id, decimal or 0x hex")

	var many bool
	update := &cobra.Command{
		Use:   "update <x,y>",
		Short: "Move the drag pointer and print the highlighted zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0])
			if err != nil {
				return err
			}
			res, err := g.client().MoveSizeUpdate(p, many)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", res.Monitor, res.Zones)
			return nil
		},
	}
	update.Flags().BoolVar(&many, "select-many", false, "span every zone between the drag start and the pointer")

	var endWindow string
	end := &cobra.Command{
		Use:   "end <x,y>",
		Short: "Drop the window into the highlighted zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0])
			if err != nil {
				return err
			}
			id, err := parseWindowID(endWindow)
			if err != nil {
				return err
			}
			if id == 0 {
				return fmt.Errorf("--window is required")
			}
			return g.client().MoveSizeEnd(id, p)
		},
	}
	end.Flags().StringVarP(&endWindow, "window", "w", "", "window id, decimal or 0x hex")

	cancel := &cobra.Command{
		Use:   "cancel",
		Short: "Abandon the drag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.client().MoveSizeCancel()
		},
	}

	cmd.AddCommand(start, update, end, cancel)
	return cmd
}

func newLayoutCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "List layouts or assign one to a monitor",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().ListLayouts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return writeJSON(out, data)
			}
			for _, name := range data.Layouts {
				marker := "  "
				if name == data.DefaultLayout {
					marker = "* "
				}
				fmt.Fprintf(out, "%s%s\n", marker, name)
			}
			monitors := make([]string, 0, len(data.MonitorLayouts))
			for monitor := range data.MonitorLayouts {
				monitors = append(monitors, monitor)
			}
			sort.Strings(monitors)
			for _, monitor := range monitors {
				fmt.Fprintf(out, "%s -> %s\n", monitor, data.MonitorLayouts[monitor])
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <monitor> [layout]",
		Short: "Assign a layout to a monitor; omit the layout to use the default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := ""
			if len(args) == 2 {
				layout = args[1]
			}
			return g.client().SetMonitorLayout(args[0], layout)
		},
	}

	cmd.AddCommand(list, set)
	return cmd
}

func newReloadCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload its config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.client().Reload()
		},
	}
}

// parseWindowID accepts decimal or 0x-prefixed hex. Empty means zero.
func parseWindowID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(v), nil
}

func parsePoint(s string) (zones.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return zones.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return zones.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return zones.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	return zones.Point{X: x, Y: y}, nil
}

// parseZoneList accepts indices as separate arguments, comma separated, or
// both.
func parseZoneList(args []string) ([]int, error) {
	var out []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("invalid zone index %q", part)
			}
			out = append(out, idx)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no zone indices given")
	}
	return out, nil
}
