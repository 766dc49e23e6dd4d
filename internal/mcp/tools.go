package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/zones"
)

func (s *Server) handleListZones(_ context.Context, _ *mcpsdk.CallToolRequest, args ListZonesInput) (*mcpsdk.CallToolResult, ListZonesOutput, error) {
	data, err := s.daemon.ListZones(strings.TrimSpace(args.Monitor))
	if err != nil {
		return nil, ListZonesOutput{}, err
	}
	return nil, ListZonesOutput{Areas: data.Areas}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	mons, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	layouts, err := s.daemon.ListLayouts()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Monitors: mons.Monitors, Layouts: layouts.Layouts}, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, PlacementOutput, error) {
	dir, err := zones.ParseDirection(args.Direction)
	if err != nil {
		return nil, PlacementOutput{}, err
	}
	mode := strings.ToLower(strings.TrimSpace(args.Mode))
	if _, err := ipc.ParseSnapMode(mode); err != nil {
		return nil, PlacementOutput{}, err
	}

	res, err := s.daemon.Snap(args.Window, dir, mode)
	if err != nil {
		return nil, PlacementOutput{}, err
	}
	s.logger.Debug("mcp snap_window", "window", args.Window, "dir", dir, "monitor", res.Monitor, "zones", res.Zones)
	return nil, placement(res), nil
}

func (s *Server) handleExtendWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ExtendWindowInput) (*mcpsdk.CallToolResult, PlacementOutput, error) {
	dir, err := zones.ParseDirection(args.Direction)
	if err != nil {
		return nil, PlacementOutput{}, err
	}
	res, err := s.daemon.Extend(args.Window, dir)
	if err != nil {
		return nil, PlacementOutput{}, err
	}
	return nil, placement(res), nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, PlacementOutput, error) {
	if len(args.Zones) == 0 {
		return nil, PlacementOutput{}, fmt.Errorf("zones must name at least one zone index")
	}
	for _, idx := range args.Zones {
		if idx < 0 {
			return nil, PlacementOutput{}, fmt.Errorf("zone index %d is negative", idx)
		}
	}
	res, err := s.daemon.MoveToZones(args.Window, strings.TrimSpace(args.Monitor), args.Zones)
	if err != nil {
		return nil, PlacementOutput{}, err
	}
	return nil, placement(res), nil
}

func (s *Server) handleSetMonitorLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SetMonitorLayoutInput) (*mcpsdk.CallToolResult, SetMonitorLayoutOutput, error) {
	monitor := strings.TrimSpace(args.Monitor)
	if monitor == "" {
		return nil, SetMonitorLayoutOutput{}, fmt.Errorf("monitor is required")
	}
	layout := strings.TrimSpace(args.Layout)
	if err := s.daemon.SetMonitorLayout(monitor, layout); err != nil {
		return nil, SetMonitorLayoutOutput{}, err
	}

	// Report the layout actually in effect.
	mons, err := s.daemon.GetMonitors()
	if err == nil {
		for _, m := range mons.Monitors {
			if m.Name == monitor {
				layout = m.Layout
			}
		}
	}
	return nil, SetMonitorLayoutOutput{Monitor: monitor, Layout: layout}, nil
}

func placement(res *ipc.SnapData) PlacementOutput {
	out := PlacementOutput{Monitor: res.Monitor, Zones: res.Zones, Changed: res.Changed}
	if out.Zones == nil {
		out.Zones = []int{}
	}
	return out
}
