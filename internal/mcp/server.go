package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/zones"
)

const (
	ServerName    = "zonetile"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call.
type Daemon interface {
	ListZones(monitor string) (*ipc.ZonesData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	ListLayouts() (*ipc.LayoutsData, error)
	Snap(window uint32, dir zones.Direction, mode string) (*ipc.SnapData, error)
	Extend(window uint32, dir zones.Direction) (*ipc.SnapData, error)
	MoveToZones(window uint32, monitor string, indices []int) (*ipc.SnapData, error)
	SetMonitorLayout(monitor, layout string) error
}

// Server exposes zone placement to MCP clients by forwarding to the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{daemon: daemon, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_zones",
		Description: "List the zones of each monitor on the current desktop in screen coordinates, with the windows assigned to each zone.",
	}, s.handleListZones)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List monitors in left-to-right, top-to-bottom order with their work areas and layouts, plus every configured layout name.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Move a window one zone in a direction, like the Win+Arrow hotkey. At the edge of a monitor the window moves to the next monitor or wraps, following boundary_policy.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "extend_window",
		Description: "Grow a window to also cover the nearest zone in a direction, like Win+Shift+Arrow. Extending back toward the starting zone shrinks it again.",
	}, s.handleExtendWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window_to_zones",
		Description: "Place a window into an explicit set of zone indices from list_zones. The window covers the bounding rectangle of the zones.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_monitor_layout",
		Description: "Assign a configured layout to a monitor and save it to the config file. Windows already in zones are re-fitted to the new layout.",
	}, s.handleSetMonitorLayout)
}
