package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/runtimepath"
	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/zones"
)

// Engine is the part of the zone engine the server drives.
type Engine interface {
	Config() *config.Config
	Reload(cfg *config.Config) error
	Status() engine.Status
	Monitors() []engine.MonitorInfo
	Zones(monitor string) []engine.AreaInfo
	Snap(window zones.WindowID, dir zones.Direction, mode engine.SnapMode) (snap.Result, error)
	MoveToZones(window zones.WindowID, monitor string, set zones.IndexSet) (snap.Result, error)
	MoveSizeStart(window zones.WindowID, p zones.Point) error
	MoveSizeUpdate(p zones.Point, selectMany bool) error
	MoveSizeEnd(window zones.WindowID, p zones.Point) error
	MoveSizeCancel()
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithReloadFunc sets what RELOAD does. Without it RELOAD re-applies the
// current configuration.
func WithReloadFunc(fn func() error) ServerOption {
	return func(s *Server) { s.reload = fn }
}

// WithSaveFunc persists configuration changed over IPC.
func WithSaveFunc(fn func(*config.Config) error) ServerOption {
	return func(s *Server) { s.save = fn }
}

// WithServerLogger sets the logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	reload       func() error
	save         func(*config.Config) error
	logger       *slog.Logger
	startTime    time.Time
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// directory.
func NewServer(socketPath string, eng Engine, opts ...ServerOption) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	s := &Server{
		socketPath: socketPath,
		engine:     eng,
		logger:     slog.New(slog.DiscardHandler),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket from a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandListZones:
		return s.handleListZones(req.Payload)
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandSnap:
		return s.handleSnap(req.Payload, false)
	case CommandExtend:
		return s.handleSnap(req.Payload, true)
	case CommandMoveToZones:
		return s.handleMoveToZones(req.Payload)
	case CommandMoveSizeStart, CommandMoveSizeUpdate, CommandMoveSizeEnd:
		return s.handleMoveSize(req.Command, req.Payload)
	case CommandMoveSizeCancel:
		s.engine.MoveSizeCancel()
		return ok(nil)
	case CommandSetMonitorLayout:
		return s.handleSetMonitorLayout(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: reload requested")

	var err error
	if s.reload != nil {
		err = s.reload()
	} else {
		err = s.engine.Reload(s.engine.Config())
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	st := s.engine.Status()
	return ok(StatusData{
		Desktop:       st.Desktop,
		Monitors:      st.Monitors,
		WorkAreas:     st.WorkAreas,
		Windows:       st.Windows,
		Policy:        st.Policy,
		Algorithm:     st.Algorithm,
		DefaultLayout: s.engine.Config().DefaultLayout,
		Dragging:      st.Drag != nil,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleGetMonitors() *Response {
	cfg := s.engine.Config()
	data := MonitorsData{Monitors: []MonitorInfo{}}
	for _, m := range s.engine.Monitors() {
		data.Monitors = append(data.Monitors, MonitorInfo{
			Order:  m.Order,
			Name:   m.Name,
			Bounds: m.Bounds,
			Work:   m.Work,
			Layout: cfg.LayoutFor(m.Name),
		})
	}
	return ok(data)
}

func (s *Server) handleListZones(payload json.RawMessage) *Response {
	var req ListZonesPayload
	if len(payload) > 0 {
		if err := decode(payload, &req); err != nil {
			return NewErrorResponse(err.Error())
		}
	}

	data := ZonesData{Areas: []AreaData{}}
	for _, a := range s.engine.Zones(req.Monitor) {
		area := AreaData{
			Monitor:    a.Monitor,
			Layout:     a.Layout,
			LayoutID:   a.LayoutID,
			LayoutType: string(a.LayoutType),
			WorkRect:   a.WorkRect,
			Zones:      make([]ZoneData, 0, len(a.Zones)),
		}
		for _, z := range a.Zones {
			zd := ZoneData{Index: z.Index, Rect: z.Rect}
			for _, w := range z.Windows {
				zd.Windows = append(zd.Windows, uint32(w))
			}
			area.Zones = append(area.Zones, zd)
		}
		data.Areas = append(data.Areas, area)
	}
	if req.Monitor != "" && len(data.Areas) == 0 {
		return NewErrorResponse(fmt.Sprintf("Unknown monitor: %s", req.Monitor))
	}
	return ok(data)
}

func (s *Server) handleListLayouts() *Response {
	cfg := s.engine.Config()
	return ok(LayoutsData{
		Layouts:        cfg.LayoutNames(),
		DefaultLayout:  cfg.DefaultLayout,
		MonitorLayouts: cfg.MonitorLayouts,
	})
}

// ParseSnapMode maps a SNAP mode name to the engine's mode.
func ParseSnapMode(mode string) (engine.SnapMode, error) {
	switch mode {
	case "":
		return engine.SnapDefault, nil
	case "index":
		return engine.SnapIndex, nil
	case "position":
		return engine.SnapPosition, nil
	default:
		return 0, fmt.Errorf("unknown snap mode %q", mode)
	}
}

func (s *Server) handleSnap(payload json.RawMessage, extend bool) *Response {
	var req SnapPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	dir, err := zones.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	mode := engine.SnapExtend
	if !extend {
		if mode, err = ParseSnapMode(req.Mode); err != nil {
			return NewErrorResponse(err.Error())
		}
	}

	res, err := s.engine.Snap(zones.WindowID(req.Window), dir, mode)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to snap: %v", err))
	}
	return ok(snapData(res))
}

func (s *Server) handleMoveToZones(payload json.RawMessage) *Response {
	var req MoveToZonesPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if len(req.Zones) == 0 {
		return NewErrorResponse("zones is required")
	}

	res, err := s.engine.MoveToZones(zones.WindowID(req.Window), req.Monitor, zones.NewIndexSet(req.Zones...))
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to move window: %v", err))
	}
	return ok(snapData(res))
}

func snapData(res snap.Result) SnapData {
	return SnapData{
		Monitor: res.Monitor,
		Zones:   append([]int{}, res.Zones...),
		Changed: res.Changed,
	}
}

func (s *Server) handleMoveSize(cmd CommandType, payload json.RawMessage) *Response {
	var req MoveSizePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	window := zones.WindowID(req.Window)

	var err error
	switch cmd {
	case CommandMoveSizeStart:
		if window == 0 {
			return NewErrorResponse("window is required")
		}
		err = s.engine.MoveSizeStart(window, req.Point)
	case CommandMoveSizeUpdate:
		err = s.engine.MoveSizeUpdate(req.Point, req.SelectMany)
	case CommandMoveSizeEnd:
		if window == 0 {
			return NewErrorResponse("window is required")
		}
		err = s.engine.MoveSizeEnd(window, req.Point)
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("%s failed: %v", cmd, err))
	}
	if cmd == CommandMoveSizeUpdate {
		st := s.engine.Status()
		if st.Drag != nil {
			return ok(SnapData{Monitor: st.Drag.Monitor, Zones: append([]int{}, st.Drag.Highlighted...)})
		}
	}
	return ok(nil)
}

func (s *Server) handleSetMonitorLayout(payload json.RawMessage) *Response {
	var req SetMonitorLayoutPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if req.Monitor == "" {
		return NewErrorResponse("monitor is required")
	}

	cfg := s.engine.Config().WithMonitorLayout(req.Monitor, req.Layout)
	if err := s.engine.Reload(cfg); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply layout: %v", err))
	}
	if s.save != nil {
		if err := s.save(cfg); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to save config: %v", err))
		}
	}
	s.logger.Info("IPC: monitor layout set", "monitor", req.Monitor, "layout", cfg.LayoutFor(req.Monitor))
	return ok(nil)
}

// Stop closes the listener and waits for in-flight requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
