package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/ipc"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	socketPath string
	verbose    bool
	jsonOut    bool
}

func (g *globals) resolveConfigPath() (string, error) {
	if g.configPath != "" {
		return g.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (g *globals) client() *ipc.Client {
	if g.socketPath != "" {
		return ipc.NewClientAt(g.socketPath)
	}
	return ipc.NewClient()
}

// logger returns a slog logger backed by charmbracelet/log. --verbose forces
// debug, otherwise level applies.
func (g *globals) logger(w io.Writer, level string) *slog.Logger {
	lvl := charmlog.InfoLevel
	if parsed, err := charmlog.ParseLevel(level); err == nil {
		lvl = parsed
	}
	if g.verbose {
		lvl = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
		Prefix:          "zonetile",
	})
	return slog.New(handler)
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "zonetile",
		Short:         "Zone-based window placement for X11",
		Long:          "zonetile divides each monitor into zones and snaps windows into them by drag, hotkey or command.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("zonetile %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ~/.config/zonetile/config.yaml)")
	pf.StringVar(&g.socketPath, "socket", "", "daemon socket (default $XDG_RUNTIME_DIR/zonetile.sock)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&g.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newDaemonCmd(g),
		newStatusCmd(g),
		newMonitorsCmd(g),
		newZonesCmd(g),
		newSnapCmd(g),
		newExtendCmd(g),
		newMoveCmd(g),
		newDragCmd(g),
		newLayoutCmd(g),
		newReloadCmd(g),
		newConfigCmd(g),
		newHistoryCmd(g),
		newMCPCmd(g),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
