package cli

import (
	"context"
	"errors"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/mcp"
	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/tools"
	"github.com/berrypatch/member-berries/internal/tools/berries"
	"github.com/berrypatch/member-berries/internal/tools/calendar"
	"github.com/berrypatch/member-berries/internal/tools/notes"
	"github.com/berrypatch/member-berries/internal/tools/reminders"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools over stdio",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		log := logger.ForComponent("serve")

		store, err := openMemory(cfg)
		if err != nil {
			exitErr("open memory", err)
		}

		srcs, err := buildSources(cfg)
		if err != nil {
			exitErr("open sources", err)
		}
		defer srcs.close()

		gen := memory.NewStarterGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))

		registry := tools.NewRegistry()
		for _, tool := range []tools.Tool{
			calendar.New(srcs.calendar),
			notes.New(srcs.notes, store, cfg.NotesFolder),
			reminders.New(srcs.reminders, store),
			berries.New(store, srcs.calendar, gen),
		} {
			if err := registry.Register(tool); err != nil {
				exitErr("register tool", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.WatchMemoryFile {
			watcher, err := memory.NewFileWatcher(store)
			if err != nil {
				log.Warn("memory file watcher unavailable", "error", err)
			} else {
				go watcher.Run(ctx)
				defer watcher.Close()
			}
		}

		log.Info("starting server",
			"provider", cfg.Provider,
			"memory", cfg.MemoryPath)
		if err := mcp.NewServer(registry).Serve(ctx, mcp.Stdio()); err != nil && !errors.Is(err, context.Canceled) {
			exitErr("serve", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
