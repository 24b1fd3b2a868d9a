// Package cli implements the member-berries CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/berrypatch/member-berries/internal/config"
	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/memory"
	"github.com/berrypatch/member-berries/internal/sources"
	"github.com/berrypatch/member-berries/internal/sources/apple"
	"github.com/berrypatch/member-berries/internal/sources/local"
	"github.com/berrypatch/member-berries/pkg/version"
)

var (
	homeFlag     string
	logLevelFlag string
	formatFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "member-berries",
	Short: "A friendly, contextual memory layer over calendar, notes, and reminders",
	Long: "Member Berries remembers your activities and turns them into natural " +
		"conversation starters. Run 'serve' to expose the tools over stdio, or use " +
		"the subcommands for direct access to the memory layer.",
	Version: version.Version,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Data directory (default: $MEMBER_BERRIES_HOME or ~/.member-berries)")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if homeFlag != "" {
		cfg, err = config.LoadFrom(homeFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.Format = cfg.LogFormat
	logger.Init(logCfg)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func openMemory(cfg *config.Config) (*memory.Store, error) {
	store := memory.NewStore(cfg.MemoryPath)
	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize memory: %w", err)
	}
	return store, nil
}

// sourceSet bundles the three collaborator implementations for one provider.
type sourceSet struct {
	calendar  sources.Calendar
	notes     sources.Notes
	reminders sources.Reminders
	close     func() error
}

func buildSources(cfg *config.Config) (*sourceSet, error) {
	switch cfg.Provider {
	case config.ProviderApple:
		runner := apple.NewRunner()
		return &sourceSet{
			calendar:  apple.NewCalendar(runner),
			notes:     apple.NewNotes(runner),
			reminders: apple.NewReminders(runner),
			close:     func() error { return nil },
		}, nil
	default:
		store, err := local.NewStore(cfg.SourcesDBPath)
		if err != nil {
			return nil, fmt.Errorf("open local sources: %w", err)
		}
		return &sourceSet{
			calendar:  store,
			notes:     store,
			reminders: store,
			close:     store.Close,
		}, nil
	}
}

func printResult(v interface{}, text string) {
	if formatFlag == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			exitErr("encode output", err)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(text)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
