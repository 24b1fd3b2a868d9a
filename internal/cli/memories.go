package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var memoriesHours int

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "List recent memories",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		store, err := openMemory(cfg)
		if err != nil {
			exitErr("open memory", err)
		}

		window := time.Duration(memoriesHours) * time.Hour
		recent := store.RecentMemories(window)
		if len(recent) == 0 {
			printResult(recent, fmt.Sprintf("No memories in the last %d hours.", memoriesHours))
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Memories from the last %d hours:\n", memoriesHours)
		for _, berry := range recent {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", berry.Summary, berry.Context, berry.Timestamp.Format("Jan 2 15:04"))
		}
		printResult(recent, strings.TrimRight(b.String(), "\n"))
	},
}

func init() {
	memoriesCmd.Flags().IntVar(&memoriesHours, "hours", 24, "Lookback window in hours")
	RootCmd.AddCommand(memoriesCmd)
}
