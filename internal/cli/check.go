package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/berrypatch/member-berries/internal/memory"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan the calendar for completed and upcoming events",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		store, err := openMemory(cfg)
		if err != nil {
			exitErr("open memory", err)
		}
		srcs, err := buildSources(cfg)
		if err != nil {
			exitErr("open sources", err)
		}
		defer srcs.close()

		ctx := cmd.Context()
		gen := memory.NewStarterGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))

		completed, err := store.CheckCompletedEvents(ctx, srcs.calendar, gen)
		if err != nil {
			exitErr("check completed events", err)
		}
		upcoming, err := store.CheckUpcomingEvents(ctx, srcs.calendar)
		if err != nil {
			exitErr("check upcoming events", err)
		}

		summary := struct {
			Completed int `json:"completed"`
			Upcoming  int `json:"upcoming"`
		}{completed, upcoming}
		printResult(summary, fmt.Sprintf("Remembered %d completed and %d upcoming events.", completed, upcoming))

		if starters := store.ConversationStarters(); len(starters) > 0 && formatFlag != "json" {
			fmt.Printf("Try: %s\n", starters[0])
		}
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
