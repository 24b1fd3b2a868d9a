package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var startersCmd = &cobra.Command{
	Use:   "starters",
	Short: "Show current conversation starters",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		store, err := openMemory(cfg)
		if err != nil {
			exitErr("open memory", err)
		}

		starters := store.ConversationStarters()
		if len(starters) == 0 {
			printResult(starters, "No conversation starters yet. Run 'member-berries check' first.")
			return
		}

		var b strings.Builder
		b.WriteString("Conversation starters:\n")
		for _, s := range starters {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		printResult(starters, strings.TrimRight(b.String(), "\n"))
	},
}

func init() {
	RootCmd.AddCommand(startersCmd)
}
