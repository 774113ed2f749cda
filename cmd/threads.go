package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Pair split prompt/generation history into conversation threads",
	Long: `Cursor stores prompts and generations in separate tables. This
command pairs them into ordered conversational threads using sequence
proximity and time-window heuristics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}

		threads, err := eng.Threads(cmd.Context())
		if err != nil {
			return fmt.Errorf("threading failed: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, _ := json.MarshalIndent(threads, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(threads) == 0 {
			fmt.Println("No prompt/generation history found")
			return nil
		}

		for _, t := range threads {
			when := "unknown time"
			if t.Timestamp != nil {
				when = t.Timestamp.Format("2006-01-02 15:04")
			}
			state := "paired"
			if t.Unpaired {
				state = "unpaired"
			}
			fmt.Printf("[%s] %s  prompt=%v generation=%v\n",
				when, state, t.Prompt != nil, t.Generation != nil)
		}
		return nil
	},
}

func init() {
	threadsCmd.Flags().Bool("json", false, "Output as JSON")
}
