package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluekornchips/gandalf/internal/engine"
)

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Rank prior AI conversations by relevance to this project",
	Long: `Mine the chat-history stores of your IDE AI tools and rank past
conversations by relevance to the current project.

Examples:
  gandalf recall
  gandalf recall --limit 20 --light
  gandalf recall --max-bytes 32768 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		light, _ := cmd.Flags().GetBool("light")
		maxBytes, _ := cmd.Flags().GetInt("max-bytes")

		result, err := eng.Recall(cmd.Context(), engine.RecallOptions{
			Limit:    limit,
			Light:    light,
			MaxBytes: maxBytes,
		})
		if err != nil {
			return fmt.Errorf("recall failed: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if light {
			if len(result.Light) == 0 {
				fmt.Println("No conversations found")
				return nil
			}
			for _, c := range result.Light {
				fmt.Printf("%.3f  [%s] %s\n", c.RelevanceScore, c.Source, c.Title)
			}
			return nil
		}

		if len(result.Conversations) == 0 {
			fmt.Println("No conversations found")
			return nil
		}

		fmt.Printf("Found %d relevant conversations (keywords: %s)\n\n",
			len(result.Conversations), strings.Join(result.Keywords, ", "))
		for i, c := range result.Conversations {
			fmt.Printf("%d. [%s] %s (score %.3f)\n", i+1, c.Source, c.Title, c.RelevanceScore)
			if c.Analysis != nil {
				fmt.Printf("   type=%s keywords=%.2f recency=%.2f files=%.2f\n",
					c.Analysis.ConversationType, c.Analysis.KeywordScore,
					c.Analysis.RecencyScore, c.Analysis.FileScore)
				if len(c.Analysis.FileReferences) > 0 {
					fmt.Printf("   refs: %s\n", strings.Join(c.Analysis.FileReferences, ", "))
				}
			}
			preview := c.Content
			if len(preview) > 160 {
				preview = preview[:160] + "..."
			}
			if preview != "" {
				fmt.Printf("   %s\n", preview)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	recallCmd.Flags().IntP("limit", "l", 10, "Maximum number of conversations")
	recallCmd.Flags().Bool("light", false, "Print id/title/score listings only")
	recallCmd.Flags().Int("max-bytes", 0, "Serialized-size budget for the result set (0 = unlimited)")
	recallCmd.Flags().Bool("json", false, "Output as JSON")
}
