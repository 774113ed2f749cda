package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluekornchips/gandalf/internal/engine"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Rank project files into priority tiers",
	Long: `Score every file in the project by recency, size, extension
priority, directory importance, git activity and relationships to the
files currently in play, then bucket the result into priority tiers.

Examples:
  gandalf files
  gandalf files --top 30 --active src/server.go --active src/router.go`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}

		topN, _ := cmd.Flags().GetInt("top")
		active, _ := cmd.Flags().GetStringSlice("active")

		result, err := eng.RankFiles(cmd.Context(), engine.FilesOptions{
			TopN:        topN,
			ActiveFiles: active,
		})
		if err != nil {
			return fmt.Errorf("file ranking failed: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("High priority (%d):\n", len(result.HighPriorityFiles))
		for _, f := range result.HighPriorityFiles {
			fmt.Printf("  %.3f  %s\n", f.Score, f.Path)
		}
		fmt.Printf("\nMedium priority (%d):\n", len(result.MediumPriorityFiles))
		for _, f := range result.MediumPriorityFiles {
			fmt.Printf("  %.3f  %s\n", f.Score, f.Path)
		}
		fmt.Printf("\nLow priority: %d files\n", len(result.LowPriorityFiles))

		return nil
	},
}

func init() {
	filesCmd.Flags().IntP("top", "n", 20, "How many top files to list")
	filesCmd.Flags().StringSliceP("active", "a", []string{}, "Files currently in play (repeatable)")
	filesCmd.Flags().Bool("json", false, "Output as JSON")
}
