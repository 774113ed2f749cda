package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source availability and cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}

		st := eng.Status()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, _ := json.MarshalIndent(st, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Gandalf %s\n\n", version)
		fmt.Println("Sources:")
		if len(st.Sources) == 0 {
			fmt.Println("  none discovered")
		}
		for _, src := range st.Sources {
			state := "unavailable"
			if src.Available {
				state = "available"
			}
			fmt.Printf("  %-12s %s\n", src.Name, state)
		}
		fmt.Printf("\nAnalysis cache: %d items, %d bytes (%d hits / %d misses)\n",
			st.Analyses.Items, st.Analyses.Bytes, st.Analyses.Hits, st.Analyses.Misses)
		fmt.Printf("Keywords: %v\n", st.Keywords)

		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "Output as JSON")
}
