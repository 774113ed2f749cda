package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show the context keywords derived for this project",
	Long: `Print the bounded keyword vocabulary derived from the project's
manifests, file extensions and build markers. This is the vocabulary
the relevance scorer matches conversations against.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}

		kws := eng.Keywords()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, _ := json.MarshalIndent(kws, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		for _, kw := range kws {
			fmt.Println(kw)
		}
		return nil
	},
}

func init() {
	keywordsCmd.Flags().Bool("json", false, "Output as JSON")
}
