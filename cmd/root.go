package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bluekornchips/gandalf/internal/config"
	"github.com/bluekornchips/gandalf/internal/engine"
	"github.com/bluekornchips/gandalf/internal/logging"
)

var (
	version = "0.1.0"

	projectRoot string
	weightsFile string
	cursorDB    string
	windsurfDB  string
	claudeDir   string
)

var rootCmd = &cobra.Command{
	Use:   "gandalf",
	Short: "Hand your AI assistant the context it forgot it had.",
	Long: `Gandalf mines the chat-history databases your IDE AI tools leave
behind, merges them with project signals (git activity, file layout,
manifest keywords), and ranks the result so an assistant can be handed
the most relevant prior conversations and files as context.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&weightsFile, "weights", "", "weights file (default is ~/.gandalf/weights.yaml)")
	rootCmd.PersistentFlags().StringVar(&cursorDB, "cursor-db", "", "path to a Cursor state.vscdb (default: auto-discover)")
	rootCmd.PersistentFlags().StringVar(&windsurfDB, "windsurf-db", "", "path to a Windsurf state.vscdb (default: auto-discover)")
	rootCmd.PersistentFlags().StringVar(&claudeDir, "claude-dir", "", "Claude Code projects directory (default: auto-discover)")

	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(statusCmd)
}

// resolveRoot returns the project root the pipeline operates on
func resolveRoot() (string, error) {
	if projectRoot != "" {
		return filepath.Abs(projectRoot)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return wd, nil
}

// getConfigDir returns the gandalf config directory
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		os.Exit(1)
	}
	return filepath.Join(home, ".gandalf")
}

// buildEngine wires weights, sources and the pipeline for one run
func buildEngine() (*engine.Engine, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	path := weightsFile
	if path == "" {
		path = filepath.Join(getConfigDir(), "weights.yaml")
	}
	weights, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := logging.Setup()
	sources := discoverSources(root, log)
	return engine.New(root, weights, sources, log), nil
}
