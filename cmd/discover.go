package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/source"
)

// discoverSources assembles the conversation sources for a run. Flags
// pin exact paths; otherwise the standard per-OS storage locations are
// probed. A source that cannot be found is simply absent, never fatal.
func discoverSources(root string, log zerolog.Logger) []source.Source {
	var sources []source.Source

	for _, path := range cursorStateDBs() {
		sources = append(sources, source.NewCursor(path, log))
	}
	for _, path := range windsurfStateDBs() {
		sources = append(sources, source.NewWindsurf(path, log))
	}
	if dir := claudeProjectsDir(root); dir != "" {
		sources = append(sources, source.NewClaudeCode(dir, log))
	}

	log.Debug().Int("sources", len(sources)).Msg("discovered conversation sources")
	return sources
}

func cursorStateDBs() []string {
	if cursorDB != "" {
		return []string{cursorDB}
	}
	return workspaceStateDBs("Cursor")
}

func windsurfStateDBs() []string {
	if windsurfDB != "" {
		return []string{windsurfDB}
	}
	return workspaceStateDBs("Windsurf")
}

// workspaceStateDBs globs an editor's workspaceStorage for state.vscdb
// files. The layout is the same across VSCode forks; only the app
// support directory differs per OS.
func workspaceStateDBs(app string) []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", app)
	case "windows":
		base = filepath.Join(os.Getenv("APPDATA"), app)
	default:
		base = filepath.Join(home, ".config", app)
	}

	matches, err := filepath.Glob(filepath.Join(base, "User", "workspaceStorage", "*", "state.vscdb"))
	if err != nil {
		return nil
	}
	return matches
}

// claudeProjectsDir maps a project root to Claude Code's per-project
// session directory, which munges the absolute path into a dirname.
func claudeProjectsDir(root string) string {
	if claudeDir != "" {
		return claudeDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	munged := strings.ReplaceAll(strings.ReplaceAll(root, string(filepath.Separator), "-"), "_", "-")
	return filepath.Join(home, ".claude", "projects", munged)
}
