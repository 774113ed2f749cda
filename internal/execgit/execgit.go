package execgit

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a git subcommand in dir and returns its stdout.
// It exists so callers can substitute a fake in tests.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Run shells out to git with the repository passed via -C. The context
// deadline kills the process; a timeout surfaces as an error like any
// other git failure.
func Run(ctx context.Context, dir string, args ...string) (string, error) {
	full := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}
