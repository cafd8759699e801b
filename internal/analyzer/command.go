package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// commandRunner executes an external tool with a wall-clock timeout and
// returns its combined output. Swappable so tests can run the pipeline
// without the real binaries installed.
type commandRunner func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// The tool output rides along in the error so failures can be
		// classified by message downstream.
		return string(output), fmt.Errorf("%s failed: %w: %s", name, err, string(output))
	}
	return string(output), nil
}
