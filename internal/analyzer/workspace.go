package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// workspace is the isolated temporary directory owned by one analysis
// request. The random id plus the timestamp keeps concurrent requests from
// ever colliding.
type workspace struct {
	id        string
	dir       string
	framesDir string
}

func newWorkspace() (*workspace, error) {
	id := fmt.Sprintf("%s-%d", uuid.New().String(), time.Now().UnixNano())
	dir := filepath.Join(os.TempDir(), "clipcoach-"+id)
	framesDir := filepath.Join(dir, "frames")

	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return &workspace{id: id, dir: dir, framesDir: framesDir}, nil
}

// cleanup removes the whole workspace. Removal errors are only logged: a
// leaked temp directory must never fail a request that already has a result.
func (w *workspace) cleanup(logger *zap.Logger) {
	if err := os.RemoveAll(w.dir); err != nil {
		logger.Warn("Failed to remove workspace",
			zap.Error(err),
			zap.String("dir", w.dir))
	}
}

// videoFile locates the downloaded video inside the workspace by its known
// name prefix, skipping subtitle files.
func (w *workspace) videoFile() (string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read workspace: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "video.") {
			continue
		}
		if strings.HasSuffix(name, ".vtt") {
			continue
		}
		return filepath.Join(w.dir, name), nil
	}
	return "", fmt.Errorf("no video file was produced by the downloader")
}
