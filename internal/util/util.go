package util

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Workspace is a scratch directory owned by a single tool run.
// Release removes it; calling Release more than once is a no-op.
type Workspace struct {
	dir      string
	released bool
}

// NewWorkspace creates <root>/<prefix><uuid>. An empty root means os.TempDir().
func NewWorkspace(root, prefix string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, prefix+uuid.NewString())

	// Mkdir (not MkdirAll) fails if the name is somehow taken
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins elem onto the workspace directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

func (w *Workspace) Release() error {
	if w == nil || w.released {
		return nil
	}
	w.released = true
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.dir, err)
	}
	return nil
}
