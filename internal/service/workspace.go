package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	SegmentsDirName   = "video_segments"
	SequentialDirName = "processed_sequential"
	ParallelDirName   = "processed_parallel"
)

// Workspace is the set of phase directories a single run writes into. Concurrent runs
// against the same root are not supported.
type Workspace struct {
	Root          string
	SegmentsDir   string
	SequentialDir string
	ParallelDir   string
}

// AcquireWorkspace purges and recreates the phase directories under root.
func AcquireWorkspace(root string) (*Workspace, error) {
	if root == "" {
		return nil, errors.New("workspace root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	ws := &Workspace{
		Root:          abs,
		SegmentsDir:   filepath.Join(abs, SegmentsDirName),
		SequentialDir: filepath.Join(abs, SequentialDirName),
		ParallelDir:   filepath.Join(abs, ParallelDirName),
	}
	for _, dir := range ws.dirs() {
		if err := ws.ResetDir(dir); err != nil {
			_ = ws.Release()
			return nil, err
		}
	}
	return ws, nil
}

func (w *Workspace) dirs() []string {
	return []string{w.SegmentsDir, w.SequentialDir, w.ParallelDir}
}

// ResetDir empties dir, which must be one of the workspace's phase directories.
func (w *Workspace) ResetDir(dir string) error {
	owned := false
	for _, d := range w.dirs() {
		if d == dir {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("%s is not a workspace directory", dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("purge %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Release removes every phase directory, and the root when nothing else lives there.
// It is safe to call more than once.
func (w *Workspace) Release() error {
	var errs []error
	for _, dir := range w.dirs() {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", dir, err))
		}
	}
	// fails harmlessly when the root holds files we don't own
	_ = os.Remove(w.Root)
	return errors.Join(errs...)
}
