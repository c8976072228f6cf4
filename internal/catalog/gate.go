package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Gate runs a job at most once per marker file.
type Gate struct {
	markerPath string
	mu         sync.Mutex
}

func NewGate(markerPath string) *Gate {
	return &Gate{markerPath: markerPath}
}

// Done reports whether the marker exists.
func (g *Gate) Done() (bool, error) {
	_, err := os.Stat(g.markerPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RunOnce calls fn unless the marker exists. The marker is only written
// after fn succeeds.
func (g *Gate) RunOnce(ctx context.Context, fn func(context.Context) error) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	done, err := g.Done()
	if err != nil {
		return false, fmt.Errorf("check marker: %w", err)
	}
	if done {
		return false, nil
	}

	if err := fn(ctx); err != nil {
		return true, err
	}

	if err := os.MkdirAll(filepath.Dir(g.markerPath), 0o755); err != nil {
		return true, fmt.Errorf("create marker directory: %w", err)
	}
	stamp := []byte(time.Now().UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(g.markerPath, stamp, 0o644); err != nil {
		return true, fmt.Errorf("write marker: %w", err)
	}
	return true, nil
}

// Reset removes the marker so the next RunOnce runs again.
func (g *Gate) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.Remove(g.markerPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
