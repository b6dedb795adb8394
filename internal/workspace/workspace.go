// Package workspace owns the shared temporary directory that downloaded card
// images and composites live in while a reply is being built.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultMaxAge is how old a file must be before Sweep removes it.
const DefaultMaxAge = time.Hour

// Asset is one file materialized in the workspace.
type Asset struct {
	Path string
}

// Name returns the asset's base file name.
func (a *Asset) Name() string {
	return filepath.Base(a.Path)
}

// Manager creates, releases and sweeps workspace files.
type Manager struct {
	dir    string
	logger *log.Logger

	mu      sync.Mutex
	created bool
}

// New creates a manager for dir. The directory is created lazily.
func New(dir string, logger *log.Logger) *Manager {
	return &Manager{
		dir:    dir,
		logger: logger.With("component", "workspace"),
	}
}

// Dir returns the workspace directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureDir creates the workspace directory if needed and returns its path.
func (m *Manager) EnsureDir() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// MkdirAll again even after the first success, the directory may have
	// been removed underneath us.
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !m.created {
		m.created = true
		m.logger.Debug("📁 workspace ready", "dir", m.dir)
	}
	return m.dir, nil
}

// NewAsset reserves a uniquely named empty file in the workspace. The caller
// owns the asset and must Release it.
func (m *Manager) NewAsset(prefix, ext string) (*Asset, error) {
	dir, err := m.EnsureDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Asset{Path: path}, nil
}

// Release deletes the asset's file. Releasing a nil asset or an already
// removed file is not an error.
func (m *Manager) Release(a *Asset) error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("⚠️ failed to release asset", "path", a.Path, "err", err)
		return fmt.Errorf("release %s: %w", a.Name(), err)
	}
	return nil
}

// ReleaseAll releases every asset, returning the first error.
func (m *Manager) ReleaseAll(assets ...*Asset) error {
	var first error
	for _, a := range assets {
		if err := m.Release(a); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Sweep removes regular files whose modification time is older than maxAge
// and returns how many were removed. A missing directory is not an error.
func (m *Manager) Sweep(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read workspace: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Released concurrently
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("⚠️ sweep could not remove file", "path", path, "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		m.logger.Info("🧹 swept stale workspace files", "removed", removed, "maxAge", maxAge)
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(maxAge); err != nil {
				m.logger.Error("❌ workspace sweep failed", "err", err)
			}
		}
	}
}
