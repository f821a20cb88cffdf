package workspace

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Manager handles one workspace folder, either ephemeral or persistent.
type Manager struct {
	baseDir    string
	dir        string
	persistent bool // If true, dir is fixed and kept on Cleanup
	logger     *slog.Logger
}

// NewManager creates a manager for a uniquely named ephemeral folder
// ("docsite-*") inside baseDir, or the system temp folder when blank.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir, logger: slog.Default()}
}

// NewPersistentManager creates a manager for the fixed folder baseDir/subdir.
func NewPersistentManager(baseDir, subdir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if subdir == "" {
		subdir = "cache"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, subdir),
		persistent: true,
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger used for workspace events.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Create makes the folder. It is idempotent for persistent workspaces.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create workspace").
				WithContext("path", m.dir).
				Build()
		}
		m.logger.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create workspace base").
			WithContext("path", m.baseDir).
			Build()
	}
	dir, err := os.MkdirTemp(m.baseDir, "docsite-")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create workspace").
			WithContext("path", m.baseDir).
			Build()
	}
	m.dir = dir
	m.logger.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace folder. Ephemeral workspaces have no path
// until Create.
func (m *Manager) Path() string {
	return m.dir
}

// Reset empties the folder and creates it again.
func (m *Manager) Reset() error {
	if m.dir == "" {
		return m.Create()
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to reset workspace").
			WithContext("path", m.dir).
			Build()
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create workspace").
			WithContext("path", m.dir).
			Build()
	}
	return nil
}

// Cleanup removes an ephemeral folder. Persistent folders are kept.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if m.persistent {
		m.logger.Debug("Keeping persistent workspace", logfields.Path(m.dir))
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean up workspace").
			WithContext("path", m.dir).
			Build()
	}
	m.logger.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// Subdir creates and returns a folder inside the workspace.
func (m *Manager) Subdir(name string) (string, error) {
	if m.dir == "" {
		return "", errors.InternalError("workspace not created").Build()
	}
	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create subdirectory").
			WithContext("path", sub).
			Build()
	}
	return sub, nil
}
