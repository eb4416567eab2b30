package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager orchestrates scanning, diffing and executing migrations.
type Manager struct {
	files    fs.FS
	executor *Executor
	logger   *slog.Logger
}

// NewManager builds a manager that applies the dialect's embedded migrations.
func NewManager(db *sql.DB, dialect Dialect, logger *slog.Logger) (*Manager, error) {
	files, err := dialect.Files()
	if err != nil {
		return nil, err
	}
	return NewManagerWithFiles(db, dialect, files, logger), nil
}

// NewManagerWithFiles builds a manager over an arbitrary migration file set.
func NewManagerWithFiles(db *sql.DB, dialect Dialect, files fs.FS, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		files:    files,
		executor: NewExecutor(db, dialect),
		logger:   logger.With("component", "migration", "dialect", dialect.Name),
	}
}

// Run applies every pending migration in version order.
func (m *Manager) Run(ctx context.Context) error {
	started := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "schema version checked",
		"current_version", status.CurrentVersion,
		"pending_count", len(status.Pending),
	)
	if len(status.Pending) == 0 {
		return nil
	}

	for i, migration := range status.Pending {
		logger := m.logger.With("version", migration.Version, "description", migration.Description)
		logger.InfoContext(ctx, "applying migration", "position", i+1, "total", len(status.Pending))

		if err := m.executor.Execute(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
	}

	m.logger.InfoContext(ctx, "migrations applied",
		"count", len(status.Pending),
		"duration", time.Since(started),
	)
	return nil
}

// Status reports applied and pending migrations, verifying checksums of the applied ones.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := Scan(m.files)
	if err != nil {
		return Status{}, err
	}

	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, record := range applied {
		appliedByVersion[normalizeVersion(record.Version)] = record
	}

	status := Status{Applied: applied}
	for _, migration := range available {
		record, ok := appliedByVersion[normalizeVersion(migration.Version)]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return Status{}, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		status.CurrentVersion = migration.Version
	}
	return status, nil
}
