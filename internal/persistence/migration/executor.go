package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Executor runs migrations against a database/sql handle.
type Executor struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewExecutor creates an executor for the dialect.
func NewExecutor(db *sql.DB, dialect Dialect) *Executor {
	return &Executor{db: db, dialect: dialect, now: time.Now}
}

// InitializeVersionTable creates schema_migrations if it does not exist.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, e.dialect.VersionTableDDL); err != nil {
		return NewDatabaseError("", "create schema_migrations table", err)
	}
	return nil
}

// Execute runs every statement of the migration and records it in one transaction.
func (e *Executor) Execute(ctx context.Context, migration Migration) (err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	start := e.now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback error: %v)", err, rbErr)
			}
		}
	}()

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = NewDatabaseError(migration.Version, fmt.Sprintf("execute statement %d", i+1), execErr)
			return err
		}
	}

	insert := fmt.Sprintf(
		"INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (%s, %s, %s, %s)",
		e.dialect.Placeholder(1), e.dialect.Placeholder(2), e.dialect.Placeholder(3), e.dialect.Placeholder(4),
	)
	elapsed := e.now().Sub(start)
	if _, execErr := tx.ExecContext(ctx, insert,
		migration.Version,
		e.now().UTC().Format(time.RFC3339),
		migration.Checksum,
		elapsed.Milliseconds(),
	); execErr != nil {
		err = NewDatabaseError(migration.Version, "record migration", execErr)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = NewDatabaseError(migration.Version, "commit transaction", err)
		return err
	}
	return nil
}

// Applied returns the recorded migrations ordered by version.
func (e *Executor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, NewDatabaseError("", "get applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			record      AppliedMigration
			appliedAt   string
			executionMs int64
		)
		if err := rows.Scan(&record.Version, &appliedAt, &executionMs, &record.Checksum); err != nil {
			return nil, NewDatabaseError("", "scan applied migration", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, appliedAt); parseErr == nil {
			record.AppliedAt = parsed
		}
		record.ExecutionTime = time.Duration(executionMs) * time.Millisecond
		applied = append(applied, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", "iterate applied migrations", err)
	}
	return applied, nil
}
