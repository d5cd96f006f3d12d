package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dev/bravebird/leanpub-automation-go/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// ==================== Login Runs ====================

// CreateLoginRun creates a new login run record
func (db *DB) CreateLoginRun(ctx context.Context, run *models.LoginRun) error {
	query := `
		INSERT INTO login_runs (id, temporal_run_id, temporal_workflow_id, status, email, headless, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.ExecContext(ctx, query,
		run.ID,
		run.TemporalRunID,
		run.TemporalWorkflowID,
		run.Status,
		run.Email,
		run.Headless,
		run.StartedAt,
	)

	return err
}

// GetLoginRun retrieves a login run by ID
func (db *DB) GetLoginRun(ctx context.Context, id string) (*models.LoginRun, error) {
	query := `
		SELECT id, temporal_run_id, temporal_workflow_id, status, email, headless,
		       started_at, completed_at, error_message
		FROM login_runs
		WHERE id = ?
	`

	var run models.LoginRun
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.TemporalRunID,
		&run.TemporalWorkflowID,
		&run.Status,
		&run.Email,
		&run.Headless,
		&run.StartedAt,
		&run.CompletedAt,
		&run.ErrorMessage,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListLoginRuns retrieves recent login runs
func (db *DB) ListLoginRuns(ctx context.Context) ([]models.LoginRun, error) {
	query := `
		SELECT id, temporal_run_id, temporal_workflow_id, status, email, headless,
		       started_at, completed_at, error_message
		FROM login_runs
		ORDER BY started_at DESC
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.LoginRun
	for rows.Next() {
		var run models.LoginRun
		err := rows.Scan(
			&run.ID,
			&run.TemporalRunID,
			&run.TemporalWorkflowID,
			&run.Status,
			&run.Email,
			&run.Headless,
			&run.StartedAt,
			&run.CompletedAt,
			&run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// UpdateLoginRunStatus updates the status of a login run
func (db *DB) UpdateLoginRunStatus(ctx context.Context, id string, status models.RunStatus, errorMsg string) error {
	query := `
		UPDATE login_runs
		SET status = ?, error_message = ?,
		    completed_at = CASE WHEN ? IN ('success', 'skipped', 'failed', 'canceled') THEN NOW() ELSE completed_at END
		WHERE id = ?
	`

	_, err := db.conn.ExecContext(ctx, query, status, errorMsg, status, id)
	return err
}

// ==================== Step Results ====================

// CreateStepResult creates a step result record
func (db *DB) CreateStepResult(ctx context.Context, result *models.StepResult) error {
	query := `
		INSERT INTO step_results (id, run_id, step, sequence_id, status, detail, screenshot_path, error_message, executed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.ExecContext(ctx, query,
		result.ID,
		result.RunID,
		result.Step,
		result.SequenceID,
		result.Status,
		result.Detail,
		result.ScreenshotPath,
		result.ErrorMessage,
		result.ExecutedAt,
		result.Duration,
	)

	return err
}

// GetStepResults retrieves step results for a run
func (db *DB) GetStepResults(ctx context.Context, runID string) ([]models.StepResult, error) {
	query := `
		SELECT id, run_id, step, sequence_id, status, detail, screenshot_path,
		       error_message, executed_at, duration_ms
		FROM step_results
		WHERE run_id = ?
		ORDER BY sequence_id
	`

	rows, err := db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get step results: %w", err)
	}
	defer rows.Close()

	var results []models.StepResult
	for rows.Next() {
		var result models.StepResult
		err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.Step,
			&result.SequenceID,
			&result.Status,
			&result.Detail,
			&result.ScreenshotPath,
			&result.ErrorMessage,
			&result.ExecutedAt,
			&result.Duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step result: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ==================== Book Links ====================

// ReplaceBookLinks replaces the extracted books for a run
func (db *DB) ReplaceBookLinks(ctx context.Context, runID string, books []models.BookLink) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_links WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear book links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO book_links (run_id, slug, title, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, book := range books {
		if _, err := stmt.ExecContext(ctx, runID, book.Slug, book.Title, i); err != nil {
			return fmt.Errorf("failed to insert book link: %w", err)
		}
	}

	return tx.Commit()
}

// GetBookLinks retrieves the extracted books for a run in document order
func (db *DB) GetBookLinks(ctx context.Context, runID string) ([]models.BookLink, error) {
	query := `
		SELECT slug, title
		FROM book_links
		WHERE run_id = ?
		ORDER BY position
	`

	rows, err := db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book links: %w", err)
	}
	defer rows.Close()

	var books []models.BookLink
	for rows.Next() {
		var book models.BookLink
		if err := rows.Scan(&book.Slug, &book.Title); err != nil {
			return nil, fmt.Errorf("failed to scan book link: %w", err)
		}
		books = append(books, book)
	}

	return books, nil
}
