// Package store provides SQLite-backed persistence for project/task
// snapshots. It stands in for the upstream CRUD layer: the scheduling
// engine only ever reads a snapshot from here and never writes computed
// results back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joshharrison/ganttloom/internal/model"
)

// Store provides access to the ganttloom SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations. Dependency and subtask lists
// are stored as JSON text columns; the engine consumes them as snapshot
// values, never joins on them.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT,
		start_date DATETIME,
		end_date DATETIME,
		deadline DATETIME
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date DATETIME,
		estimated_hours REAL,
		actual_hours REAL,
		assignee_id TEXT,
		depends_on TEXT,
		subtasks TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

// SaveProject inserts or replaces a project. An empty ID gets a generated
// UUID; the stored ID is returned.
func (s *Store) SaveProject(ctx context.Context, p *model.Project) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO projects (id, name, status, start_date, end_date, deadline)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Status, nullTime(p.StartDate), nullTime(p.EndDate), nullTime(p.Deadline))
	if err != nil {
		return "", fmt.Errorf("save project: %w", err)
	}
	return p.ID, nil
}

// SaveTask inserts or replaces a task under a project. An empty ID gets a
// generated UUID; the stored ID is returned.
func (s *Store) SaveTask(ctx context.Context, projectID string, t *model.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	deps, err := json.Marshal(t.DependsOn)
	if err != nil {
		return "", fmt.Errorf("marshal depends_on: %w", err)
	}
	subs, err := json.Marshal(t.Subtasks)
	if err != nil {
		return "", fmt.Errorf("marshal subtasks: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks
		 (id, project_id, title, status, priority, due_date, estimated_hours, actual_hours, assignee_id, depends_on, subtasks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, projectID, t.Title, string(t.Status), string(t.Priority),
		nullTime(t.DueDate), t.EstimatedHours, t.ActualHours, t.AssigneeID,
		string(deps), string(subs), t.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("save task: %w", err)
	}
	return t.ID, nil
}

// GetProject fetches one project, or model.ErrProjectNotFound.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, start_date, end_date, deadline FROM projects WHERE id = ?`, id)

	var p model.Project
	var status sql.NullString
	var start, end, deadline sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &status, &start, &end, &deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrProjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.Status = status.String
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	p.Deadline = timePtr(deadline)
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, start_date, end_date, deadline FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		var p model.Project
		var status sql.NullString
		var start, end, deadline sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &status, &start, &end, &deadline); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Status = status.String
		p.StartDate = timePtr(start)
		p.EndDate = timePtr(end)
		p.Deadline = timePtr(deadline)
		out = append(out, p)
	}
	return out, rows.Err()
}

// TasksForProject returns the project's task snapshot ordered by creation
// time, then ID for determinism.
func (s *Store) TasksForProject(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, status, priority, due_date, estimated_hours, actual_hours, assignee_id, depends_on, subtasks, created_at
		 FROM tasks WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		var status, priority string
		var due sql.NullTime
		var estimated, actual sql.NullFloat64
		var assignee, deps, subs sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &status, &priority, &due, &estimated, &actual, &assignee, &deps, &subs, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = model.Status(status)
		t.Priority = model.Priority(priority)
		t.DueDate = timePtr(due)
		t.EstimatedHours = estimated.Float64
		t.ActualHours = actual.Float64
		t.AssigneeID = assignee.String
		if deps.String != "" {
			if err := json.Unmarshal([]byte(deps.String), &t.DependsOn); err != nil {
				return nil, fmt.Errorf("parse depends_on for %s: %w", t.ID, err)
			}
		}
		if subs.String != "" {
			if err := json.Unmarshal([]byte(subs.String), &t.Subtasks); err != nil {
				return nil, fmt.Errorf("parse subtasks for %s: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
