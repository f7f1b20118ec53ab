package store

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/ganttloom/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesDatabase(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSaveProject_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	id, err := s.SaveProject(ctx, &model.Project{
		Name:      "API Redesign",
		Status:    "active",
		StartDate: &start,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id, "empty project ID should be generated")

	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "API Redesign", got.Name)
	assert.Equal(t, "active", got.Status)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
	assert.Nil(t, got.EndDate)
	assert.Nil(t, got.Deadline)
}

func TestGetProject_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestSaveTask_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pid, err := s.SaveProject(ctx, &model.Project{Name: "P"})
	require.NoError(t, err)

	due := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	task := model.Task{
		Title:          "Build schema",
		Status:         model.StatusInProgress,
		Priority:       model.PriorityHigh,
		DueDate:        &due,
		EstimatedHours: 16,
		ActualHours:    4,
		AssigneeID:     "u1",
		DependsOn:      []string{"a", "b"},
		Subtasks: []model.Subtask{
			{Status: model.StatusDone},
			{Status: model.StatusTodo},
		},
	}
	tid, err := s.SaveTask(ctx, pid, &task)
	require.NoError(t, err)
	require.NotEmpty(t, tid)

	tasks, err := s.TasksForProject(ctx, pid)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, tid, got.ID)
	assert.Equal(t, "Build schema", got.Title)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, 16.0, got.EstimatedHours)
	assert.Equal(t, 4.0, got.ActualHours)
	assert.Equal(t, "u1", got.AssigneeID)
	assert.Equal(t, []string{"a", "b"}, got.DependsOn)
	require.Len(t, got.Subtasks, 2)
	assert.Equal(t, model.StatusDone, got.Subtasks[0].Status)
}

func TestTasksForProject_DeterministicOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pid, err := s.SaveProject(ctx, &model.Project{Name: "P"})
	require.NoError(t, err)

	created := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.SaveTask(ctx, pid, &model.Task{ID: id, Title: id, Status: model.StatusTodo, Priority: model.PriorityMedium, CreatedAt: created})
		require.NoError(t, err)
	}

	tasks, err := s.TasksForProject(ctx, pid)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	// Same created_at: ID breaks the tie.
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
	assert.Equal(t, "c", tasks[2].ID)
}

func TestListProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha"} {
		_, err := s.SaveProject(ctx, &model.Project{Name: name})
		require.NoError(t, err)
	}

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Zeta", projects[1].Name)
}

func TestImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snapshot := []byte(`{
		"project": {"id": "p1", "name": "Imported"},
		"tasks": [
			{"id": "t1", "title": "First", "status": "todo", "priority": "medium"},
			{"id": "t2", "title": "Second", "status": "in_progress", "priority": "high", "depends_on": ["t1"]}
		]
	}`)

	pid, err := s.Import(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, "p1", pid)

	tasks, err := s.TasksForProject(ctx, pid)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, []string{"t1"}, tasks[1].DependsOn)
}

func TestImport_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"invalid json", `{not json`, "not valid JSON"},
		{"missing project", `{"tasks": []}`, `missing "project"`},
		{"missing tasks", `{"project": {"name": "P"}}`, `missing "tasks"`},
		{"unnamed project", `{"project": {"name": ""}, "tasks": []}`, "no name"},
		{"bad status", `{"project": {"name": "P"}, "tasks": [{"id": "t", "status": "paused"}]}`, "unknown status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Import(ctx, []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// Validation failures write nothing.
	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestImportFile_MissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
