package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/ganttloom/internal/model"
)

// Snapshot is the JSON import format: one project and its tasks.
type Snapshot struct {
	Project model.Project `json:"project"`
	Tasks   []model.Task  `json:"tasks"`
}

// ImportFile reads a snapshot JSON file and persists it, returning the
// stored project ID.
func (s *Store) ImportFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	return s.Import(ctx, data)
}

// Import validates and persists a snapshot. Shape problems are reported
// before any write happens.
func (s *Store) Import(ctx context.Context, data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("snapshot is not valid JSON")
	}
	if !gjson.GetBytes(data, "project").Exists() {
		return "", fmt.Errorf("snapshot missing \"project\" object")
	}
	if !gjson.GetBytes(data, "tasks").IsArray() {
		return "", fmt.Errorf("snapshot missing \"tasks\" array")
	}
	if name := gjson.GetBytes(data, "project.name"); name.String() == "" {
		return "", fmt.Errorf("snapshot project has no name")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return "", fmt.Errorf("parse snapshot: %w", err)
	}

	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if !t.Status.Valid() {
			return "", fmt.Errorf("task %s: unknown status %q", t.ID, t.Status)
		}
	}

	projectID, err := s.SaveProject(ctx, &snap.Project)
	if err != nil {
		return "", err
	}
	for i := range snap.Tasks {
		if _, err := s.SaveTask(ctx, projectID, &snap.Tasks[i]); err != nil {
			return "", err
		}
	}
	return projectID, nil
}
