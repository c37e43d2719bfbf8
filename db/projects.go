// ABOUTME: Project database operations
// ABOUTME: Creates, lists and looks up outreach projects by id or name
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadgen/models"
)

func CreateProject(db *sql.DB, project *models.Project) error {
	project.ID = uuid.New().String()
	project.CreatedAt = time.Now()

	for _, ch := range project.Channels {
		if !ch.Valid() {
			return fmt.Errorf("unknown channel %q", ch)
		}
	}

	_, err := db.Exec(`
		INSERT INTO projects (id, name, channels, created_at)
		VALUES (?, ?, ?, ?)
	`, project.ID, project.Name, joinChannels(project.Channels), project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject looks a project up by id, then by exact name. It returns nil
// when neither matches.
func GetProject(db *sql.DB, idOrName string) (*models.Project, error) {
	row := db.QueryRow(`
		SELECT id, name, channels, created_at
		FROM projects WHERE id = ? OR name = ?
		ORDER BY id = ? DESC
		LIMIT 1
	`, idOrName, idOrName, idOrName)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func ListProjects(db *sql.DB) ([]models.Project, error) {
	rows, err := db.Query(`
		SELECT id, name, channels, created_at
		FROM projects ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		project  models.Project
		channels string
	)
	if err := s.Scan(&project.ID, &project.Name, &channels, &project.CreatedAt); err != nil {
		return nil, err
	}
	project.Channels = splitChannels(channels)
	return &project, nil
}

func joinChannels(channels []models.Channel) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = string(ch)
	}
	return strings.Join(parts, ",")
}

func splitChannels(s string) []models.Channel {
	var channels []models.Channel
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			channels = append(channels, models.Channel(part))
		}
	}
	return channels
}
