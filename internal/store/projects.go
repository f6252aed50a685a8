package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const projectColumns = "id, owner_id, name, status, total_videos, processed_videos, created_at, updated_at"

// CreateProject inserts a project. An empty id is replaced with a generated UUID.
func (s *Store) CreateProject(ctx context.Context, id, ownerID, name string) (*Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("create project: owner id is required")
	}
	ts := now()
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO projects (id, owner_id, name, status, total_videos, processed_videos, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, 0, ?, ?)`,
		id, ownerID, strings.TrimSpace(name), ProjectPending, ts, ts,
	); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject fetches a project by id. It returns nil, nil when no row matches.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects returns every project ordered by creation time.
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+projectColumns+" FROM projects ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// RecomputeProject marks the project COMPLETED with processed and total counts
// equal to its video count, but only when it has at least one video and every
// video is DONE. Otherwise nothing changes. The check and the write are one
// statement, so concurrent callers cannot observe a half-applied result.
func (s *Store) RecomputeProject(ctx context.Context, projectID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE projects
         SET status = ?,
             total_videos = (SELECT COUNT(1) FROM videos WHERE videos.project_id = projects.id),
             processed_videos = (SELECT COUNT(1) FROM videos WHERE videos.project_id = projects.id),
             updated_at = ?
         WHERE id = ?
           AND EXISTS (SELECT 1 FROM videos WHERE videos.project_id = projects.id)
           AND NOT EXISTS (SELECT 1 FROM videos WHERE videos.project_id = projects.id AND videos.status <> ?)`,
		ProjectCompleted, now(), projectID, VideoDone,
	)
	if err != nil {
		return false, fmt.Errorf("recompute project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recompute project rows: %w", err)
	}
	return affected > 0, nil
}

// VideoStatusCounts tallies the project's videos by status.
func (s *Store) VideoStatusCounts(ctx context.Context, projectID string) (StatusCounts, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM videos WHERE project_id = ? GROUP BY status`, projectID)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count videos: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status VideoStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case VideoPending:
			counts.Pending += n
		case VideoProcessing:
			counts.Processing += n
		case VideoDone:
			counts.Done += n
		}
	}
	return counts, rows.Err()
}

func scanProject(scanner rowScanner) (*Project, error) {
	var (
		p          Project
		status     string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&p.ID, &p.OwnerID, &p.Name, &status, &p.TotalVideos, &p.ProcessedVideos, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	p.Status = ProjectStatus(status)
	if created, err := parseTimeString(createdRaw); err == nil {
		p.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		p.UpdatedAt = updated
	}
	return &p, nil
}
