package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const videoColumns = "id, project_id, title, source_location, status, last_heartbeat, created_at, updated_at"

// ErrProjectMissing is returned when a video references an unknown project.
var ErrProjectMissing = errors.New("project does not exist")

// CreateVideo inserts a PENDING video, bumps the project's total count, and
// returns a COMPLETED project to PENDING since it now has unfinished work.
func (s *Store) CreateVideo(ctx context.Context, id, projectID, title, sourceLocation string) (*Video, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = ensureContext(ctx)
	ts := now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET total_videos = total_videos + 1, status = ?, updated_at = ? WHERE id = ?`,
			ProjectPending, ts, projectID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrProjectMissing
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO videos (id, project_id, title, source_location, status, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, projectID, strings.TrimSpace(title), nullableString(strings.TrimSpace(sourceLocation)), VideoPending, ts, ts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return s.GetVideo(ctx, id)
}

// GetVideo fetches a video by id. It returns nil, nil when no row matches.
func (s *Store) GetVideo(ctx context.Context, id string) (*Video, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// ListVideos returns the project's videos, optionally filtered by status.
func (s *Store) ListVideos(ctx context.Context, projectID string, statuses ...VideoStatus) ([]*Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE project_id = ?"
	args := []any{projectID}
	if len(statuses) > 0 {
		query += " AND status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY created_at, id"
	return s.queryVideos(ctx, query, args...)
}

// VideosByStatus returns every video in the given status across projects.
func (s *Store) VideosByStatus(ctx context.Context, status VideoStatus) ([]*Video, error) {
	return s.queryVideos(ctx, "SELECT "+videoColumns+" FROM videos WHERE status = ? ORDER BY updated_at, id", status)
}

func (s *Store) queryVideos(ctx context.Context, query string, args ...any) ([]*Video, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// MarkProcessing moves a video to PROCESSING, records the source it is being
// processed from, and stamps the first heartbeat.
func (s *Store) MarkProcessing(ctx context.Context, id, sourceLocation string) error {
	ts := now()
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET status = ?, source_location = COALESCE(?, source_location), last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		VideoProcessing, nullableString(sourceLocation), ts, ts, id)
	if err != nil {
		return fmt.Errorf("mark video processing: %w", err)
	}
	return requireRow(res, "mark video processing", id)
}

// SetVideoStatus writes a terminal or reset status and clears the heartbeat.
func (s *Store) SetVideoStatus(ctx context.Context, id string, status VideoStatus) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET status = ?, last_heartbeat = NULL, updated_at = ? WHERE id = ?`,
		status, now(), id)
	if err != nil {
		return fmt.Errorf("set video status: %w", err)
	}
	return requireRow(res, "set video status", id)
}

// UpdateHeartbeat refreshes the heartbeat of a PROCESSING video.
func (s *Store) UpdateHeartbeat(ctx context.Context, id string) error {
	ts := now()
	if _, err := s.execWithRetry(ctx,
		`UPDATE videos SET last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
		ts, ts, id, VideoProcessing,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns PROCESSING videos whose heartbeat is older than
// cutoff to PENDING. Videos listed in active are owned by a live task and left alone.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time, active ...string) (int64, error) {
	query := `UPDATE videos SET status = ?, last_heartbeat = NULL, updated_at = ?
        WHERE status = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?)`
	args := []any{VideoPending, now(), VideoProcessing, formatTime(cutoff)}
	if len(active) > 0 {
		query += " AND id NOT IN (" + makePlaceholders(len(active)) + ")"
		for _, id := range active {
			args = append(args, id)
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale videos: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing returns every PROCESSING video to PENDING. It is used at
// daemon start, when no task can still own one.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET status = ?, last_heartbeat = NULL, updated_at = ? WHERE status = ?`,
		VideoPending, now(), VideoProcessing)
	if err != nil {
		return 0, fmt.Errorf("reset stuck videos: %w", err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: video %q: %w", op, id, sql.ErrNoRows)
	}
	return nil
}

func scanVideo(scanner rowScanner) (*Video, error) {
	var (
		v            Video
		source       sql.NullString
		status       string
		heartbeatRaw sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&v.ID, &v.ProjectID, &v.Title, &source, &status, &heartbeatRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	v.SourceLocation = source.String
	v.Status = VideoStatus(status)
	if heartbeatRaw.Valid {
		if hb, err := parseTimeString(heartbeatRaw.String); err == nil {
			v.LastHeartbeat = &hb
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		v.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		v.UpdatedAt = updated
	}
	return &v, nil
}
