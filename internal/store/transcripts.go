package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const transcriptColumns = "id, video_id, language, srt_url, txt_url, created_at"

// SaveTranscript records the artifacts of a (video, language) run. A repeated
// run for the same pair replaces the artifact locations and keeps the original id.
func (s *Store) SaveTranscript(ctx context.Context, t Transcript) (*Transcript, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	ctx = ensureContext(ctx)
	var saved *Transcript
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`INSERT INTO transcripts (id, video_id, language, srt_url, txt_url, created_at)
             VALUES (?, ?, ?, ?, ?, ?)
             ON CONFLICT (video_id, language) DO UPDATE SET
                 srt_url = excluded.srt_url,
                 txt_url = excluded.txt_url,
                 created_at = excluded.created_at
             RETURNING `+transcriptColumns,
			t.ID, t.VideoID, t.Language, t.SRTURL, nullableString(t.TXTURL), now())
		var err error
		saved, err = scanTranscript(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}
	return saved, nil
}

// ListTranscripts returns the transcripts of a video ordered by language.
func (s *Store) ListTranscripts(ctx context.Context, videoID string) ([]*Transcript, error) {
	return s.queryTranscripts(ctx,
		"SELECT "+transcriptColumns+" FROM transcripts WHERE video_id = ? ORDER BY language", videoID)
}

// TranscriptsMissingText returns up to limit transcripts that have no plain-text
// artifact yet, oldest first. A limit of zero or less returns all of them.
func (s *Store) TranscriptsMissingText(ctx context.Context, limit int) ([]*Transcript, error) {
	query := "SELECT " + transcriptColumns + " FROM transcripts WHERE txt_url IS NULL OR txt_url = '' ORDER BY created_at, id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryTranscripts(ctx, query)
}

// SetTranscriptText records the plain-text artifact location of a transcript.
func (s *Store) SetTranscriptText(ctx context.Context, id, txtURL string) error {
	res, err := s.execWithRetry(ctx, `UPDATE transcripts SET txt_url = ? WHERE id = ?`, nullableString(txtURL), id)
	if err != nil {
		return fmt.Errorf("set transcript text: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set transcript text: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set transcript text: transcript %q: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (s *Store) queryTranscripts(ctx context.Context, query string, args ...any) ([]*Transcript, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []*Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTranscript(scanner rowScanner) (*Transcript, error) {
	var (
		t          Transcript
		txt        sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&t.ID, &t.VideoID, &t.Language, &t.SRTURL, &txt, &createdRaw); err != nil {
		return nil, err
	}
	t.TXTURL = txt.String
	if created, err := parseTimeString(createdRaw); err == nil {
		t.CreatedAt = created
	}
	return &t, nil
}
