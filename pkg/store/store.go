package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// ErrNotFound is returned when no transcript has the requested ID.
var ErrNotFound = errors.New("transcript not found")

// Store saves and loads transcripts. Implementations are safe for
// concurrent use.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Save stores t under a new random ID and returns it.
	Save(ctx context.Context, t *parser.Transcript) (string, error)

	// Put stores t under id, replacing any transcript already there. Readers
	// see either the old or the new transcript, never a mix.
	Put(ctx context.Context, id string, t *parser.Transcript) error

	// Load returns the transcript stored under id, or ErrNotFound.
	Load(ctx context.Context, id string) (*parser.Transcript, error)

	// List returns a summary of every stored transcript, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the transcript stored under id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// Summary describes a stored transcript without its records.
type Summary struct {
	ID        string    `db:"id" json:"id"`
	Source    string    `db:"source" json:"source"`
	Messages  int       `db:"messages" json:"messages"`
	Notices   int       `db:"notices" json:"notices"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SQLite is a Store backed by an SQLite database file.
type SQLite struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ Store = (*SQLite)(nil)

// Open connects to the database at path, creating and migrating it as
// needed.
func Open(path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "store")

	db, err := connect(path, logger)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IDForPath returns a stable transcript ID for a file, so repeated imports of
// the same export replace each other.
func IDForPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Save stores t under a new random ID.
func (s *SQLite) Save(ctx context.Context, t *parser.Transcript) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, id, t); err != nil {
		return "", err
	}
	return id, nil
}

type transcriptRow struct {
	ID        string    `db:"id"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type recordRow struct {
	TranscriptID string `db:"transcript_id"`
	Seq          int    `db:"seq"`
	Type         string `db:"type"`
	Date         string `db:"date"`
	Time         string `db:"time"`
	Sender       string `db:"sender"`
	Content      string `db:"content"`
	IsMedia      bool   `db:"is_media"`
	IsDeleted    bool   `db:"is_deleted"`
	IsEdited     bool   `db:"is_edited"`
}

func toRow(id string, seq int, r parser.Record) recordRow {
	row := recordRow{TranscriptID: id, Seq: seq, Type: string(r.Type())}
	switch v := r.(type) {
	case *parser.UserMessage:
		row.Date = v.Date
		row.Time = v.Time
		row.Sender = v.Sender
		row.Content = v.Content
		row.IsMedia = v.IsMedia
		row.IsDeleted = v.IsDeleted
		row.IsEdited = v.IsEdited
	case *parser.SystemNotice:
		row.Date = v.Date
		row.Time = v.Timestamp
		row.Content = v.Content
	}
	return row
}

func (row recordRow) record() parser.Record {
	if row.Type == string(parser.RecordTypeSystem) {
		return &parser.SystemNotice{Date: row.Date, Timestamp: row.Time, Content: row.Content}
	}
	return &parser.UserMessage{
		Date:      row.Date,
		Time:      row.Time,
		Sender:    row.Sender,
		Content:   row.Content,
		IsMedia:   row.IsMedia,
		IsDeleted: row.IsDeleted,
		IsEdited:  row.IsEdited,
	}
}

// Put stores t under id in a single transaction. Perspective flags are not
// persisted; they are reapplied when a transcript is viewed.
func (s *SQLite) Put(ctx context.Context, id string, t *parser.Transcript) error {
	if id == "" {
		return fmt.Errorf("transcript id must not be empty")
	}
	if t == nil {
		return fmt.Errorf("cannot store nil transcript")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
        INSERT INTO transcripts (id, source, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at;
    `, id, t.Source, now, now)
	if err != nil {
		return fmt.Errorf("failed to save transcript %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE transcript_id = ?;`, id); err != nil {
		return fmt.Errorf("failed to clear records of transcript %s: %w", id, err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
        INSERT INTO records (transcript_id, seq, type, date, time, sender, content, is_media, is_deleted, is_edited)
        VALUES (:transcript_id, :seq, :type, :date, :time, :sender, :content, :is_media, :is_deleted, :is_edited);
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range t.Records {
		if _, err := stmt.ExecContext(ctx, toRow(id, i, r)); err != nil {
			return fmt.Errorf("failed to save record %d of transcript %s: %w", i, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript %s: %w", id, err)
	}

	s.logger.DebugContext(ctx, "Transcript stored", "id", id, "source", t.Source, "records", len(t.Records))
	return nil
}

// Load rebuilds the transcript stored under id. Participants are recomputed
// from the records; Stats is nil.
func (s *SQLite) Load(ctx context.Context, id string) (*parser.Transcript, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tr transcriptRow
	err = tx.GetContext(ctx, &tr, `SELECT id, source, created_at, updated_at FROM transcripts WHERE id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript %s: %w", id, err)
	}

	var rows []recordRow
	err = tx.SelectContext(ctx, &rows, `
        SELECT transcript_id, seq, type, date, time, sender, content, is_media, is_deleted, is_edited
        FROM records WHERE transcript_id = ? ORDER BY seq;
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of transcript %s: %w", id, err)
	}

	records := make([]parser.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}

	return &parser.Transcript{
		Source:       tr.Source,
		Records:      records,
		Participants: parser.Participants(records),
	}, nil
}

// List returns summaries of all stored transcripts, most recently updated
// first.
func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	summaries := []Summary{}
	err := s.db.SelectContext(ctx, &summaries, `
        SELECT t.id, t.source, t.created_at, t.updated_at,
            (SELECT COUNT(*) FROM records r WHERE r.transcript_id = t.id AND r.type = 'user') AS messages,
            (SELECT COUNT(*) FROM records r WHERE r.transcript_id = t.id AND r.type = 'system') AS notices
        FROM transcripts t
        ORDER BY t.updated_at DESC, t.id;
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return summaries, nil
}

// Delete removes a transcript and its records.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE transcript_id = ?;`, id); err != nil {
		return fmt.Errorf("failed to delete records of transcript %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of transcript %s: %w", id, err)
	}
	return nil
}
