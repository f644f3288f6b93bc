// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/readlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrBookNotFound is returned when a book lookup has no match.
var ErrBookNotFound = errors.New("book not found")

// Fixed-width UTC timestamps keep lexical and chronological order identical.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for reading logs and books.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reading_logs (
			id INTEGER PRIMARY KEY,
			read_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			words_read INTEGER NOT NULL,
			wpm REAL NOT NULL,
			book_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			progress REAL NOT NULL,
			last_read_at TEXT,
			archived INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_logs_read_at ON reading_logs(read_at);`,
		`CREATE INDEX IF NOT EXISTS idx_books_last_read_at ON books(last_read_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertLog stores a single reading session.
func (s *Store) InsertLog(ctx context.Context, entry model.ReadingLogEntry) (int64, error) {
	ids, err := s.InsertLogs(ctx, []model.ReadingLogEntry{entry})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// InsertLogs stores reading sessions in one transaction.
func (s *Store) InsertLogs(ctx context.Context, entries []model.ReadingLogEntry) ([]int64, error) {
	for _, entry := range entries {
		if err := validateLog(entry); err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reading_logs (read_at, duration_ms, words_read, wpm, book_id)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		var res sql.Result
		res, err = stmt.ExecContext(ctx,
			formatTime(entry.Date),
			entry.Duration.Milliseconds(),
			entry.WordsRead,
			entry.WordsPerMinute,
			entry.BookID,
		)
		if err != nil {
			return nil, err
		}
		var id int64
		id, err = res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListLogs returns all sessions ordered by date.
func (s *Store) ListLogs(ctx context.Context) ([]model.ReadingLogEntry, error) {
	return s.queryLogs(ctx, `SELECT id, read_at, duration_ms, words_read, wpm, book_id
		FROM reading_logs
		ORDER BY read_at ASC, id ASC`)
}

// ListLogsBetween returns sessions with start <= date < end ordered by date.
func (s *Store) ListLogsBetween(ctx context.Context, start, end time.Time) ([]model.ReadingLogEntry, error) {
	return s.queryLogs(ctx, `SELECT id, read_at, duration_ms, words_read, wpm, book_id
		FROM reading_logs
		WHERE read_at >= ? AND read_at < ?
		ORDER BY read_at ASC, id ASC`, formatTime(start), formatTime(end))
}

func (s *Store) queryLogs(ctx context.Context, query string, args ...any) ([]model.ReadingLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.ReadingLogEntry
	for rows.Next() {
		var entry model.ReadingLogEntry
		var readAt string
		var durationMs int64
		if err := rows.Scan(&entry.ID, &readAt, &durationMs, &entry.WordsRead, &entry.WordsPerMinute, &entry.BookID); err != nil {
			return nil, err
		}
		parsed, err := parseTime(readAt)
		if err != nil {
			return nil, err
		}
		entry.Date = parsed
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertBook returns the book stored for path, creating it when missing.
func (s *Store) UpsertBook(ctx context.Context, path, title string) (model.BookProgress, error) {
	if path == "" {
		return model.BookProgress{}, fmt.Errorf("book path is empty")
	}
	book, err := s.GetBookByPath(ctx, path)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return model.BookProgress{}, err
	}
	if title == "" {
		title = filepath.Base(path)
	}
	book = model.BookProgress{
		ID:    uuid.NewString(),
		Title: title,
		Path:  path,
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, path, progress, last_read_at, archived) VALUES (?, ?, ?, 0, NULL, 0)`,
		book.ID, book.Title, book.Path,
	); err != nil {
		return model.BookProgress{}, err
	}
	return book, nil
}

// GetBookByPath looks up a book by its source path.
func (s *Store) GetBookByPath(ctx context.Context, path string) (model.BookProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, path, progress, last_read_at, archived FROM books WHERE path = ?`, path)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookProgress{}, ErrBookNotFound
	}
	return book, err
}

// UpdateBookProgress records progress and the last read time for a book.
// An older readAt than the stored one leaves the last read time unchanged.
func (s *Store) UpdateBookProgress(ctx context.Context, id string, progress float64, readAt time.Time) error {
	if math.IsNaN(progress) || progress < 0 || progress > 1 {
		return fmt.Errorf("progress must be between 0 and 1, got %.3f", progress)
	}
	readAtText := formatTime(readAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET progress = ?,
			last_read_at = CASE WHEN last_read_at IS NULL OR last_read_at < ? THEN ? ELSE last_read_at END
		 WHERE id = ?`,
		progress, readAtText, readAtText, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ArchiveBook hides a book from active listings and stats.
func (s *Store) ArchiveBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE books SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ListBooks returns every book ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]model.BookProgress, error) {
	return s.queryBooks(ctx, `SELECT id, title, path, progress, last_read_at, archived
		FROM books
		ORDER BY title ASC`)
}

// ListActiveBooks returns non-archived books that have been read at least once.
func (s *Store) ListActiveBooks(ctx context.Context) ([]model.BookProgress, error) {
	return s.queryBooks(ctx, `SELECT id, title, path, progress, last_read_at, archived
		FROM books
		WHERE archived = 0 AND last_read_at IS NOT NULL
		ORDER BY last_read_at DESC`)
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]model.BookProgress, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var books []model.BookProgress
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// Reset deletes all sessions and books.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM reading_logs`, `DELETE FROM books`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
			return err
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (model.BookProgress, error) {
	var book model.BookProgress
	var lastRead sql.NullString
	var archived int
	if err := row.Scan(&book.ID, &book.Title, &book.Path, &book.Progress, &lastRead, &archived); err != nil {
		return model.BookProgress{}, err
	}
	if lastRead.Valid {
		parsed, err := parseTime(lastRead.String)
		if err != nil {
			return model.BookProgress{}, err
		}
		book.LastReadDate = &parsed
	}
	book.IsArchived = archived != 0
	return book, nil
}

func validateLog(entry model.ReadingLogEntry) error {
	if entry.Date.IsZero() {
		return fmt.Errorf("session date is required")
	}
	if entry.Duration < 0 {
		return fmt.Errorf("session duration must be >= 0")
	}
	if entry.WordsRead < 0 {
		return fmt.Errorf("words read must be >= 0")
	}
	if math.IsNaN(entry.WordsPerMinute) || math.IsInf(entry.WordsPerMinute, 0) {
		return fmt.Errorf("words per minute must be a finite number")
	}
	if entry.WordsPerMinute < 0 {
		return fmt.Errorf("words per minute must be >= 0")
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
