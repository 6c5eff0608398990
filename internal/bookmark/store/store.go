// Package store persists bookmarks in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/navigation"
)

const driverName = "sqlite"

// Store is a bookmark table keyed by book ID.
type Store struct {
	db  *sql.DB
	log *logging.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	if err := migrateUp(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &Store{db: db, log: logger.WithComponent("store")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the bookmarks of bookID in insertion order.
func (s *Store) Load(ctx context.Context, bookID string) ([]bookmark.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, created_at, title, href, progress, at_end, book_progress, external_id
		FROM bookmarks WHERE book_id = ? ORDER BY id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	defer rows.Close()

	var out []bookmark.Bookmark
	for rows.Next() {
		var (
			kind, title, href, externalID string
			created                       int64
			progress                      float64
			atEnd                         bool
			bookProgress                  sql.NullFloat64
		)
		if err := rows.Scan(&kind, &created, &title, &href, &progress, &atEnd, &bookProgress, &externalID); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		k, err := bookmark.ParseKind(kind)
		if err != nil {
			s.log.Warn("skipping bookmark with %v", err)
			continue
		}

		loc := navigation.AtProgress(navigation.Href(href), progress)
		if atEnd {
			loc = navigation.AtEnd(navigation.Href(href))
		}
		b := bookmark.Bookmark{
			Date:       time.Unix(0, created),
			Kind:       k,
			Title:      title,
			Locator:    loc,
			ExternalID: externalID,
		}
		if bookProgress.Valid {
			b.BookProgress = bookmark.SomeProgress(bookProgress.Float64)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Save inserts b.
func (s *Store) Save(ctx context.Context, bookID string, b bookmark.Bookmark) error {
	return insert(ctx, s.db, bookID, b)
}

// Delete removes one stored bookmark equal to b. It reports whether a row
// was removed.
func (s *Store) Delete(ctx context.Context, bookID string, b bookmark.Bookmark) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM bookmarks WHERE id = (
			SELECT id FROM bookmarks
			WHERE book_id = ? AND kind = ? AND created_at = ? AND title = ?
			  AND href = ? AND progress = ? AND at_end = ? AND external_id = ?
			ORDER BY id LIMIT 1)`,
		bookID, b.Kind.String(), b.Date.UnixNano(), b.Title,
		string(b.Locator.Href), locatorProgress(b.Locator), b.Locator.End, b.ExternalID)
	if err != nil {
		return false, fmt.Errorf("deleting bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReplaceLastRead swaps the stored last-read bookmark of bookID for b.
func (s *Store) ReplaceLastRead(ctx context.Context, bookID string, b bookmark.Bookmark) error {
	if b.Kind != bookmark.LastRead {
		return fmt.Errorf("store: replace last-read with %s bookmark", b.Kind)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE book_id = ? AND kind = ?`, bookID, bookmark.LastRead.String()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clearing last-read: %w", err)
	}
	if err := insert(ctx, tx, bookID, b); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, bookID string, b bookmark.Bookmark) error {
	var bookProgress sql.NullFloat64
	if b.BookProgress.Valid {
		bookProgress = sql.NullFloat64{Float64: b.BookProgress.Value, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO bookmarks
			(book_id, kind, created_at, title, href, progress, at_end, book_progress, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bookID, b.Kind.String(), b.Date.UnixNano(), b.Title,
		string(b.Locator.Href), locatorProgress(b.Locator), b.Locator.End, bookProgress, b.ExternalID)
	if err != nil {
		return fmt.Errorf("saving bookmark: %w", err)
	}
	return nil
}

func locatorProgress(l navigation.Locator) float64 {
	if l.End {
		return 0
	}
	return l.Progress
}
