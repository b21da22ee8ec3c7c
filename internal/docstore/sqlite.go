package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SQLiteStore keeps documents as JSON text in the documents table.
type SQLiteStore struct {
	db       *sql.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewSQLiteStore publishes every write through notifier.
func NewSQLiteStore(db *sql.DB, notifier Notifier, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, notifier: notifier, logger: logger}
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (Snapshot, error) {
	var id, raw string
	if err := scanner.Scan(&id, &raw); err != nil {
		return Snapshot{}, err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Snapshot{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Snapshot{ID: id, Data: data}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get document: %w", err)
	}
	return snap, nil
}

func sqlValue(v any) any {
	// json_extract yields 1/0 for JSON booleans
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	args := []any{q.Collection}
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	if q.DocumentID != "" {
		sb.WriteString(` AND id = ?`)
		args = append(args, q.DocumentID)
	}
	for _, f := range q.Where {
		sb.WriteString(` AND json_extract(data, ?) = ?`)
		args = append(args, "$."+f.Field, sqlValue(f.Value))
	}
	if q.OrderBy != "" {
		sb.WriteString(` ORDER BY json_extract(data, ?)`)
		args = append(args, "$."+q.OrderBy)
		if q.Descending {
			sb.WriteString(` DESC, id DESC`)
		} else {
			sb.WriteString(` ASC, id ASC`)
		}
	} else {
		sb.WriteString(` ORDER BY id ASC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	doc, err := normalizeDocument(data)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	s.publish(ctx, collection, id)
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := applyFields(doc, fields); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`,
		string(updated), collection, id,
	); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.publish(ctx, collection, id)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		s.publish(ctx, collection, id)
	}
	return nil
}

func (s *SQLiteStore) Listen(ctx context.Context, q Query) (*Subscription, error) {
	return listen(ctx, s.notifier, q, s.Query, func(err error) {
		s.logger.Error("listener query", "collection", q.Collection, "error", err)
	})
}

// publish is best effort: a lost notification only delays listeners until
// the next write to the collection.
func (s *SQLiteStore) publish(ctx context.Context, collection, id string) {
	if err := s.notifier.Publish(context.WithoutCancel(ctx), Change{Collection: collection, ID: id}); err != nil {
		s.logger.Warn("publish change", "collection", collection, "id", id, "error", err)
	}
}
