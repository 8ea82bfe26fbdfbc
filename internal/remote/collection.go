// Package remote is the per-user remote task collection: one document per
// task, keyed by id, under the authenticated user's namespace. Backed by
// SQLite so a single server file serves every account.
package remote

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type Collection struct {
	db *sql.DB
}

func NewCollection(db *sql.DB) *Collection {
	return &Collection{db: db}
}

const upsertSQL = `
INSERT INTO tasks (user_id, id, title, date, notes, attachment, attachment_name,
                   creation_date, completion_date, completed, priority, reference_links)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, id) DO UPDATE SET
    title = excluded.title,
    date = excluded.date,
    notes = excluded.notes,
    attachment = excluded.attachment,
    attachment_name = excluded.attachment_name,
    creation_date = excluded.creation_date,
    completion_date = excluded.completion_date,
    completed = excluded.completed,
    priority = excluded.priority,
    reference_links = excluded.reference_links`

// Upsert writes one task document. Optional fields are stored as explicit
// NULL, never omitted.
func (c *Collection) Upsert(ctx context.Context, userID string, t model.Task) error {
	links, err := json.Marshal(t.ReferenceLinks)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, upsertSQL,
		userID,
		string(t.ID),
		t.Title,
		nullTime(t.Date),
		nullString(t.Notes),
		nullString(t.Attachment),
		nullString(t.AttachmentName),
		t.CreationDate.Format(time.RFC3339Nano),
		nullTime(t.CompletionDate),
		boolToInt(t.Completed),
		string(t.Priority),
		string(links),
	)
	return err
}

// PutAll upserts every task in one transaction. It is idempotent; unchanged
// documents are rewritten in place.
func (c *Collection) PutAll(ctx context.Context, userID string, tasks []model.Task) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tasks {
		links, err := json.Marshal(t.ReferenceLinks)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			userID,
			string(t.ID),
			t.Title,
			nullTime(t.Date),
			nullString(t.Notes),
			nullString(t.Attachment),
			nullString(t.AttachmentName),
			t.CreationDate.Format(time.RFC3339Nano),
			nullTime(t.CompletionDate),
			boolToInt(t.Completed),
			string(t.Priority),
			string(links),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (c *Collection) Delete(ctx context.Context, userID string, id model.TaskID) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, string(id))
	return err
}

// FetchAll returns every task document for the user, creation date ascending.
func (c *Collection) FetchAll(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, date, notes, attachment, attachment_name,
		        creation_date, completion_date, completed, priority, reference_links
		   FROM tasks WHERE user_id = ? ORDER BY creation_date ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		var (
			t              model.Task
			id             string
			date           sql.NullString
			notes          sql.NullString
			attachment     sql.NullString
			attachmentName sql.NullString
			creation       string
			completion     sql.NullString
			completed      int
			priority       string
			links          string
		)
		if err := rows.Scan(&id, &t.Title, &date, &notes, &attachment, &attachmentName,
			&creation, &completion, &completed, &priority, &links); err != nil {
			return nil, err
		}

		t.ID = model.TaskID(id)
		t.Completed = completed != 0
		t.Priority = model.Priority(priority)
		if !t.Priority.Valid() {
			t.Priority = model.PriorityMedium
		}
		if t.CreationDate, err = parseStoredTime(creation); err != nil {
			return nil, fmt.Errorf("task %s: bad creation_date: %w", id, err)
		}
		if t.Date, err = parseNullTime(date); err != nil {
			return nil, fmt.Errorf("task %s: bad date: %w", id, err)
		}
		if t.CompletionDate, err = parseNullTime(completion); err != nil {
			return nil, fmt.Errorf("task %s: bad completion_date: %w", id, err)
		}
		t.Notes = fromNullString(notes)
		t.Attachment = fromNullString(attachment)
		t.AttachmentName = fromNullString(attachmentName)
		if err := json.Unmarshal([]byte(links), &t.ReferenceLinks); err != nil {
			t.ReferenceLinks = []string{}
		}

		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseStoredTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseStoredTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
