// internal/task/sql.go
//
// MySQL-backed Store, selected when database.type = "mysql".

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore persists tasks through a sqlx pool owned by the caller.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps db; the pool stays open until the caller closes it.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context) ([]Task, error) {
	const q = `
	    SELECT id, title, notes, done, created_at, updated_at
	    FROM   task
	    ORDER  BY id`
	var rows []Task
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return rows, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*Task, error) {
	const q = `
	    SELECT id, title, notes, done, created_at, updated_at
	    FROM   task
	    WHERE  id = ?
	    LIMIT  1`
	var t Task
	if err := s.db.GetContext(ctx, &t, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

func (s *SQLStore) Create(ctx context.Context, t *Task) error {
	const q = `
	    INSERT INTO task (title, notes, done, created_at, updated_at)
	    VALUES (?, ?, ?, NOW(), NOW())`
	res, err := s.db.ExecContext(ctx, q, t.Title, t.Notes, t.Done)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create task id: %w", err)
	}
	t.ID = id

	created, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (s *SQLStore) Update(ctx context.Context, t *Task) error {
	const q = `
	    UPDATE task
	    SET    title = ?, notes = ?, done = ?, updated_at = NOW()
	    WHERE  id = ?`
	res, err := s.db.ExecContext(ctx, q, t.Title, t.Notes, t.Done, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM task WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
