package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskdesk/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error)
	CountByTasks(ctx context.Context, taskIDs []int64) (int, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	q := r.db.Rebind(`INSERT INTO comments (task_id, author_id, body, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, q, c.TaskID, c.AuthorID, c.Body, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("creating comment on task %d: %w", c.TaskID, err)
	}
	return nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	q := r.db.Rebind(`SELECT id, task_id, author_id, body, created_at FROM comments WHERE task_id = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &out, q, taskID); err != nil {
		return nil, fmt.Errorf("listing comments of task %d: %w", taskID, err)
	}
	return out, nil
}

func (r *commentRepository) CountByTasks(ctx context.Context, taskIDs []int64) (int, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM comments WHERE task_id IN (?)`, taskIDs)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}
