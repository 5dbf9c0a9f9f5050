package services

import (
	"context"
	"strings"
	"time"

	"taskdesk/internal/apperr"
	"taskdesk/internal/authz"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

type CommentService interface {
	Add(ctx context.Context, caller authz.Caller, taskID int64, body string) (*models.Comment, error)
	List(ctx context.Context, caller authz.Caller, taskID int64) ([]models.Comment, error)
}

type commentService struct {
	comments repositories.CommentRepository
	tasks    TaskService
}

func NewCommentService(comments repositories.CommentRepository, tasks TaskService) CommentService {
	return &commentService{comments: comments, tasks: tasks}
}

func (s *commentService) Add(ctx context.Context, caller authz.Caller, taskID int64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.BadRequest("comment body is required").WithDetails(map[string]string{"body": "is required"})
	}
	if _, err := s.tasks.GetByID(ctx, caller, taskID); err != nil {
		return nil, err
	}
	c := &models.Comment{TaskID: taskID, AuthorID: caller.ID, Body: body, CreatedAt: time.Now().UTC()}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) List(ctx context.Context, caller authz.Caller, taskID int64) ([]models.Comment, error) {
	if _, err := s.tasks.GetByID(ctx, caller, taskID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}
