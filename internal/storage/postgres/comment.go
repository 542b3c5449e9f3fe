package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/internal/policy"
	"github.com/VitaminP8/termfeed/internal/subscription"
	"github.com/VitaminP8/termfeed/models"
)

type CommentPostgresStorage struct {
	manager subscription.Manager
}

func NewCommentPostgresStorage(manager subscription.Manager) *CommentPostgresStorage {
	return &CommentPostgresStorage{manager: manager}
}

func convertComment(comment *models.Comment) *model.Comment {
	return &model.Comment{
		ID:        fmt.Sprint(comment.ID),
		PostID:    fmt.Sprint(comment.PostID),
		AuthorID:  fmt.Sprint(comment.UserID),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

func (s *CommentPostgresStorage) CreateComment(ctx context.Context, postID, content string) (*model.Comment, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("reply cannot be empty: %w", apperrors.ErrValidation)
	}

	postIDint, err := strconv.Atoi(postID)
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}
	postIDUint := uint(postIDint)

	var post models.Post
	err = DB.First(&post, postIDUint).Error
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	comment := &models.Comment{
		PostID:  postIDUint,
		UserID:  actor.ID,
		Content: content,
	}

	err = DB.Create(comment).Error
	if err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	result := convertComment(comment)

	if s.manager != nil {
		s.manager.Publish(postID, result)
	}

	return result, nil
}

func (s *CommentPostgresStorage) GetComments(postID string, limit, offset int) ([]*model.Comment, error) {
	var post models.Post
	err := DB.First(&post, postID).Error
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	if limit <= 0 {
		limit = -1 // без ограничения
	}

	var comments []models.Comment
	err = DB.Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}

	var results []*model.Comment
	for i := range comments {
		results = append(results, convertComment(&comments[i]))
	}

	return results, nil
}

func (s *CommentPostgresStorage) DeleteCommentById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	var comment models.Comment
	err = DB.First(&comment, id).Error
	if err != nil {
		return fmt.Errorf("comment with ID %s: %w", id, apperrors.ErrNotFound)
	}

	if !policy.CanMutate(actor.ID, comment.UserID, actor.IsAdmin) {
		return fmt.Errorf("you are not the author of this reply: %w", apperrors.ErrForbidden)
	}

	err = DB.Delete(&comment).Error
	if err != nil {
		return fmt.Errorf("could not delete comment: %w", err)
	}

	return nil
}
