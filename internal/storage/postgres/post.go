package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/internal/media"
	"github.com/VitaminP8/termfeed/internal/policy"
	"github.com/VitaminP8/termfeed/models"
)

type PostPostgresStorage struct {
	files media.Store // хранилище вложений (внедрение зависимости (DI))
}

func NewPostPostgresStorage(files media.Store) *PostPostgresStorage {
	return &PostPostgresStorage{files: files}
}

func convertPost(post *models.Post) *model.Post {
	return &model.Post{
		ID:            fmt.Sprint(post.ID),
		AuthorID:      fmt.Sprint(post.UserID),
		Content:       post.Content,
		MediaFilename: post.MediaFilename,
		CreatedAt:     post.CreatedAt.Format(time.RFC3339),
	}
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, content, mediaFilename string) (*model.Post, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("post content cannot be empty: %w", apperrors.ErrValidation)
	}

	// недопустимое расширение - не ошибка, пост создается без вложения
	if mediaFilename != "" && !media.AllowedFilename(mediaFilename) {
		mediaFilename = ""
	}

	post := &models.Post{
		Content:       content,
		MediaFilename: mediaFilename,
		UserID:        actor.ID,
	}

	err = DB.Create(post).Error
	if err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	return convertPost(post), nil
}

func (s *PostPostgresStorage) GetPostById(id string) (*model.Post, error) {
	var post models.Post
	err := DB.First(&post, id).Error
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	return convertPost(&post), nil
}

func (s *PostPostgresStorage) GetAllPosts() ([]*model.Post, error) {
	var posts []models.Post
	// свежие посты первыми, при равном времени - порядок вставки
	err := DB.Order("created_at DESC, id ASC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}

	var results []*model.Post
	for i := range posts {
		results = append(results, convertPost(&posts[i]))
	}

	return results, nil
}

func (s *PostPostgresStorage) GetPostsByUser(userID string) ([]*model.Post, error) {
	var posts []models.Post
	err := DB.Where("user_id = ?", userID).Order("created_at DESC, id ASC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts of user %s: %w", userID, err)
	}

	var results []*model.Post
	for i := range posts {
		results = append(results, convertPost(&posts[i]))
	}

	return results, nil
}

func (s *PostPostgresStorage) UpdatePost(ctx context.Context, id, content string) (*model.Post, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("post content cannot be empty: %w", apperrors.ErrValidation)
	}

	var post models.Post
	err = DB.First(&post, id).Error
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	if !policy.CanMutate(actor.ID, post.UserID, actor.IsAdmin) {
		return nil, fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	// изменяется только контент - автор и вложение неизменяемы
	err = DB.Model(&post).Update("content", content).Error
	if err != nil {
		return nil, fmt.Errorf("could not update post: %w", err)
	}

	post.Content = content
	return convertPost(&post), nil
}

func (s *PostPostgresStorage) DeletePostById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	var post models.Post
	err = DB.First(&post, id).Error
	if err != nil {
		return fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	if !policy.CanMutate(actor.ID, post.UserID, actor.IsAdmin) {
		return fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	// комментарии и пост удаляются одной транзакцией:
	// не бывает состояния, когда комментарии пережили удаленный пост
	tx := DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	err = tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete comments of post %s: %w", id, err)
	}

	err = tx.Delete(&post).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete post: %w", err)
	}

	err = tx.Commit().Error
	if err != nil {
		return fmt.Errorf("could not commit post deletion: %w", err)
	}

	if post.MediaFilename != "" && s.files != nil {
		// best-effort: отсутствие файла не считается ошибкой
		_ = s.files.Delete(post.MediaFilename)
	}

	return nil
}
