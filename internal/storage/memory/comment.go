package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/internal/policy"
	"github.com/VitaminP8/termfeed/internal/post"
	"github.com/VitaminP8/termfeed/internal/subscription"
)

type CommentMemoryStorage struct {
	mu          sync.Mutex
	comments    map[string]*model.Comment
	nextID      int
	postStorage post.PostStorage // Хранилище постов (внедрение зависимости (DI))
	manager     subscription.Manager
}

func NewCommentMemoryStorage(postStorage post.PostStorage, manager subscription.Manager) *CommentMemoryStorage {
	s := &CommentMemoryStorage{
		comments:    make(map[string]*model.Comment),
		nextID:      1,
		postStorage: postStorage,
		manager:     manager,
	}

	// если посты тоже in-memory - подключаем каскадное удаление комментариев
	if ps, ok := postStorage.(*PostMemoryStorage); ok {
		ps.cmnts = s
	}

	return s
}

func (s *CommentMemoryStorage) CreateComment(ctx context.Context, postID, content string) (*model.Comment, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("reply cannot be empty: %w", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	comment := &model.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  fmt.Sprint(actor.ID),
		Content:   content,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	s.comments[id] = comment

	if s.manager != nil {
		s.manager.Publish(postID, comment)
	}

	return comment, nil
}

func (s *CommentMemoryStorage) GetComments(postID string, limit, offset int) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	var comments []*model.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}

	// Сортируем по CreatedAt (по возрастанию) (и по ID в случае одинакового времени создания)
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt == comments[j].CreatedAt {
			return comments[i].ID < comments[j].ID // Дополнительная сортировка по ID
		}
		return comments[i].CreatedAt < comments[j].CreatedAt
	})

	if offset > 0 {
		if offset >= len(comments) {
			return []*model.Comment{}, nil
		}
		comments = comments[offset:]
	}

	if limit > 0 && limit < len(comments) {
		comments = comments[:limit]
	}

	return comments, nil
}

func (s *CommentMemoryStorage) DeleteCommentById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[id]
	if !exists {
		return fmt.Errorf("comment with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, err := strconv.Atoi(comment.AuthorID)
	if err != nil {
		return fmt.Errorf("invalid author ID %s: %w", comment.AuthorID, err)
	}

	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		return fmt.Errorf("you are not the author of this reply: %w", apperrors.ErrForbidden)
	}

	delete(s.comments, id)
	return nil
}

// deleteByPost удаляет все комментарии поста (каскад при удалении поста)
func (s *CommentMemoryStorage) deleteByPost(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, comment := range s.comments {
		if comment.PostID == postID {
			delete(s.comments, id)
		}
	}
}
