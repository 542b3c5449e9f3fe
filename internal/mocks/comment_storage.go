package mocks

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
)

type MockCommentStorage struct {
	mu          sync.Mutex
	comments    map[string]*model.Comment
	nextID      int
	postStorage post.PostStorage
}

func NewMockCommentStorage(postStorage post.PostStorage) *MockCommentStorage {
	return &MockCommentStorage{
		comments:    make(map[string]*model.Comment),
		nextID:      1,
		postStorage: postStorage,
	}
}

func (m *MockCommentStorage) CreateComment(ctx context.Context, postID, content string) (*model.Comment, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("reply cannot be empty: %w", apperrors.ErrValidation)
	}

	_, err = m.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := strconv.Itoa(m.nextID)
	m.nextID++

	comment := &model.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  fmt.Sprint(actor.ID),
		Content:   content,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	m.comments[id] = comment
	return comment, nil
}

func (m *MockCommentStorage) GetComments(postID string, limit, offset int) ([]*model.Comment, error) {
	_, err := m.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, apperrors.ErrNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var comments []*model.Comment
	for _, comment := range m.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
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

func (m *MockCommentStorage) DeleteCommentById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	comment, ok := m.comments[id]
	if !ok {
		return fmt.Errorf("comment with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, _ := strconv.Atoi(comment.AuthorID)
	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		return fmt.Errorf("you are not the author of this reply: %w", apperrors.ErrForbidden)
	}

	delete(m.comments, id)
	return nil
}
