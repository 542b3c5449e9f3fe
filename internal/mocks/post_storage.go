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
	"github.com/VitaminP8/termfeed/internal/media"
	"github.com/VitaminP8/termfeed/internal/policy"
)

type MockPostStorage struct {
	mu    sync.Mutex
	posts map[string]*model.Post
	order []string
}

func NewMockPostStorage() *MockPostStorage {
	return &MockPostStorage{
		posts: make(map[string]*model.Post),
	}
}

func (m *MockPostStorage) CreatePost(ctx context.Context, content, mediaFilename string) (*model.Post, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("post content cannot be empty: %w", apperrors.ErrValidation)
	}

	if mediaFilename != "" && !media.AllowedFilename(mediaFilename) {
		mediaFilename = ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := strconv.Itoa(len(m.order) + 1)
	post := &model.Post{
		ID:            id,
		AuthorID:      fmt.Sprint(actor.ID),
		Content:       content,
		MediaFilename: mediaFilename,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}
	m.posts[id] = post
	m.order = append(m.order, id)
	return post, nil
}

func (m *MockPostStorage) GetPostById(id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}
	return post, nil
}

func (m *MockPostStorage) GetAllPosts() ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []*model.Post
	for _, id := range m.order {
		if post, ok := m.posts[id]; ok {
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})
	return posts, nil
}

func (m *MockPostStorage) GetPostsByUser(userID string) ([]*model.Post, error) {
	all, _ := m.GetAllPosts()

	var posts []*model.Post
	for _, post := range all {
		if post.AuthorID == userID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (m *MockPostStorage) UpdatePost(ctx context.Context, id, content string) (*model.Post, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("post content cannot be empty: %w", apperrors.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, _ := strconv.Atoi(post.AuthorID)
	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		return nil, fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	post.Content = content
	return post, nil
}

func (m *MockPostStorage) DeletePostById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, _ := strconv.Atoi(post.AuthorID)
	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		return fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	delete(m.posts, id)
	return nil
}
