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
	"github.com/VitaminP8/termfeed/internal/media"
	"github.com/VitaminP8/termfeed/internal/policy"
)

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  map[string]*model.Post
	order  []string // id в порядке вставки - для стабильной сортировки ленты
	nextId int
	files  media.Store           // хранилище вложений (внедрение зависимости (DI))
	cmnts  *CommentMemoryStorage // для каскадного удаления комментариев
}

func NewPostMemoryStorage(files media.Store) *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:  make(map[string]*model.Post),
		nextId: 1,
		files:  files,
	}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, content, mediaFilename string) (*model.Post, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	post := &model.Post{
		ID:            id,
		AuthorID:      fmt.Sprint(actor.ID),
		Content:       content,
		MediaFilename: mediaFilename,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}

	s.posts[id] = post
	s.order = append(s.order, id)

	return post, nil
}

func (s *PostMemoryStorage) GetPostById(id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	return post, nil
}

func (s *PostMemoryStorage) GetAllPosts() ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLocked(""), nil
}

func (s *PostMemoryStorage) GetPostsByUser(userID string) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLocked(userID), nil
}

// sortedLocked возвращает посты по убыванию времени создания,
// при равном времени сохраняется порядок вставки (вызывать под мьютексом)
func (s *PostMemoryStorage) sortedLocked(authorID string) []*model.Post {
	var posts []*model.Post
	for _, id := range s.order {
		post := s.posts[id]
		if authorID != "" && post.AuthorID != authorID {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})

	return posts
}

func (s *PostMemoryStorage) UpdatePost(ctx context.Context, id, content string) (*model.Post, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("post content cannot be empty: %w", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, err := strconv.Atoi(post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID %s: %w", post.AuthorID, err)
	}

	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		return nil, fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	// изменяется только контент - автор и вложение неизменяемы
	post.Content = content
	return post, nil
}

func (s *PostMemoryStorage) DeletePostById(ctx context.Context, id string) error {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	s.mu.Lock()

	post, exists := s.posts[id]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("post with ID %s: %w", id, apperrors.ErrNotFound)
	}

	ownerID, err := strconv.Atoi(post.AuthorID)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid author ID %s: %w", post.AuthorID, err)
	}

	if !policy.CanMutate(actor.ID, uint(ownerID), actor.IsAdmin) {
		s.mu.Unlock()
		return fmt.Errorf("you are not the author of this post: %w", apperrors.ErrForbidden)
	}

	mediaFilename := post.MediaFilename
	delete(s.posts, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	// мьютекс отпускаем до каскада, чтобы не пересекаться с блокировкой комментариев
	s.mu.Unlock()

	if s.cmnts != nil {
		s.cmnts.deleteByPost(id)
	}

	if mediaFilename != "" && s.files != nil {
		// best-effort: отсутствие файла не считается ошибкой
		_ = s.files.Delete(mediaFilename)
	}

	return nil
}
