package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"

	"github.com/google/uuid"
)

type inviteEntry struct {
	id        string
	token     string
	isUsed    bool
	createdBy uint
	createdAt string
}

type InviteMemoryStorage struct {
	mu     sync.Mutex
	tokens map[string]*inviteEntry // ключ - сам токен
	nextId int
}

func NewInviteMemoryStorage() *InviteMemoryStorage {
	return &InviteMemoryStorage{
		tokens: make(map[string]*inviteEntry),
		nextId: 1,
	}
}

func (s *InviteMemoryStorage) CreateToken(ctx context.Context) (*model.InvitationToken, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	if !actor.IsAdmin {
		return nil, fmt.Errorf("only admin can create invitation tokens: %w", apperrors.ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	entry := &inviteEntry{
		id:        id,
		token:     uuid.NewString(),
		createdBy: actor.ID,
		createdAt: time.Now().Format(time.RFC3339),
	}
	s.tokens[entry.token] = entry

	return &model.InvitationToken{
		ID:        entry.id,
		Token:     entry.token,
		CreatedAt: entry.createdAt,
	}, nil
}

// consumeToken атомарно помечает токен использованным (под мьютексом хранилища).
// Вызывается хранилищем пользователей при регистрации.
func (s *InviteMemoryStorage) consumeToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok || entry.isUsed {
		return fmt.Errorf("token %q: %w", token, apperrors.ErrInvalidToken)
	}

	entry.isUsed = true
	return nil
}

// releaseToken откатывает пометку, если регистрация не состоялась
func (s *InviteMemoryStorage) releaseToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if ok {
		entry.isUsed = false
	}
}
