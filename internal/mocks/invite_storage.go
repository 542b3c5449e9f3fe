package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"
)

type MockInviteStorage struct {
	mu     sync.Mutex
	tokens []*model.InvitationToken
}

func NewMockInviteStorage() *MockInviteStorage {
	return &MockInviteStorage{}
}

func (m *MockInviteStorage) CreateToken(ctx context.Context) (*model.InvitationToken, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin {
		return nil, fmt.Errorf("only admin can create invitation tokens: %w", apperrors.ErrForbidden)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	token := &model.InvitationToken{
		ID:        strconv.Itoa(len(m.tokens) + 1),
		Token:     fmt.Sprintf("mock-invite-%d", len(m.tokens)+1),
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	m.tokens = append(m.tokens, token)
	return token, nil
}
