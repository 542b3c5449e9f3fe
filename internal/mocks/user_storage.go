package mocks

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
)

type MockUserStorage struct {
	mu     sync.Mutex
	users  map[string]*model.User // ключ - имя пользователя
	tokens map[string]bool        // пригласительный токен -> использован
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:  make(map[string]*model.User),
		tokens: make(map[string]bool),
	}
}

// AddToken регистрирует неиспользованный пригласительный токен
func (m *MockUserStorage) AddToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = false
}

func (m *MockUserStorage) RegisterUser(username, password, inviteToken string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperrors.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return nil, fmt.Errorf("user %s: %w", username, apperrors.ErrConflict)
	}

	isAdmin := len(m.users) == 0
	if !isAdmin {
		used, ok := m.tokens[inviteToken]
		if !ok || used {
			return nil, fmt.Errorf("token %q: %w", inviteToken, apperrors.ErrInvalidToken)
		}
		m.tokens[inviteToken] = true
	}

	user := &model.User{
		ID:       strconv.Itoa(len(m.users) + 1),
		Username: username,
		IsAdmin:  isAdmin,
	}
	m.users[username] = user
	return user, nil
}

func (m *MockUserStorage) LoginUser(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[username]
	if !ok {
		return "", fmt.Errorf("user %s not found: %w", username, apperrors.ErrBadCredentials)
	}

	return "mock-token-" + user.ID, nil
}

func (m *MockUserStorage) GetUserById(id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
}
