package memory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/config"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

type UserMemoryStorage struct {
	mu        sync.Mutex
	users     map[string]*model.User // ключ - имя пользователя
	passwords map[string]string
	nextId    int
	invites   *InviteMemoryStorage // реестр пригласительных токенов (внедрение зависимости (DI))
}

func NewUserMemoryStorage(invites *InviteMemoryStorage) *UserMemoryStorage {
	return &UserMemoryStorage{
		users:     make(map[string]*model.User),
		passwords: make(map[string]string),
		nextId:    1,
		invites:   invites,
	}
}

func (s *UserMemoryStorage) RegisterUser(username, password, inviteToken string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	inviteToken = strings.TrimSpace(inviteToken)

	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.users[username]
	if exists {
		return nil, fmt.Errorf("user %s: %w", username, apperrors.ErrConflict)
	}

	// Первый пользователь становится админом, токен не нужен и не расходуется
	isAdmin := len(s.users) == 0
	if !isAdmin {
		err := s.invites.consumeToken(inviteToken)
		if err != nil {
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if !isAdmin {
			// регистрация сорвалась - возвращаем токен в оборот
			s.invites.releaseToken(inviteToken)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := strconv.Itoa(s.nextId)
	s.nextId++

	user := &model.User{
		ID:       id,
		Username: username,
		IsAdmin:  isAdmin,
	}

	s.users[username] = user
	s.passwords[username] = string(hashedPassword)

	return user, nil
}

func (s *UserMemoryStorage) LoginUser(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[username]
	if !exists {
		return "", fmt.Errorf("user %s not found: %w", username, apperrors.ErrBadCredentials)
	}

	hashedPassword, ok := s.passwords[username]
	if !ok {
		return "", fmt.Errorf("password for user %s not found: %w", username, apperrors.ErrBadCredentials)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return "", fmt.Errorf("password for user %s is incorrect: %w", username, apperrors.ErrBadCredentials)
	}

	// достаем из .env jwtSecret
	jwtSecret := config.GetEnvOrDefault("JWT_SECRET", "")
	if jwtSecret == "" {
		return "", errors.New("JWT_SECRET is not set in environment")
	}

	userIDInt, err := strconv.Atoi(user.ID)
	if err != nil {
		return "", fmt.Errorf("invalid user ID %s: %w", user.ID, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userIDInt,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(72 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *UserMemoryStorage) GetUserById(id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
}
