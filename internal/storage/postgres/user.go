package postgres

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/models"
	"github.com/golang-jwt/jwt"

	"golang.org/x/crypto/bcrypt"
)

type UserPostgresStorage struct{}

func NewUserPostgresStorage() *UserPostgresStorage {
	return &UserPostgresStorage{}
}

// isUniqueViolation распознает нарушение уникального индекса
// (postgres: "duplicate key value violates unique constraint",
// sqlite в тестах: "UNIQUE constraint failed")
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

func (s *UserPostgresStorage) RegisterUser(username, password, inviteToken string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	inviteToken = strings.TrimSpace(inviteToken)

	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperrors.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// списание токена и создание пользователя - одна транзакция:
	// либо происходит и то и другое, либо ничего
	tx := DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	// проверка - существует ли такой пользователь
	var existUser models.User
	err = tx.Where("username = ?", username).First(&existUser).Error
	if err == nil {
		tx.Rollback()
		return nil, fmt.Errorf("user with username %s: %w", username, apperrors.ErrConflict)
	}

	var count int
	err = tx.Model(&models.User{}).Count(&count).Error
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("could not count users: %w", err)
	}

	// Первый пользователь становится админом, токен не нужен и не расходуется
	isAdmin := count == 0
	if !isAdmin {
		res := tx.Model(&models.InvitationToken{}).
			Where("token = ? AND is_used = ?", inviteToken, false).
			Update("is_used", true)
		if res.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("could not claim invitation token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return nil, fmt.Errorf("token %q: %w", inviteToken, apperrors.ErrInvalidToken)
		}
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		IsAdmin:  isAdmin,
	}

	err = tx.Create(user).Error
	if err != nil {
		tx.Rollback()
		// параллельная регистрация того же имени успела первой -
		// проверку выше она прошла, ловим нарушение уникального индекса
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user with username %s: %w", username, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = tx.Commit().Error
	if err != nil {
		return nil, fmt.Errorf("could not commit registration: %w", err)
	}

	return &model.User{
		ID:       fmt.Sprint(user.ID),
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}

func (s *UserPostgresStorage) LoginUser(username, password string) (string, error) {
	// проверка - существует ли такой пользователь
	var user models.User
	err := DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return "", fmt.Errorf("user with username %s not found: %w", username, apperrors.ErrBadCredentials)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		return "", fmt.Errorf("invalid password or username: %w", apperrors.ErrBadCredentials)
	}

	// достаем из .env jwtSecret
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", errors.New("JWT_SECRET is not set in environment")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
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

func (s *UserPostgresStorage) GetUserById(id string) (*model.User, error) {
	var user models.User
	err := DB.First(&user, id).Error
	if err != nil {
		return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
	}

	return &model.User{
		ID:       fmt.Sprint(user.ID),
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}
