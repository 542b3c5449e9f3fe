package memory

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Создает контекст с актором
func createActorContext(userID uint, isAdmin bool) context.Context {
	ctx := context.Background()
	return auth.WithActor(ctx, auth.Actor{ID: userID, IsAdmin: isAdmin})
}

// newUserStorage собирает хранилище пользователей вместе с реестром токенов
func newUserStorage() (*UserMemoryStorage, *InviteMemoryStorage) {
	invites := NewInviteMemoryStorage()
	return NewUserMemoryStorage(invites), invites
}

func TestUserMemoryStorage_RegisterUser(t *testing.T) {
	t.Run("First registered user becomes admin without a token", func(t *testing.T) {
		storage, _ := newUserStorage()

		user, err := storage.RegisterUser("firstuser", "password123", "")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "firstuser", user.Username)
		assert.True(t, user.IsAdmin)
	})

	t.Run("Second user requires a valid invitation token", func(t *testing.T) {
		storage, invites := newUserStorage()

		admin, err := storage.RegisterUser("admin", "password123", "")
		require.NoError(t, err)
		require.True(t, admin.IsAdmin)

		// без токена регистрация не проходит
		_, err = storage.RegisterUser("seconduser", "password123", "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		// выпускаем токен от имени админа
		token, err := invites.CreateToken(createActorContext(1, true))
		require.NoError(t, err)

		user, err := storage.RegisterUser("seconduser", "password123", token.Token)
		require.NoError(t, err)
		assert.False(t, user.IsAdmin)
	})

	t.Run("Consumed token is never accepted again", func(t *testing.T) {
		storage, invites := newUserStorage()

		_, err := storage.RegisterUser("admin", "password123", "")
		require.NoError(t, err)

		token, err := invites.CreateToken(createActorContext(1, true))
		require.NoError(t, err)

		_, err = storage.RegisterUser("invited", "password123", token.Token)
		require.NoError(t, err)

		// повторное использование того же токена
		_, err = storage.RegisterUser("freeloader", "password123", token.Token)
		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("Unknown token is rejected", func(t *testing.T) {
		storage, _ := newUserStorage()

		_, err := storage.RegisterUser("admin", "password123", "")
		require.NoError(t, err)

		_, err = storage.RegisterUser("intruder", "password123", "made-up-token")
		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("Register user with duplicate username", func(t *testing.T) {
		storage, _ := newUserStorage()

		_, err := storage.RegisterUser("duplicateuser", "password123", "")
		require.NoError(t, err)

		_, err = storage.RegisterUser("duplicateuser", "anotherpassword", "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Empty username or password is rejected", func(t *testing.T) {
		storage, _ := newUserStorage()

		_, err := storage.RegisterUser("", "password123", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = storage.RegisterUser("someuser", "", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		// одни пробелы - тоже пусто
		_, err = storage.RegisterUser("   ", "password123", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Concurrent registrations consume a token once", func(t *testing.T) {
		storage, invites := newUserStorage()

		_, err := storage.RegisterUser("admin", "password123", "")
		require.NoError(t, err)

		token, err := invites.CreateToken(createActorContext(1, true))
		require.NoError(t, err)

		const workers = 10
		var wg sync.WaitGroup
		var successes int32
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := storage.RegisterUser(fmt.Sprintf("racer%d", i), "password123", token.Token)
				if err == nil {
					atomic.AddInt32(&successes, 1)
				}
			}(i)
		}
		wg.Wait()

		// токен одноразовый - пройти должен ровно один
		assert.Equal(t, int32(1), successes)
	})

	t.Run("Failed registration does not consume the token", func(t *testing.T) {
		storage, invites := newUserStorage()

		_, err := storage.RegisterUser("admin", "password123", "")
		require.NoError(t, err)

		token, err := invites.CreateToken(createActorContext(1, true))
		require.NoError(t, err)

		_, err = storage.RegisterUser("taken", "password123", token.Token)
		require.NoError(t, err)

		// дубликат имени отваливается до списания токена
		token2, err := invites.CreateToken(createActorContext(1, true))
		require.NoError(t, err)

		_, err = storage.RegisterUser("taken", "password123", token2.Token)
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		// токен остался живым
		_, err = storage.RegisterUser("newcomer", "password123", token2.Token)
		assert.NoError(t, err)
	})
}

func TestUserMemoryStorage_LoginUser(t *testing.T) {
	storage, _ := newUserStorage()

	// Устанавливаем переменную окружения JWT_SECRET перед тестами
	originalJWTSecret := os.Getenv("JWT_SECRET")
	err := os.Setenv("JWT_SECRET", "test_secret_key_for_jwt")
	require.NoError(t, err)

	// Восстанавливаем оригинальное значение после тестов
	defer os.Setenv("JWT_SECRET", originalJWTSecret)

	username := "loginuser"
	password := "loginpassword123"

	_, err = storage.RegisterUser(username, password, "")
	require.NoError(t, err)

	t.Run("Successful login", func(t *testing.T) {
		token, err := storage.LoginUser(username, password)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// Простая проверка, что это похоже на JWT токен
		// JWT токен должен содержать две точки, разделяющие три части
		assert.Contains(t, token, ".")
		parts := 0
		for _, char := range token {
			if char == '.' {
				parts++
			}
		}
		assert.Equal(t, 2, parts, "JWT token должен состоять из трех частей, разделенных двумя точками")
	})

	t.Run("Login with incorrect password", func(t *testing.T) {
		_, err := storage.LoginUser(username, "wrongpassword")
		assert.ErrorIs(t, err, apperrors.ErrBadCredentials)
		assert.Contains(t, err.Error(), "incorrect")
	})

	t.Run("Login with non-existent user", func(t *testing.T) {
		_, err := storage.LoginUser("nonexistentuser", "anypassword")

		assert.ErrorIs(t, err, apperrors.ErrBadCredentials)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestUserMemoryStorage_GetUserById(t *testing.T) {
	storage, _ := newUserStorage()

	user, err := storage.RegisterUser("someuser", "password123", "")
	require.NoError(t, err)

	t.Run("Existing user", func(t *testing.T) {
		found, err := storage.GetUserById(user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, found.Username)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := storage.GetUserById("999")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserMemoryStorage_PasswordIsStoredHashed(t *testing.T) {
	storage, _ := newUserStorage()

	password := "plaintext-secret"
	_, err := storage.RegisterUser("hasheduser", password, "")
	require.NoError(t, err)

	storage.mu.Lock()
	stored := storage.passwords["hasheduser"]
	storage.mu.Unlock()

	assert.NotEmpty(t, stored)
	assert.NotEqual(t, password, stored)
	assert.NotContains(t, stored, password)
}
