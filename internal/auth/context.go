// internal/auth/context.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const actorKey = contextKey("actor")

// Actor - аутентифицированный пользователь запроса
type Actor struct {
	ID      uint
	IsAdmin bool
}

// Сохраняет актора в контексте
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Достает актора из контекста
func GetActorFromContext(ctx context.Context) (Actor, error) {
	val := ctx.Value(actorKey)
	actor, ok := val.(Actor)
	if !ok {
		return Actor{}, errors.New("actor not found in context")
	}
	return actor, nil
}

// Для извлечения актора из JWT и помещения в context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
		if tokenStr == "" {
			next.ServeHTTP(w, r) // неавторизованный доступ — пропускаем
			return
		}

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			http.Error(w, "JWT secret not set", http.StatusInternalServerError)
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			next.ServeHTTP(w, r) // если невалидный токен — пропускаем
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		idFloat, ok := claims["user_id"].(float64)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		// is_admin может отсутствовать в старых токенах — тогда считаем false
		isAdmin, _ := claims["is_admin"].(bool)

		actor := Actor{ID: uint(idFloat), IsAdmin: isAdmin}
		ctx := WithActor(r.Context(), actor)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
