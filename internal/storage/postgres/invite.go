package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/models"

	"github.com/google/uuid"
)

type InvitePostgresStorage struct{}

func NewInvitePostgresStorage() *InvitePostgresStorage {
	return &InvitePostgresStorage{}
}

func (s *InvitePostgresStorage) CreateToken(ctx context.Context) (*model.InvitationToken, error) {
	actor, err := auth.GetActorFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	if !actor.IsAdmin {
		return nil, fmt.Errorf("only admin can create invitation tokens: %w", apperrors.ErrForbidden)
	}

	createdBy := actor.ID
	token := &models.InvitationToken{
		Token:     uuid.NewString(),
		CreatedBy: &createdBy,
	}

	err = DB.Create(token).Error
	if err != nil {
		return nil, fmt.Errorf("could not create invitation token: %w", err)
	}

	return &model.InvitationToken{
		ID:        fmt.Sprint(token.ID),
		Token:     token.Token,
		CreatedAt: token.CreatedAt.Format(time.RFC3339),
	}, nil
}
