package invite

import (
	"context"

	"github.com/VitaminP8/termfeed/api/model"
)

type InviteStorage interface {
	// CreateToken - только для админа; выдает одноразовый пригласительный токен
	CreateToken(ctx context.Context) (*model.InvitationToken, error)
}
