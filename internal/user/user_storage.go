package user

import (
	"github.com/VitaminP8/termfeed/api/model"
)

type UserStorage interface {
	// RegisterUser - первый пользователь становится админом без токена,
	// остальным нужен неиспользованный пригласительный токен
	RegisterUser(username, password, inviteToken string) (*model.User, error)
	LoginUser(username, password string) (string, error) // JWT
	GetUserById(id string) (*model.User, error)
}
