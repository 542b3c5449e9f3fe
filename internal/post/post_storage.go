package post

import (
	"context"

	"github.com/VitaminP8/termfeed/api/model"
)

type PostStorage interface {
	CreatePost(ctx context.Context, content, mediaFilename string) (*model.Post, error)
	GetPostById(id string) (*model.Post, error)
	GetAllPosts() ([]*model.Post, error)
	GetPostsByUser(userID string) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id, content string) (*model.Post, error)
	DeletePostById(ctx context.Context, id string) error
}
