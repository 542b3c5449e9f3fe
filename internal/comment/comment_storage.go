package comment

import (
	"context"

	"github.com/VitaminP8/termfeed/api/model"
)

type CommentStorage interface {
	CreateComment(ctx context.Context, postID, content string) (*model.Comment, error)
	GetComments(postID string, limit, offset int) ([]*model.Comment, error)
	DeleteCommentById(ctx context.Context, id string) error
}
