package api

import (
	"net/http"

	"github.com/VitaminP8/termfeed/internal/comment"
	"github.com/VitaminP8/termfeed/internal/invite"
	"github.com/VitaminP8/termfeed/internal/media"
	"github.com/VitaminP8/termfeed/internal/post"
	"github.com/VitaminP8/termfeed/internal/subscription"
	"github.com/VitaminP8/termfeed/internal/user"
)

// Handler служит корневой точкой HTTP API.
// Здесь внедряются зависимости: хранилища, медиа и лента комментариев.
type Handler struct {
	UserStore    user.UserStorage
	PostStore    post.PostStorage
	CommentStore comment.CommentStorage
	InviteStore  invite.InviteStorage
	MediaStore   media.Store
	Feed         subscription.Manager
}

// Routes собирает маршруты доски (оборачивать в auth.AuthMiddleware при запуске)
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)

	mux.HandleFunc("GET /api/posts", h.ListPosts)
	mux.HandleFunc("POST /api/posts", h.CreatePost)
	mux.HandleFunc("GET /api/posts/{id}", h.GetPost)
	mux.HandleFunc("PUT /api/posts/{id}", h.UpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", h.DeletePost)

	mux.HandleFunc("GET /api/posts/{id}/comments", h.ListComments)
	mux.HandleFunc("POST /api/posts/{id}/comments", h.CreateComment)
	mux.HandleFunc("GET /api/posts/{id}/comments/stream", h.StreamComments)
	mux.HandleFunc("DELETE /api/comments/{id}", h.DeleteComment)

	mux.HandleFunc("GET /api/users/{id}/posts", h.ListUserPosts)
	mux.HandleFunc("POST /api/invites", h.CreateInvite)

	mux.HandleFunc("GET /uploads/{filename}", h.ServeUpload)

	return mux
}
