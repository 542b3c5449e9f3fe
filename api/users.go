package api

import (
	"errors"
	"net/http"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/apperrors"
)

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	InviteToken string `json:"invite_token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserStore.RegisterUser(req.Username, req.Password, req.InviteToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.UserStore.LoginUser(req.Username, req.Password)
	if errors.Is(err, apperrors.ErrBadCredentials) {
		// причину не раскрываем - логин и пароль проверяются как одно целое
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
		return
	}
	if err != nil {
		// серверный сбой (например, не задан JWT_SECRET) - это не 401
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	userID := r.PathValue("id")

	user, err := h.UserStore.GetUserById(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	posts, err := h.PostStore.GetPostsByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []*model.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"posts": posts,
	})
}

func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	token, err := h.InviteStore.CreateToken(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, token)
}
