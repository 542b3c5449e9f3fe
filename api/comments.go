package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/VitaminP8/termfeed/api/model"
)

type createCommentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	comments, err := h.CommentStore.GetComments(r.PathValue("id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.CommentStore.CreateComment(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := h.CommentStore.DeleteCommentById(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StreamComments отдает новые комментарии поста как Server-Sent Events
func (h *Handler) StreamComments(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	postID := r.PathValue("id")

	// пост должен существовать до начала стрима
	_, err := h.PostStore.GetPostById(postID)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	ch, cancel := h.Feed.Subscribe(postID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case comment, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(comment)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
