package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/VitaminP8/termfeed/api/model"
	"github.com/VitaminP8/termfeed/internal/media"
)

type updatePostRequest struct {
	Content string `json:"content"`
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	posts, err := h.PostStore.GetAllPosts()
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []*model.Post{}
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := r.ParseMultipartForm(32 << 20) // до 32 MB в памяти
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	content := r.FormValue("content")

	// файл сохраняется только с допустимым расширением,
	// иначе пост молча создается без вложения (поведение оригинальной доски)
	mediaFilename := ""
	file, header, err := r.FormFile("media")
	if err == nil {
		defer file.Close()
		if media.AllowedFilename(header.Filename) {
			stored, err := h.MediaStore.Store(header.Filename, file)
			if err != nil {
				writeError(w, err)
				return
			}
			mediaFilename = stored
		}
	}

	post, err := h.PostStore.CreatePost(r.Context(), content, mediaFilename)
	if err != nil {
		if mediaFilename != "" {
			// пост не создан - вложение не должно осиротеть в хранилище
			_ = h.MediaStore.Delete(mediaFilename)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")

	post, err := h.PostStore.GetPostById(id)
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.CommentStore.GetComments(id, 0, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":     post,
		"comments": comments,
	})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req updatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.PostStore.UpdatePost(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := h.PostStore.DeletePostById(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	_, ok := requireActor(w, r)
	if !ok {
		return
	}

	filename := r.PathValue("filename")

	f, err := h.MediaStore.Open(filename)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	// заголовки уже отправлены - ошибку копирования клиенту не сообщить
	_, _ = io.Copy(w, f)
}
