package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/internal/mocks"
	"github.com/VitaminP8/termfeed/internal/subscription"
	"github.com/stretchr/testify/require"
)

// testEnv собирает обработчик поверх мок-хранилищ
type testEnv struct {
	handler  *Handler
	users    *mocks.MockUserStorage
	posts    *mocks.MockPostStorage
	comments *mocks.MockCommentStorage
	invites  *mocks.MockInviteStorage
	media    *mocks.MockMediaStore
	feed     *subscription.CommentFeed
}

func newTestEnv() *testEnv {
	users := mocks.NewMockUserStorage()
	posts := mocks.NewMockPostStorage()
	comments := mocks.NewMockCommentStorage(posts)
	invites := mocks.NewMockInviteStorage()
	media := mocks.NewMockMediaStore()
	feed := subscription.NewCommentFeed()

	return &testEnv{
		handler: &Handler{
			UserStore:    users,
			PostStore:    posts,
			CommentStore: comments,
			InviteStore:  invites,
			MediaStore:   media,
			Feed:         feed,
		},
		users:    users,
		posts:    posts,
		comments: comments,
		invites:  invites,
		media:    media,
		feed:     feed,
	}
}

// doJSON выполняет запрос через маршрутизатор (иначе PathValue не работает)
func (e *testEnv) doJSON(t *testing.T, actor *auth.Actor, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *actor))
	}

	rr := httptest.NewRecorder()
	e.handler.Routes().ServeHTTP(rr, req)
	return rr
}

// doMultipart отправляет multipart-форму поста с опциональным вложением
func (e *testEnv) doMultipart(t *testing.T, actor *auth.Actor, content, filename string, fileData []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	err := mw.WriteField("content", content)
	require.NoError(t, err)

	if filename != "" {
		fw, err := mw.CreateFormFile("media", filename)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *actor))
	}

	rr := httptest.NewRecorder()
	e.handler.Routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	err := json.NewDecoder(rr.Body).Decode(v)
	require.NoError(t, err)
}

// createPost создает пост напрямую в хранилище от имени актора
func (e *testEnv) createPost(t *testing.T, actor auth.Actor, content, mediaFilename string) string {
	ctx := auth.WithActor(context.Background(), actor)
	post, err := e.posts.CreatePost(ctx, content, mediaFilename)
	require.NoError(t, err)
	return post.ID
}

// createComment создает комментарий напрямую в хранилище от имени актора
func (e *testEnv) createComment(t *testing.T, actor auth.Actor, postID, content string) string {
	ctx := auth.WithActor(context.Background(), actor)
	comment, err := e.comments.CreateComment(ctx, postID, content)
	require.NoError(t, err)
	return comment.ID
}
