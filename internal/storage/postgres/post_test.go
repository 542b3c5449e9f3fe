package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/VitaminP8/termfeed/internal/apperrors"
	"github.com/VitaminP8/termfeed/internal/mocks"
	"github.com/VitaminP8/termfeed/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPostgresStorage_CreatePost(t *testing.T) {
	storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

	t.Run("Successful post creation", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		ctx := createActorContext(userID, false)

		post, err := storage.CreatePost(ctx, "hello board", "")
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "hello board", post.Content)
		assert.Equal(t, fmt.Sprint(userID), post.AuthorID)
		assert.NotEmpty(t, post.CreatedAt)
	})

	t.Run("Post with allowed media keeps the reference", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		ctx := createActorContext(userID, false)

		post, err := storage.CreatePost(ctx, "with photo", "photo.png")
		require.NoError(t, err)
		assert.Equal(t, "photo.png", post.MediaFilename)
	})

	t.Run("Disallowed media is silently dropped", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		ctx := createActorContext(userID, false)

		post, err := storage.CreatePost(ctx, "sneaky attachment", "photo.exe")
		require.NoError(t, err)
		assert.Empty(t, post.MediaFilename)

		var saved models.Post
		err = DB.First(&saved, post.ID).Error
		require.NoError(t, err)
		assert.Empty(t, saved.MediaFilename)
	})

	t.Run("Empty content is rejected", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		ctx := createActorContext(userID, false)

		_, err := storage.CreatePost(ctx, "   ", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Error when no authorization", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		_, err := storage.CreatePost(context.Background(), "content", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unauthorized")
	})
}

func TestPostPostgresStorage_GetAllPosts(t *testing.T) {
	storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

	t.Run("Posts are ordered most recent first", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)

		// выставляем строго возрастающие времена создания
		base := time.Now().Add(-time.Hour)
		var ids []uint
		for i := 0; i < 3; i++ {
			post := &models.Post{Content: fmt.Sprintf("post %d", i+1), UserID: userID}
			require.NoError(t, DB.Create(post).Error)
			require.NoError(t, DB.Model(post).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
			ids = append(ids, post.ID)
		}

		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, fmt.Sprint(ids[2]), posts[0].ID)
		assert.Equal(t, fmt.Sprint(ids[1]), posts[1].ID)
		assert.Equal(t, fmt.Sprint(ids[0]), posts[2].ID)
	})

	t.Run("Equal timestamps keep insertion order", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)

		same := time.Now().Truncate(time.Second)
		var ids []uint
		for i := 0; i < 2; i++ {
			post := &models.Post{Content: fmt.Sprintf("tie %d", i+1), UserID: userID}
			require.NoError(t, DB.Create(post).Error)
			require.NoError(t, DB.Model(post).UpdateColumn("created_at", same).Error)
			ids = append(ids, post.ID)
		}

		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, fmt.Sprint(ids[0]), posts[0].ID)
		assert.Equal(t, fmt.Sprint(ids[1]), posts[1].ID)
	})
}

func TestPostPostgresStorage_GetPostsByUser(t *testing.T) {
	storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	alice := createTestUser(t, "alice", false)
	bob := createTestUser(t, "bob", false)

	createTestPost(t, alice, "by alice", "")
	createTestPost(t, bob, "by bob", "")
	createTestPost(t, alice, "again alice", "")

	posts, err := storage.GetPostsByUser(fmt.Sprint(alice))
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Equal(t, fmt.Sprint(alice), post.AuthorID)
	}
}

func TestPostPostgresStorage_UpdatePost(t *testing.T) {
	storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

	t.Run("Author can edit own post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		postID := createTestPost(t, userID, "original", "photo.png")

		updated, err := storage.UpdatePost(createActorContext(userID, false), fmt.Sprint(postID), "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
		// вложение остается на месте
		assert.Equal(t, "photo.png", updated.MediaFilename)
	})

	t.Run("Admin can edit someone else's post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		author := createTestUser(t, "author", false)
		admin := createTestUser(t, "admin", true)
		postID := createTestPost(t, author, "original", "")

		updated, err := storage.UpdatePost(createActorContext(admin, true), fmt.Sprint(postID), "moderated")
		require.NoError(t, err)
		assert.Equal(t, "moderated", updated.Content)
	})

	t.Run("Stranger cannot edit the post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		author := createTestUser(t, "author", false)
		stranger := createTestUser(t, "stranger", false)
		postID := createTestPost(t, author, "original", "")

		_, err := storage.UpdatePost(createActorContext(stranger, false), fmt.Sprint(postID), "hacked")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		// пост не изменился
		var saved models.Post
		require.NoError(t, DB.First(&saved, postID).Error)
		assert.Equal(t, "original", saved.Content)
	})

	t.Run("Empty content is rejected", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)
		postID := createTestPost(t, userID, "original", "")

		_, err := storage.UpdatePost(createActorContext(userID, false), fmt.Sprint(postID), "  ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Unknown post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "author", false)

		_, err := storage.UpdatePost(createActorContext(userID, false), "999", "content")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostPostgresStorage_DeletePostById(t *testing.T) {
	t.Run("Deletion cascades to comments and media", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		files := mocks.NewMockMediaStore()
		storage := NewPostPostgresStorage(files)

		userID := createTestUser(t, "author", false)
		postID := createTestPost(t, userID, "doomed", "photo.png")
		otherID := createTestPost(t, userID, "survivor", "")

		require.NoError(t, DB.Create(&models.Comment{PostID: postID, UserID: userID, Content: "first"}).Error)
		require.NoError(t, DB.Create(&models.Comment{PostID: postID, UserID: userID, Content: "second"}).Error)
		require.NoError(t, DB.Create(&models.Comment{PostID: otherID, UserID: userID, Content: "unrelated"}).Error)

		err := storage.DeletePostById(createActorContext(userID, false), fmt.Sprint(postID))
		require.NoError(t, err)

		// пост удален
		var count int
		require.NoError(t, DB.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error)
		assert.Equal(t, 0, count)

		// комментарии поста удалены, чужие остались
		require.NoError(t, DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error)
		assert.Equal(t, 0, count)
		require.NoError(t, DB.Model(&models.Comment{}).Where("post_id = ?", otherID).Count(&count).Error)
		assert.Equal(t, 1, count)

		// файл вложения удален
		assert.Contains(t, files.Deleted, "photo.png")
	})

	t.Run("Deletion succeeds when media file is already gone", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		files := mocks.NewMockMediaStore()
		storage := NewPostPostgresStorage(files)

		userID := createTestUser(t, "author", false)
		postID := createTestPost(t, userID, "missing file", "clip.mp4")

		// файл "вручную" удален из хранилища
		require.NoError(t, files.Delete("clip.mp4"))

		err := storage.DeletePostById(createActorContext(userID, false), fmt.Sprint(postID))
		assert.NoError(t, err)
	})

	t.Run("Stranger cannot delete the post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

		author := createTestUser(t, "author", false)
		stranger := createTestUser(t, "stranger", false)
		postID := createTestPost(t, author, "protected", "")

		err := storage.DeletePostById(createActorContext(stranger, false), fmt.Sprint(postID))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		// пост на месте
		var count int
		require.NoError(t, DB.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error)
		assert.Equal(t, 1, count)
	})

	t.Run("Admin can delete someone else's post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		storage := NewPostPostgresStorage(mocks.NewMockMediaStore())

		author := createTestUser(t, "author", false)
		admin := createTestUser(t, "admin", true)
		postID := createTestPost(t, author, "to be moderated", "")

		err := storage.DeletePostById(createActorContext(admin, true), fmt.Sprint(postID))
		assert.NoError(t, err)
	})

	t.Run("Unknown post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		storage := NewPostPostgresStorage(mocks.NewMockMediaStore())
		userID := createTestUser(t, "author", false)

		err := storage.DeletePostById(createActorContext(userID, false), "999")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
