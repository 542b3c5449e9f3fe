package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VitaminP8/termfeed/api"
	"github.com/VitaminP8/termfeed/internal/auth"
	"github.com/VitaminP8/termfeed/internal/comment"
	"github.com/VitaminP8/termfeed/internal/config"
	"github.com/VitaminP8/termfeed/internal/invite"
	"github.com/VitaminP8/termfeed/internal/media"
	"github.com/VitaminP8/termfeed/internal/post"
	"github.com/VitaminP8/termfeed/internal/storage/memory"
	"github.com/VitaminP8/termfeed/internal/storage/postgres"
	"github.com/VitaminP8/termfeed/internal/subscription"
	"github.com/VitaminP8/termfeed/internal/user"
)

func main() {
	storageType := flag.String("storage", "memory", "Тип хранилища: memory или postgres")
	flag.Parse()

	// загружаем .env из нашего config.go
	config.LoadEnv()

	// директория вложений
	uploadDir := config.GetEnvOrDefault("UPLOAD_DIR", "uploads")
	files, err := media.NewDiskStore(uploadDir)
	if err != nil {
		log.Fatalf("не удалось подготовить директорию вложений: %v", err)
	}

	feed := subscription.NewCommentFeed()

	var postStore post.PostStorage
	var commentStore comment.CommentStorage
	var userStore user.UserStorage
	var inviteStore invite.InviteStorage

	switch *storageType {
	case "postgres":
		err := postgres.InitDB()
		if err != nil {
			log.Fatalf("не удалось подключиться к базе данных: %v", err)
		}
		err = postgres.Migrate()
		if err != nil {
			log.Fatalf("не удалось выполнить миграции: %v", err)
		}

		log.Println("Используется PostgreSQL хранилище")
		postStore = postgres.NewPostPostgresStorage(files)
		commentStore = postgres.NewCommentPostgresStorage(feed)
		userStore = postgres.NewUserPostgresStorage()
		inviteStore = postgres.NewInvitePostgresStorage()

	case "memory":
		log.Println("Используется in-memory хранилище")
		inviteMem := memory.NewInviteMemoryStorage()
		postStore = memory.NewPostMemoryStorage(files)
		commentStore = memory.NewCommentMemoryStorage(postStore, feed)
		userStore = memory.NewUserMemoryStorage(inviteMem)
		inviteStore = inviteMem

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	handler := &api.Handler{
		UserStore:    userStore,
		PostStore:    postStore,
		CommentStore: commentStore,
		InviteStore:  inviteStore,
		MediaStore:   files,
		Feed:         feed,
	}

	// AuthMiddleware вытаскивает JWT из заголовка, валидирует его и кладет актора в context
	addr := config.GetEnvOrDefault("SERVER_ADDR", ":8080")
	server := &http.Server{
		Addr:    addr,
		Handler: auth.AuthMiddleware(handler.Routes()),
	}

	// запуск HTTP сервера
	go func() {
		log.Printf("Сервер запущен на http://localhost%s/", addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // ждет сигнал

	log.Println("Завершение...")

	if *storageType == "postgres" {
		err := postgres.CloseDB()
		if err != nil {
			log.Printf("Ошибка при закрытии базы данных: %v", err)
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Ошибка при завершении сервера: %v", err)
	}

	log.Println("Сервер остановлен корректно")
}
