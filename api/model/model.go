package model

// Модели транспортного уровня. Хранилища возвращают их наружу,
// gorm-модели (пакет models) наружу не выходят.

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type Post struct {
	ID            string `json:"id"`
	AuthorID      string `json:"authorId"`
	Content       string `json:"content"`
	MediaFilename string `json:"mediaFilename,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	AuthorID  string `json:"authorId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type InvitationToken struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	CreatedAt string `json:"createdAt"`
}
