package models

import "github.com/jinzhu/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string
	IsAdmin  bool
	Posts    []Post    `gorm:"foreignkey:UserID"`
	Comments []Comment `gorm:"foreignkey:UserID"`
}

type Post struct {
	gorm.Model
	Content       string `gorm:"not null"`
	MediaFilename string
	UserID        uint
	Comments      []Comment `gorm:"foreignkey:PostID"`
}

type Comment struct {
	gorm.Model
	Content string `gorm:"not null"`
	PostID  uint
	UserID  uint
}

type InvitationToken struct {
	gorm.Model
	Token     string `gorm:"unique;not null"`
	IsUsed    bool
	CreatedBy *uint
}
