// Package apperrors определяет виды ошибок ядра.
// Хранилища оборачивают их через fmt.Errorf("...: %w", ...),
// HTTP-слой разбирает через errors.Is и отображает в статус-коды.
package apperrors

import "errors"

var (
	// ErrValidation - пустое обязательное поле
	ErrValidation = errors.New("validation failed")
	// ErrConflict - имя пользователя уже занято
	ErrConflict = errors.New("already exists")
	// ErrInvalidToken - пригласительный токен отсутствует, неизвестен или уже использован
	ErrInvalidToken = errors.New("invalid or already used invitation token")
	// ErrNotFound - неизвестный пост/комментарий/пользователь/файл
	ErrNotFound = errors.New("not found")
	// ErrForbidden - отказ политики авторизации
	ErrForbidden = errors.New("forbidden")
	// ErrBadCredentials - неверное имя пользователя или пароль при логине;
	// серверные сбои (например, не задан JWT_SECRET) этим видом не оборачиваются
	ErrBadCredentials = errors.New("bad credentials")
)
