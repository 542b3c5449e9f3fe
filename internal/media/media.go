// Package media отвечает за вложения постов: допустимые форматы
// и жизненный цикл файла, привязанный к жизненному циклу поста.
package media

import (
	"io"
	"path/filepath"
	"strings"
)

// Store - байтовое хранилище вложений, ключ - имя файла
type Store interface {
	Store(filename string, r io.Reader) (string, error)
	// Delete идемпотентен: удаление несуществующего файла - не ошибка
	Delete(filename string) error
	Open(filename string) (io.ReadCloser, error)
}

// Разрешенные расширения вложений (как в оригинальной доске)
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".mp4":  true,
	".webm": true,
}

// AllowedFilename проверяет расширение файла без учета регистра.
// Недопустимые файлы не ошибка: пост просто создается без вложения.
func AllowedFilename(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return allowedExtensions[ext]
}
