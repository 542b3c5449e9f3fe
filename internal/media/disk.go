package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/VitaminP8/termfeed/internal/apperrors"
)

// DiskStore хранит вложения в одной директории на диске.
// Коллизии имен перезаписывают старый файл (известное ограничение).
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("could not create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Store(filename string, r io.Reader) (string, error) {
	// Base отсекает любые элементы пути из пользовательского имени файла
	name := filepath.Base(filename)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("could not create media file %s: %w", name, err)
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	if err != nil {
		return "", fmt.Errorf("could not write media file %s: %w", name, err)
	}

	return name, nil
}

func (s *DiskStore) Delete(filename string) error {
	name := filepath.Base(filename)

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete media file %s: %w", name, err)
	}

	return nil
}

func (s *DiskStore) Open(filename string) (io.ReadCloser, error) {
	name := filepath.Base(filename)

	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("media file %s: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open media file %s: %w", name, err)
	}

	return f, nil
}
