package mocks

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/VitaminP8/termfeed/internal/apperrors"
)

// MockMediaStore хранит вложения в памяти и запоминает удаления
type MockMediaStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	Deleted []string
}

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{
		files: make(map[string][]byte),
	}
}

func (m *MockMediaStore) Store(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	name := filepath.Base(filename)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return name, nil
}

func (m *MockMediaStore) Delete(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// идемпотентно: несуществующий файл - не ошибка
	delete(m.files, filename)
	m.Deleted = append(m.Deleted, filename)
	return nil
}

func (m *MockMediaStore) Open(filename string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[filename]
	if !ok {
		return nil, fmt.Errorf("media file %s: %w", filename, apperrors.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Has сообщает, лежит ли файл в хранилище (для проверок в тестах)
func (m *MockMediaStore) Has(filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filename]
	return ok
}
