package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

type state struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user,omitempty"`
}

// FileStore хранит токен доступа и запись пользователя в JSON-файле,
// переживающем перезапуск процесса. Чтения конкурентно-безопасны;
// записи происходят только при входе и выходе.
type FileStore struct {
	path string

	mu    sync.RWMutex
	state state
}

// NewFileStore открывает хранилище по указанному пути. Отсутствующий
// файл означает чистое неаутентифицированное состояние.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return s, nil
}

// Token возвращает сохранённый токен доступа или пустую строку.
func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// User возвращает сохранённую запись пользователя или nil.
func (s *FileStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// Save сохраняет токен и пользователя на диск.
func (s *FileStore) Save(token string, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{AccessToken: token, User: &user}

	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// Clear удаляет сохранённое состояние. Повторный вызов безопасен.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}

	return nil
}
