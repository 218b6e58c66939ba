// Package session управляет сессией администратора: вход, выход и
// проверка сохранённого токена.
package session

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// ErrInvalidCredentials возвращается, когда бэкенд отклонил логин или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput описывает данные регистрации нового пользователя.
type RegisterInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role,omitempty"`
}

// Manager реализует жизненный цикл сессии поверх файлового хранилища.
// Manager — единственный подписчик события 401 у HTTP-клиента.
type Manager struct {
	client *api.Client
	store  *FileStore
	logger *zap.Logger
}

// NewManager создаёт менеджер сессии с указанным клиентом и хранилищем.
func NewManager(client *api.Client, store *FileStore, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		logger: logger,
	}
}

// Login выполняет вход: бэкенд ожидает password-grant форму, поэтому
// учётные данные отправляются полями username и password, а не JSON.
// Успешный ответ сохраняется в хранилище.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.Session, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp model.Session
	if err := m.client.PostForm(ctx, "/auth/login", form, &resp); err != nil {
		if api.IsUnauthorized(err) || api.IsBadRequest(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := m.store.Save(resp.AccessToken, resp.User); err != nil {
		return nil, err
	}

	m.logger.Info("login successful", zap.String("email", email))
	return &resp, nil
}

// Register регистрирует нового пользователя.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	var user model.User
	if err := m.client.Post(ctx, "/auth/register/", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout очищает сохранённые токен и пользователя. Идемпотентен.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("clear session state error", zap.Error(err))
	}
}

// Invalidate обрабатывает ответ 401 от любого вызова: сессия считается
// недействительной и немедленно очищается.
func (m *Manager) Invalidate() {
	m.logger.Warn("session invalidated by backend, logging out")
	m.Logout()
}

// IsAuthenticated сообщает, сохранён ли токен. Валидность токена при
// этом не проверяется.
func (m *Manager) IsAuthenticated() bool {
	return m.store.Token() != ""
}

// StoredUser возвращает пользователя из хранилища без обращения к бэкенду.
func (m *Manager) StoredUser() *model.User {
	return m.store.User()
}

// CurrentUser повторно проверяет токен запросом к бэкенду. Ответ 401
// означает недействительную сессию: она очищается до возврата ошибки.
func (m *Manager) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := m.client.Get(ctx, "/users/me", nil, &user); err != nil {
		if api.IsUnauthorized(err) {
			m.Logout()
		}
		return nil, err
	}
	return &user, nil
}

// Restore восстанавливает сессию при старте процесса: сохранённый
// пользователь считается действующим, затем токен перепроверяется.
// Неудачная проверка тихо понижает состояние до неаутентифицированного.
func (m *Manager) Restore(ctx context.Context) *model.User {
	if !m.IsAuthenticated() {
		return nil
	}

	verified, err := m.CurrentUser(ctx)
	if err != nil {
		m.logger.Warn("token verification failed", zap.Error(err))
		m.Logout()
		return nil
	}

	return verified
}
