package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// UserInput описывает создаваемого пользователя.
type UserInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role,omitempty"`
}

// UserPatch описывает изменяемые поля пользователя.
type UserPatch struct {
	Email    *string     `json:"email,omitempty"`
	FullName *string     `json:"full_name,omitempty"`
	Role     *model.Role `json:"role,omitempty"`
	IsActive *bool       `json:"is_active,omitempty"`
}

// Users предоставляет CRUD-операции учётных записей.
type Users struct {
	client *api.Client
	logger *zap.Logger
}

// NewUsers создаёт сервис учётных записей.
func NewUsers(client *api.Client, logger *zap.Logger) *Users {
	return &Users{
		client: client,
		logger: logger,
	}
}

// List возвращает страницу пользователей.
func (u *Users) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var users []model.User
	if err := u.client.Get(ctx, "/users/", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get возвращает пользователя по идентификатору.
func (u *Users) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := u.client.Get(ctx, fmt.Sprintf("/users/%d/", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт пользователя. Отдельного admin-эндпоинта нет, создание
// идёт через регистрацию.
func (u *Users) Create(ctx context.Context, input UserInput) (*model.User, error) {
	var user model.User
	if err := u.client.Post(ctx, "/auth/register/", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update изменяет пользователя.
func (u *Users) Update(ctx context.Context, id int64, patch UserPatch) (*model.User, error) {
	var user model.User
	if err := u.client.Put(ctx, fmt.Sprintf("/users/%d/", id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete удаляет пользователя.
func (u *Users) Delete(ctx context.Context, id int64) error {
	return u.client.Delete(ctx, fmt.Sprintf("/users/%d/", id))
}
