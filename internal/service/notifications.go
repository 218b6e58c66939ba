package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// Notifications предоставляет операции над уведомлениями панели.
type Notifications struct {
	client     *api.Client
	logger     *zap.Logger
	onFallback FallbackFunc
	now        func() time.Time
}

// NewNotifications создаёт сервис уведомлений.
func NewNotifications(client *api.Client, logger *zap.Logger) *Notifications {
	return &Notifications{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// SetFallbackHook регистрирует наблюдателя фолбэков.
func (n *Notifications) SetFallbackHook(fn FallbackFunc) {
	n.onFallback = fn
}

// List возвращает все уведомления. Ответ 404 означает, что бэкенд не
// реализует уведомления: тогда возвращается фиксированный список-заглушка.
// Остальные ошибки передаются вызывающему.
func (n *Notifications) List(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := n.client.Get(ctx, "/notifications/", nil, &notifications)
	if err == nil {
		return notifications, nil
	}

	if api.IsNotFound(err) {
		n.logger.Warn("notifications endpoint not found, using stub data")
		if n.onFallback != nil {
			n.onFallback("/notifications/")
		}
		return stubNotifications(n.now()), nil
	}

	return nil, err
}

// Unread возвращает непрочитанные уведомления.
func (n *Notifications) Unread(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := n.client.Get(ctx, "/notifications/unread/", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead помечает уведомление прочитанным.
func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	return n.client.Post(ctx, fmt.Sprintf("/notifications/%s/read/", id), nil, nil)
}

// MarkAllRead помечает все уведомления прочитанными.
func (n *Notifications) MarkAllRead(ctx context.Context) error {
	return n.client.Post(ctx, "/notifications/mark-all-read/", nil, nil)
}

// Delete удаляет одно уведомление.
func (n *Notifications) Delete(ctx context.Context, id string) error {
	return n.client.Delete(ctx, fmt.Sprintf("/notifications/%s/", id))
}

// Clear удаляет все уведомления.
func (n *Notifications) Clear(ctx context.Context) error {
	return n.client.Delete(ctx, "/notifications/")
}

// Settings возвращает настройки доставки уведомлений.
func (n *Notifications) Settings(ctx context.Context) (*model.NotificationSettings, error) {
	var settings model.NotificationSettings
	if err := n.client.Get(ctx, "/notifications/settings/", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings сохраняет настройки доставки уведомлений.
func (n *Notifications) UpdateSettings(ctx context.Context, settings model.NotificationSettings) (*model.NotificationSettings, error) {
	var updated model.NotificationSettings
	if err := n.client.Put(ctx, "/notifications/settings/", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func stubNotifications(now time.Time) []model.Notification {
	return []model.Notification{
		{
			ID:        "1",
			Title:     "New order received",
			Message:   "Order #12349 from Sarah Wilson",
			Timestamp: now.Add(-2 * time.Minute),
			Read:      false,
			Type:      "order",
		},
		{
			ID:        "2",
			Title:     "Low stock alert",
			Message:   "Coffee beans running low (5 units left)",
			Timestamp: now.Add(-15 * time.Minute),
			Read:      false,
			Type:      "inventory",
		},
		{
			ID:        "3",
			Title:     "Customer review",
			Message:   "5-star review from John Davis",
			Timestamp: now.Add(-time.Hour),
			Read:      true,
			Type:      "review",
		},
		{
			ID:        "4",
			Title:     "System update",
			Message:   "System maintenance scheduled for tonight",
			Timestamp: now.Add(-3 * time.Hour),
			Read:      true,
			Type:      "system",
		},
	}
}
