// Package stream поддерживает живой канал уведомлений: websocket с
// переподключением и деградацией до периодического опроса.
package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
)

const defaultPollInterval = 5 * time.Second

// Config описывает параметры канала уведомлений.
type Config struct {
	// URL — адрес websocket-эндпоинта без токена.
	URL string
	// Tokens поставляет токен, добавляемый параметром запроса.
	Tokens api.TokenSource
	// Notifications используется резервным опросом непрочитанных.
	Notifications *service.Notifications
	// PollInterval — период резервного опроса.
	PollInterval time.Duration
	// Notify вызывается на каждое полученное уведомление.
	Notify func(model.Notification)
	// OnError вызывается на ошибки опроса, кроме отсутствия эндпоинта.
	OnError func(error)
	Logger  *zap.Logger
}

// Manager владеет состоянием канала: в любой момент активно не больше
// одного соединения, таймера переподключения или цикла опроса.
type Manager struct {
	cfg Config

	mu             sync.Mutex
	conn           *websocket.Conn
	backoff        retry.Backoff
	reconnectTimer *time.Timer
	pollCancel     context.CancelFunc
	stopped        bool
}

// NewManager создаёт менеджер канала уведомлений.
func NewManager(cfg Config) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Manager{
		cfg:     cfg,
		backoff: newBackoff(),
	}
}

// newBackoff задаёт расписание переподключений: экспонента от 2 секунд
// с потолком 30 секунд и не больше 5 попыток.
func newBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.WithCappedDuration(30*time.Second, retry.NewExponential(2*time.Second)))
}

// Start открывает канал. Закрытие контекста равносильно Stop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.stopped = false
	m.backoff = newBackoff()
	m.mu.Unlock()

	context.AfterFunc(ctx, m.Stop)

	m.connect(ctx)
}

// Stop разрывает активный канал — соединение, таймер переподключения
// или цикл опроса — и сбрасывает состояние переподключений. Безопасен
// из любого состояния и при повторных вызовах.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true

	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}

	m.backoff = newBackoff()
}

func (m *Manager) connect(ctx context.Context) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	// Перед новым соединением старое обязано быть закрыто, иначе
	// уведомления начнут приходить дважды.
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.mu.Unlock()

	url := m.cfg.URL
	if m.cfg.Tokens != nil {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "token=" + m.cfg.Tokens.Token()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		m.cfg.Logger.Warn("websocket dial failed", zap.Error(err))
		m.scheduleReconnect(ctx)
		return
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.backoff = newBackoff()
	m.mu.Unlock()

	m.cfg.Logger.Info("websocket connected for notifications")

	go m.readLoop(ctx, conn)
}

func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var notification model.Notification
		if err := conn.ReadJSON(&notification); err != nil {
			m.mu.Lock()
			stopped := m.stopped
			m.mu.Unlock()

			if stopped || ctx.Err() != nil {
				return
			}

			m.cfg.Logger.Warn("websocket disconnected", zap.Error(err))
			m.scheduleReconnect(ctx)
			return
		}

		if m.cfg.Notify != nil {
			m.cfg.Notify(notification)
		}
	}
}

func (m *Manager) scheduleReconnect(ctx context.Context) {
	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return
	}

	delay, stop := m.backoff.Next()
	if stop {
		m.mu.Unlock()
		m.cfg.Logger.Warn("max reconnection attempts reached, falling back to polling")
		m.startPolling(ctx)
		return
	}

	m.cfg.Logger.Info("scheduling websocket reconnect", zap.Duration("delay", delay))
	m.reconnectTimer = time.AfterFunc(delay, func() {
		m.connect(ctx)
	})
	m.mu.Unlock()
}

func (m *Manager) startPolling(ctx context.Context) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	if m.pollCancel != nil {
		m.pollCancel()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	m.pollCancel = cancel
	m.mu.Unlock()

	go m.pollLoop(pollCtx)
}

func (m *Manager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			notifications, err := m.cfg.Notifications.Unread(ctx)
			if err != nil {
				// Отсутствующий эндпоинт означает, что уведомления на
				// бэкенде не реализованы: опрос молча прекращается.
				if api.IsNotFound(err) {
					m.cfg.Logger.Info("polling endpoint not found, stopping polling")
					return
				}
				if m.cfg.OnError != nil {
					m.cfg.OnError(err)
				}
				continue
			}

			for _, n := range notifications {
				if m.cfg.Notify != nil {
					m.cfg.Notify(n)
				}
			}
		}
	}
}
