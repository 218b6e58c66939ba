// Package stub реализует встроенный бэкенд для демо-режима и
// интеграционных тестов. Он отдаёт первичные ресурсы (товары, заказы,
// пользователи, уведомления), но намеренно не реализует агрегирующие
// и складские эндпоинты, чтобы клиент проходил свои резервные ветки.
package stub

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// Server хранит данные демо-бэкенда в памяти.
type Server struct {
	login    string
	password string
	logger   *zap.Logger

	mu            sync.Mutex
	tokens        map[string]int64
	users         map[int64]model.User
	products      map[int64]model.Product
	orders        map[int64]model.Order
	notifications []model.Notification
	settings      model.Settings
	notifSettings model.NotificationSettings
	hours         []model.BusinessHours
	nextUserID    int64
	nextProductID int64
	nextOrderID   int64

	hub *hub
}

// NewServer создаёт демо-бэкенд с заполненными данными. Пара
// login/password принимается эндпоинтом /auth/login.
func NewServer(login, password string, logger *zap.Logger) *Server {
	s := &Server{
		login:    login,
		password: password,
		logger:   logger,
		tokens:   make(map[string]int64),
		users:    make(map[int64]model.User),
		products: make(map[int64]model.Product),
		orders:   make(map[int64]model.Order),
		hub:      newHub(logger),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	now := time.Now()

	s.users[1] = model.User{
		ID:        1,
		Email:     s.login,
		FullName:  "Demo Admin",
		Role:      model.RoleAdmin,
		IsActive:  true,
		CreatedAt: now.AddDate(-1, 0, 0),
	}
	s.users[2] = model.User{
		ID:        2,
		Email:     "sarah.wilson@example.com",
		FullName:  "Sarah Wilson",
		Role:      model.RoleCustomer,
		IsActive:  true,
		CreatedAt: now.AddDate(0, 0, -10),
	}
	s.nextUserID = 3

	reorder := 10
	cost := 2.5
	s.products[1] = model.Product{
		ID:            1,
		Name:          "Cappuccino",
		Description:   "Espresso with steamed milk foam",
		Price:         4.5,
		Category:      "coffee",
		StockQuantity: 120,
		ReorderLevel:  &reorder,
		CostPrice:     &cost,
		IsActive:      true,
		IsAvailable:   true,
	}
	s.products[2] = model.Product{
		ID:            2,
		Name:          "Green Tea",
		Description:   "Loose leaf green tea",
		Price:         3.0,
		Category:      "tea",
		StockQuantity: 8,
		ReorderLevel:  &reorder,
		IsActive:      true,
		IsAvailable:   true,
	}
	s.products[3] = model.Product{
		ID:            3,
		Name:          "Whole Milk",
		Description:   "Fresh whole milk",
		Price:         1.5,
		Category:      "dairy",
		StockQuantity: 0,
		ReorderLevel:  &reorder,
		IsActive:      true,
		IsAvailable:   false,
	}
	s.nextProductID = 4

	s.orders[1] = model.Order{
		ID:            1,
		CustomerName:  "Sarah Wilson",
		CustomerEmail: "sarah.wilson@example.com",
		Status:        model.OrderStatusPending,
		TotalAmount:   9.0,
		CreatedAt:     now.Add(-30 * time.Minute),
	}
	s.orders[2] = model.Order{
		ID:            2,
		CustomerName:  "John Davis",
		CustomerEmail: "john.davis@example.com",
		Status:        model.OrderStatusDelivered,
		TotalAmount:   4.5,
		CreatedAt:     now.Add(-3 * time.Hour),
	}
	s.nextOrderID = 3

	s.notifications = []model.Notification{
		{
			ID:        "1",
			Title:     "New order received",
			Message:   "Order #1 from Sarah Wilson",
			Timestamp: now.Add(-30 * time.Minute),
			Read:      false,
			Type:      "order",
		},
		{
			ID:        "2",
			Title:     "Low stock alert",
			Message:   "Green Tea running low (8 units left)",
			Timestamp: now.Add(-time.Hour),
			Read:      true,
			Type:      "inventory",
		},
	}

	s.notifSettings = model.NotificationSettings{
		EmailEnabled: true,
		PushEnabled:  true,
		OrderAlerts:  true,
		StockAlerts:  true,
	}

	s.settings = model.Settings{
		ShopName:    "Demo Coffee Shop",
		Email:       s.login,
		Currency:    "USD",
		TaxRate:     8.5,
		OrderPrefix: "ORD",
	}

	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		s.hours = append(s.hours, model.BusinessHours{
			Day:      day,
			OpenTime: "08:00",
			CloseTime: func() string {
				if day == "saturday" || day == "sunday" {
					return "18:00"
				}
				return "20:00"
			}(),
			IsClosed: false,
		})
	}
}

func (s *Server) issueToken(userID int64) string {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		s.logger.Error("generate token", zap.Error(err))
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	s.tokens[token] = userID
	s.mu.Unlock()

	return token
}

func (s *Server) userByToken(token string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.tokens[token]
	if !ok {
		return model.User{}, false
	}
	user, ok := s.users[userID]
	return user, ok
}

// authMiddleware проверяет bearer-токен и кладёт пользователя в контекст.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, ok := s.userByToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Logger логирует каждый запрос к демо-бэкенду.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("stub request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
