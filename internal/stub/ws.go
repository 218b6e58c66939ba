package stub

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub рассылает уведомления всем открытым websocket-соединениям.
type hub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *hub) broadcast(n model.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(n); err != nil {
			h.logger.Warn("websocket write failed", zap.Error(err))
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// websocketHandler авторизует соединение токеном из query и держит его
// открытым для push-уведомлений.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, ok := s.userByToken(token); !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.hub.add(conn)

	// Читающая горутина нужна только чтобы заметить разрыв: клиент
	// ничего не присылает.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast отправляет уведомление во все открытые соединения и
// сохраняет его в списке уведомлений.
func (s *Server) Broadcast(n model.Notification) {
	s.mu.Lock()
	s.notifications = append([]model.Notification{n}, s.notifications...)
	s.mu.Unlock()

	s.hub.broadcast(n)
}

func (s *Server) notifyOrder(order model.Order) {
	s.Broadcast(model.Notification{
		ID:        strconv.FormatInt(order.ID, 10) + "-order",
		Title:     "New order received",
		Message:   "Order #" + strconv.FormatInt(order.ID, 10) + " from " + order.CustomerName,
		Timestamp: time.Now(),
		Read:      false,
		Type:      "order",
	})
}
