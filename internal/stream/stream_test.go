package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
)

func TestReconnectSchedule(t *testing.T) {
	b := newBackoff()

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
	}

	for i, expected := range want {
		delay, stop := b.Next()
		if stop {
			t.Fatalf("backoff stopped after %d attempts, want %d", i, len(want))
		}
		if delay != expected {
			t.Fatalf("attempt %d delay = %v, want %v", i+1, delay, expected)
		}
	}

	// Шестой попытки нет: дальше включается опрос.
	if _, stop := b.Next(); !stop {
		t.Fatal("backoff must stop after 5 attempts")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewManager(Config{
		URL:    "ws://127.0.0.1:1/notifications/ws/",
		Logger: zap.NewNop(),
	})

	m.Stop()
	m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)
	m.Stop()
	m.Stop()
}

func TestStopCancelsScheduledReconnect(t *testing.T) {
	m := NewManager(Config{
		// Недоступный адрес: первый dial провалится и поставит таймер.
		URL:    "ws://127.0.0.1:1/notifications/ws/",
		Logger: zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)

	m.mu.Lock()
	timerSet := m.reconnectTimer != nil
	m.mu.Unlock()
	if !timerSet {
		t.Fatal("reconnect timer not scheduled after failed dial")
	}

	m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reconnectTimer != nil {
		t.Fatal("reconnect timer survived Stop")
	}
}

func TestPollingDeliversUnread(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications/unread/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `[{"id":"1","title":"New order received","type":"order"}]`)
	}))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, nil)
	notifications := service.NewNotifications(client, zap.NewNop())

	var mu sync.Mutex
	var received []model.Notification

	m := NewManager(Config{
		URL:           "ws://127.0.0.1:1/notifications/ws/",
		Notifications: notifications,
		PollInterval:  10 * time.Millisecond,
		Notify: func(n model.Notification) {
			mu.Lock()
			received = append(received, n)
			mu.Unlock()
		},
		Logger: zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.startPolling(ctx)
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no notifications delivered by polling")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0].ID != "1" || received[0].Type != "order" {
		t.Fatalf("received = %+v", received[0])
	}
}

func TestPollingStopsOnMissingEndpoint(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Not Found"}`)
	}))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, nil)
	notifications := service.NewNotifications(client, zap.NewNop())

	errs := 0
	m := NewManager(Config{
		URL:           "ws://127.0.0.1:1/notifications/ws/",
		Notifications: notifications,
		PollInterval:  10 * time.Millisecond,
		OnError:       func(error) { errs++ },
		Logger:        zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.startPolling(ctx)
	defer m.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// Опрос молча остановился после первого 404.
	if calls != 1 {
		t.Fatalf("poll calls = %d, want 1", calls)
	}
	if errs != 0 {
		t.Fatalf("OnError called %d times for 404, want 0", errs)
	}
}
