package stub

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
	"github.com/mmeshcher/coffeeshop-admin/internal/session"
)

const (
	testEmail    = "admin@test.local"
	testPassword = "secret"
)

type testBackend struct {
	backend *Server
	client  *api.Client
	store   *session.FileStore
	mgr     *session.Manager
}

func newTestBackend(t *testing.T) testBackend {
	t.Helper()

	backend := NewServer(testEmail, testPassword, zap.NewNop())
	server := httptest.NewServer(backend.Router())
	t.Cleanup(server.Close)

	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	client := api.NewClient(server.URL+"/api/v1", store)
	mgr := session.NewManager(client, store, zap.NewNop())
	client.SetUnauthorizedHook(mgr.Invalidate)

	return testBackend{backend: backend, client: client, store: store, mgr: mgr}
}

func login(t *testing.T, mgr *session.Manager) {
	t.Helper()
	if _, err := mgr.Login(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
}

func TestLoginAndCurrentUser(t *testing.T) {
	tb := newTestBackend(t)
	mgr := tb.mgr

	if _, err := mgr.Login(context.Background(), testEmail, "wrong"); err != session.ErrInvalidCredentials {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}

	login(t, mgr)

	user, err := mgr.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.Email != testEmail || user.Role != model.RoleAdmin {
		t.Fatalf("user = %+v", user)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	tb := newTestBackend(t)

	var products []model.Product
	err := tb.client.Get(context.Background(), "/products/", nil, &products)
	if !api.IsUnauthorized(err) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	tb := newTestBackend(t)
	login(t, tb.mgr)

	products := service.NewProducts(tb.client, zap.NewNop())
	ctx := context.Background()

	name := "Flat White"
	price := 4.0
	category := "coffee"
	created, err := products.Create(ctx, service.ProductInput{Name: &name, Price: &price, Category: &category}, nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == 0 || created.Name != "Flat White" {
		t.Fatalf("created = %+v", created)
	}

	newPrice := 4.5
	updated, err := products.Update(ctx, created.ID, service.ProductInput{Price: &newPrice}, nil)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Price != 4.5 || updated.Name != "Flat White" {
		t.Fatalf("updated = %+v", updated)
	}

	if err := products.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := products.Get(ctx, created.ID); !api.IsNotFound(err) {
		t.Fatalf("Get() after delete = %v, want not found", err)
	}
}

func TestProductFiltering(t *testing.T) {
	tb := newTestBackend(t)
	login(t, tb.mgr)

	products := service.NewProducts(tb.client, zap.NewNop())

	coffee, err := products.List(context.Background(), 0, 100, "coffee", false)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for _, p := range coffee {
		if p.Category != "coffee" {
			t.Errorf("category filter leaked %+v", p)
		}
	}

	available, err := products.List(context.Background(), 0, 100, "", true)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for _, p := range available {
		if !p.IsAvailable {
			t.Errorf("availability filter leaked %+v", p)
		}
	}
}

// TestInventoryFallbackAgainstStub проверяет связку целиком: складских
// эндпоинтов у бэкенда нет, и складской сервис выводит строки из
// каталога.
func TestInventoryFallbackAgainstStub(t *testing.T) {
	tb := newTestBackend(t)
	login(t, tb.mgr)

	products := service.NewProducts(tb.client, zap.NewNop())
	inventory := service.NewInventory(tb.client, products, zap.NewNop())

	items, err := inventory.Items(context.Background())
	if err != nil {
		t.Fatalf("Items() error: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("no inventory items derived from seeded catalog")
	}

	for _, item := range items {
		if item.Unit == "" {
			t.Errorf("item %q has no unit", item.Name)
		}
		if item.MinStock == 0 {
			t.Errorf("item %q has no min stock", item.Name)
		}
	}
}

func TestOrderStatusValidation(t *testing.T) {
	tb := newTestBackend(t)
	login(t, tb.mgr)

	orders := service.NewOrders(tb.client, zap.NewNop())

	bad := model.OrderStatus("shipped")
	_, err := orders.Update(context.Background(), 1, service.OrderPatch{Status: &bad})
	if !api.IsBadRequest(err) {
		t.Fatalf("Update() error = %v, want bad request", err)
	}

	good := model.OrderStatusReady
	updated, err := orders.Update(context.Background(), 1, service.OrderPatch{Status: &good})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Status != model.OrderStatusReady {
		t.Fatalf("status = %q", updated.Status)
	}
}

func TestWebsocketPushOnNewOrder(t *testing.T) {
	tb := newTestBackend(t)
	login(t, tb.mgr)

	wsURL := strings.Replace(tb.client.BaseURL(), "http", "ws", 1) + "/notifications/ws/"

	// Соединение без токена отклоняется до апгрейда.
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("dial without token must fail")
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+tb.store.Token(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	orders := service.NewOrders(tb.client, zap.NewNop())
	if _, err := orders.Create(context.Background(), service.OrderInput{
		CustomerName:  "Test Customer",
		CustomerEmail: "test@customer.local",
	}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var notification model.Notification
	if err := conn.ReadJSON(&notification); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if notification.Type != "order" || !strings.Contains(notification.Message, "Test Customer") {
		t.Fatalf("notification = %+v", notification)
	}
}
