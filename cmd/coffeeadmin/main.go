// Package main запускает клиент админ-панели кофейни.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/config"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/report"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
	"github.com/mmeshcher/coffeeshop-admin/internal/session"
	"github.com/mmeshcher/coffeeshop-admin/internal/stream"
	"github.com/mmeshcher/coffeeshop-admin/internal/stub"
)

const (
	demoEmail    = "demo@coffeeshop.local"
	demoPassword = "demo"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Demo {
		if cfg.Email == "" {
			cfg.Email = demoEmail
		}
		if cfg.Password == "" {
			cfg.Password = demoPassword
		}

		backend := stub.NewServer(cfg.Email, cfg.Password, logger)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			sugar.Fatalw("demo backend listen error", "error", err.Error())
		}
		cfg.BaseURL = fmt.Sprintf("http://%s/api/v1", listener.Addr())

		server := &http.Server{Handler: backend.Router()}

		g.Go(func() error {
			sugar.Infow("starting demo backend", "addr", listener.Addr().String())
			if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("demo backend error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("demo backend shutdown error: %w", err)
			}
			return nil
		})

		// Периодические уведомления, чтобы websocket-канал было видно
		// в работе.
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					backend.Broadcast(model.Notification{
						ID:        fmt.Sprintf("demo-%d", time.Now().Unix()),
						Title:     "System update",
						Message:   "Demo backend heartbeat",
						Timestamp: time.Now(),
						Type:      "system",
					})
				}
			}
		})
	}

	store, err := session.NewFileStore(cfg.StateFile)
	if err != nil {
		sugar.Fatalw("session state error", "error", err.Error())
	}

	client := api.NewClient(cfg.BaseURL, store)
	sessions := session.NewManager(client, store, logger)
	client.SetUnauthorizedHook(sessions.Invalidate)

	products := service.NewProducts(client, logger)
	orders := service.NewOrders(client, logger)
	users := service.NewUsers(client, logger)
	notifications := service.NewNotifications(client, logger)
	dashboard := report.NewDashboard(client, products, users, orders, logger)

	if user := sessions.Restore(ctx); user != nil {
		sugar.Infow("session restored", "email", user.Email)
	} else {
		if cfg.Email == "" || cfg.Password == "" {
			sugar.Fatal("admin credentials are not configured")
		}
		if _, err := sessions.Login(ctx, cfg.Email, cfg.Password); err != nil {
			sugar.Fatalw("login error", "error", err.Error())
		}
		sugar.Infow("logged in", "email", cfg.Email)
	}

	stats := dashboard.Stats(ctx)
	sugar.Infow("dashboard stats",
		"revenue", stats.TotalRevenue,
		"orders", stats.TotalOrders,
		"customers", stats.TotalCustomers,
		"products", stats.TotalProducts)

	notificationStream := stream.NewManager(stream.Config{
		URL:           websocketURL(client.BaseURL()),
		Tokens:        store,
		Notifications: notifications,
		PollInterval:  cfg.PollInterval,
		Notify: func(n model.Notification) {
			sugar.Infow("notification", "type", n.Type, "title", n.Title, "message", n.Message)
		},
		OnError: func(err error) {
			sugar.Warnw("notification polling error", "error", err.Error())
		},
		Logger: logger,
	})

	g.Go(func() error {
		notificationStream.Start(ctx)
		<-ctx.Done()
		notificationStream.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// websocketURL выводит адрес websocket-эндпоинта из базового адреса API.
func websocketURL(baseURL string) string {
	return strings.Replace(baseURL, "http", "ws", 1) + "/notifications/ws/"
}
