package report

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
)

// reportBackend отвечает на перечисленные пути и 404 на всё остальное.
func reportBackend(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := routes[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, body)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Not Found"}`)
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestReports(t *testing.T, server *httptest.Server) *Reports {
	t.Helper()

	client := api.NewClient(server.URL, nil)
	logger := zap.NewNop()
	orders := service.NewOrders(client, logger)
	users := service.NewUsers(client, logger)
	products := service.NewProducts(client, logger)
	return NewReports(client, orders, users, products, logger)
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	server := reportBackend(t, nil)
	reports := newTestReports(t, server)

	_, err := reports.Generate(context.Background(), "finance", "week")
	if !errors.Is(err, ErrUnknownReportType) {
		t.Fatalf("Generate() error = %v, want ErrUnknownReportType", err)
	}
}

func TestGenerateFallsBackOnEmptyResponse(t *testing.T) {
	server := reportBackend(t, map[string]string{
		"/admin/dashboard/stats": `null`,
		"/orders/":               `[{"id":1,"total_amount":10.0,"status":"pending"},{"id":2,"total_amount":20.0,"status":"delivered"}]`,
	})
	reports := newTestReports(t, server)

	data, err := reports.Generate(context.Background(), "sales", "week")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	sales, ok := data.(*SalesRangeReport)
	if !ok {
		t.Fatalf("Generate() = %T, want *SalesRangeReport", data)
	}
	if sales.Summary.TotalRevenue != 30.0 {
		t.Errorf("TotalRevenue = %v, want 30", sales.Summary.TotalRevenue)
	}
	if sales.Summary.AverageOrderValue != 15.0 {
		t.Errorf("AverageOrderValue = %v, want 15", sales.Summary.AverageOrderValue)
	}
	if sales.Summary.GrowthRate != 12.5 {
		t.Errorf("GrowthRate = %v, want 12.5", sales.Summary.GrowthRate)
	}
	if len(sales.DailyBreakdown) != 7 {
		t.Errorf("len(DailyBreakdown) = %d, want 7", len(sales.DailyBreakdown))
	}

	generated := reports.GeneratedReports()
	if len(generated) != 1 || generated[0].Type != "sales" || generated[0].DateRange != "week" {
		t.Fatalf("GeneratedReports() = %+v", generated)
	}
}

func TestSalesFromRangeEmptyOrders(t *testing.T) {
	server := reportBackend(t, map[string]string{"/orders/": `[]`})
	reports := newTestReports(t, server)

	sales, err := reports.SalesFromRange(context.Background(), "week")
	if err != nil {
		t.Fatalf("SalesFromRange() error: %v", err)
	}

	// Средний чек на пустой выборке равен нулю, не NaN.
	if sales.Summary.AverageOrderValue != 0 {
		t.Errorf("AverageOrderValue = %v, want 0", sales.Summary.AverageOrderValue)
	}
	if sales.Summary.TotalOrders != 0 {
		t.Errorf("TotalOrders = %d, want 0", sales.Summary.TotalOrders)
	}
}

func TestFinancialCountsDeliveredAsCompleted(t *testing.T) {
	server := reportBackend(t, map[string]string{
		"/orders/": `[
			{"id":1,"total_amount":10.0,"status":"delivered","created_at":"2024-01-10T12:00:00Z"},
			{"id":2,"total_amount":20.0,"status":"pending","created_at":"2024-01-11T12:00:00Z"},
			{"id":3,"total_amount":5.0,"status":"cancelled","created_at":"2024-02-20T12:00:00Z"}
		]`,
	})
	reports := newTestReports(t, server)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	financial, err := reports.Financial(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Financial() error: %v", err)
	}

	s := financial.Summary
	if s.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2 (order outside range excluded)", s.TotalOrders)
	}
	if s.CompletedOrders != 1 || s.CompletedRevenue != 10.0 {
		t.Errorf("completed = %d/%v, want 1/10", s.CompletedOrders, s.CompletedRevenue)
	}
	if s.PendingRevenue != 20.0 {
		t.Errorf("PendingRevenue = %v, want 20", s.PendingRevenue)
	}
	if financial.Period.StartDate != "2024-01-01" || financial.Period.EndDate != "2024-01-31" {
		t.Errorf("Period = %+v", financial.Period)
	}
}

func TestInventoryReportSummary(t *testing.T) {
	server := reportBackend(t, map[string]string{
		"/products/": `[
			{"id":1,"name":"A","stock_quantity":0,"price":4.0,"is_active":true},
			{"id":2,"name":"B","stock_quantity":5,"price":6.0,"cost_price":3.0,"is_active":true},
			{"id":3,"name":"C","stock_quantity":50,"price":2.0,"is_active":false}
		]`,
	})
	reports := newTestReports(t, server)

	inventory, err := reports.Inventory(context.Background())
	if err != nil {
		t.Fatalf("Inventory() error: %v", err)
	}

	s := inventory.Summary
	if s.TotalProducts != 3 || s.ActiveProducts != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.OutOfStockProducts != 1 {
		t.Errorf("OutOfStockProducts = %d, want 1", s.OutOfStockProducts)
	}
	// Нулевой остаток тоже ниже порога дозаказа.
	if s.LowStockProducts != 2 {
		t.Errorf("LowStockProducts = %d, want 2", s.LowStockProducts)
	}
	// 0*4 + 5*3 + 50*2: закупочная цена у B, розничная у остальных.
	if s.TotalInventoryValue != 115.0 {
		t.Errorf("TotalInventoryValue = %v, want 115", s.TotalInventoryValue)
	}

	if inventory.Products[1].Status != model.StockStatusLow {
		t.Errorf("product B status = %q", inventory.Products[1].Status)
	}
}

func TestCustomersReportFiltersRoles(t *testing.T) {
	server := reportBackend(t, map[string]string{
		"/users/": `[
			{"id":1,"email":"admin@x","role":"admin","created_at":"2024-01-05T00:00:00Z"},
			{"id":2,"email":"new@x","role":"customer","created_at":"2024-01-10T00:00:00Z","is_active":true},
			{"id":3,"email":"old@x","role":"customer","created_at":"2023-06-01T00:00:00Z","is_active":true}
		]`,
	})
	reports := newTestReports(t, server)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	customers, err := reports.Customers(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Customers() error: %v", err)
	}

	if customers.Summary.TotalCustomers != 2 {
		t.Errorf("TotalCustomers = %d, want 2 (admin excluded)", customers.Summary.TotalCustomers)
	}
	if customers.Summary.NewCustomers != 1 {
		t.Errorf("NewCustomers = %d, want 1", customers.Summary.NewCustomers)
	}
	if customers.Summary.CustomerGrowth != 50.0 {
		t.Errorf("CustomerGrowth = %v, want 50", customers.Summary.CustomerGrowth)
	}
}
