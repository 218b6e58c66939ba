// Package report реализует агрегирующие сервисы панели: аналитику,
// отчёты, сводку главной страницы и экспорт. Выделенных агрегирующих
// эндпоинтов на бэкенде может не быть, тогда показатели считаются из
// первичных ресурсов.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
)

// Overview — сводная аналитика для страницы Analytics.
type Overview struct {
	TotalRevenue      float64              `json:"totalRevenue"`
	TotalOrders       int                  `json:"totalOrders"`
	AverageOrderValue float64              `json:"averageOrderValue"`
	TopProducts       []TopProduct         `json:"topProducts"`
	RecentOrders      []model.Order        `json:"recentOrders"`
	SalesByCategory   []CategoryBreakdown  `json:"salesByCategory"`
	DailySales        []DailySales         `json:"dailySales"`
}

// CategoryBreakdown — вклад категории в сумму продаж.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// SalesAnalytics — показатели продаж за период.
type SalesAnalytics struct {
	TotalRevenue      float64      `json:"totalRevenue"`
	TotalOrders       int          `json:"totalOrders"`
	AverageOrderValue float64      `json:"averageOrderValue"`
	Period            string       `json:"period"`
	DailySales        []DailySales `json:"dailySales"`
}

// CustomerAnalytics — показатели клиентской базы.
type CustomerAnalytics struct {
	TotalCustomers        int     `json:"totalCustomers"`
	NewCustomersThisMonth int     `json:"newCustomersThisMonth"`
	CustomerGrowthRate    float64 `json:"customerGrowthRate"`
}

// ProductAnalytics — показатели каталога.
type ProductAnalytics struct {
	TotalProducts      int          `json:"totalProducts"`
	ActiveProducts     int          `json:"activeProducts"`
	LowStockProducts   int          `json:"lowStockProducts"`
	TopSellingProducts []TopProduct `json:"topSellingProducts"`
}

// OrderAnalytics — показатели заказов за период.
type OrderAnalytics struct {
	TotalOrders        int                       `json:"totalOrders"`
	PendingOrders      int                       `json:"pendingOrders"`
	DeliveredOrders    int                       `json:"deliveredOrders"`
	CancelledOrders    int                       `json:"cancelledOrders"`
	StatusDistribution map[model.OrderStatus]int `json:"orderStatusDistribution"`
}

// Analytics считает аналитические показатели, предпочитая эндпоинты
// /admin/analytics/* и переключаясь на вычисление из первичных ресурсов,
// когда эндпоинт недоступен.
type Analytics struct {
	client     *api.Client
	orders     *service.Orders
	users      *service.Users
	products   *service.Products
	logger     *zap.Logger
	onFallback service.FallbackFunc
	now        func() time.Time
}

// NewAnalytics создаёт аналитический сервис.
func NewAnalytics(client *api.Client, orders *service.Orders, users *service.Users, products *service.Products, logger *zap.Logger) *Analytics {
	return &Analytics{
		client:   client,
		orders:   orders,
		users:    users,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// SetFallbackHook регистрирует наблюдателя фолбэков.
func (a *Analytics) SetFallbackHook(fn service.FallbackFunc) {
	a.onFallback = fn
}

func (a *Analytics) fallback(endpoint string) {
	a.logger.Warn("analytics endpoint not available, computing locally", zap.String("endpoint", endpoint))
	if a.onFallback != nil {
		a.onFallback(endpoint)
	}
}

// Get возвращает сводную аналитику за указанный диапазон.
func (a *Analytics) Get(ctx context.Context, timeRange string) (*Overview, error) {
	query := queryValues("time_range", timeRange)

	var overview Overview
	if err := a.client.Get(ctx, "/admin/analytics/", query, &overview); err == nil {
		return &overview, nil
	}

	a.fallback("/admin/analytics/")

	sales, err := a.Sales(ctx, timeRange)
	if err != nil {
		return nil, err
	}
	products, err := a.Products(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := a.Orders(ctx, timeRange)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalRevenue:      sales.TotalRevenue,
		TotalOrders:       orders.TotalOrders,
		AverageOrderValue: sales.AverageOrderValue,
		TopProducts:       products.TopSellingProducts,
		RecentOrders:      []model.Order{},
		SalesByCategory:   []CategoryBreakdown{},
		DailySales:        sales.DailySales,
	}, nil
}

// Sales возвращает показатели продаж. Фолбэк суммирует заказы; на пустом
// списке выручка и средний чек равны нулю.
func (a *Analytics) Sales(ctx context.Context, period string) (*SalesAnalytics, error) {
	var sales SalesAnalytics
	if err := a.client.Get(ctx, "/admin/analytics/sales/", queryValues("period", period), &sales); err == nil {
		return &sales, nil
	}

	a.fallback("/admin/analytics/sales/")

	orders, err := a.orders.List(ctx, 0, 1000, "")
	if err != nil {
		return nil, err
	}

	var totalRevenue float64
	for _, o := range orders {
		totalRevenue += o.TotalAmount
	}

	averageOrderValue := 0.0
	if len(orders) > 0 {
		averageOrderValue = totalRevenue / float64(len(orders))
	}

	return &SalesAnalytics{
		TotalRevenue:      totalRevenue,
		TotalOrders:       len(orders),
		AverageOrderValue: averageOrderValue,
		Period:            period,
		DailySales:        []DailySales{},
	}, nil
}

// Customers возвращает показатели клиентской базы. Фолбэк считает
// пользователей с ролью customer.
func (a *Analytics) Customers(ctx context.Context) (*CustomerAnalytics, error) {
	var customers CustomerAnalytics
	if err := a.client.Get(ctx, "/admin/analytics/customers/", nil, &customers); err == nil {
		return &customers, nil
	}

	a.fallback("/admin/analytics/customers/")

	users, err := a.users.List(ctx, 0, 1000)
	if err != nil {
		return nil, err
	}

	oneMonthAgo := a.now().AddDate(0, -1, 0)

	result := &CustomerAnalytics{}
	for _, u := range users {
		if u.Role == model.RoleCustomer {
			result.TotalCustomers++
		}
		if u.CreatedAt.After(oneMonthAgo) {
			result.NewCustomersThisMonth++
		}
	}
	return result, nil
}

// Products возвращает показатели каталога.
func (a *Analytics) Products(ctx context.Context) (*ProductAnalytics, error) {
	var analytics ProductAnalytics
	if err := a.client.Get(ctx, "/admin/analytics/products/", nil, &analytics); err == nil {
		return &analytics, nil
	}

	a.fallback("/admin/analytics/products/")

	products, err := a.products.List(ctx, 0, 1000, "", true)
	if err != nil {
		return nil, err
	}

	result := &ProductAnalytics{
		TotalProducts:      len(products),
		TopSellingProducts: []TopProduct{},
	}
	for _, p := range products {
		if p.IsActive {
			result.ActiveProducts++
		}
		if p.StockQuantity > 0 && p.StockQuantity < service.ReorderLevelOrDefault(p.ReorderLevel) {
			result.LowStockProducts++
		}
	}
	return result, nil
}

// Orders возвращает показатели заказов и распределение по статусам.
func (a *Analytics) Orders(ctx context.Context, period string) (*OrderAnalytics, error) {
	var analytics OrderAnalytics
	if err := a.client.Get(ctx, "/admin/analytics/orders/", queryValues("period", period), &analytics); err == nil {
		return &analytics, nil
	}

	a.fallback("/admin/analytics/orders/")

	orders, err := a.orders.List(ctx, 0, 1000, "")
	if err != nil {
		return nil, err
	}

	result := &OrderAnalytics{
		TotalOrders:        len(orders),
		StatusDistribution: make(map[model.OrderStatus]int),
	}
	for _, o := range orders {
		result.StatusDistribution[o.Status]++
		switch o.Status {
		case model.OrderStatusPending:
			result.PendingOrders++
		case model.OrderStatusDelivered:
			result.DeliveredOrders++
		case model.OrderStatusCancelled:
			result.CancelledOrders++
		}
	}
	return result, nil
}
