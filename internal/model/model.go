// Package model содержит доменные сущности админ-панели кофейни.
package model

import "time"

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// User представляет учётную запись пользователя бэкенда.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Session связывает токен доступа с пользователем, полученным при входе.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Product описывает позицию каталога кофейни.
// Необязательные поля объявлены указателями: отсутствующее значение
// не должно сериализоваться как ноль.
type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	Category      string     `json:"category"`
	StockQuantity int        `json:"stock_quantity"`
	ReorderLevel  *int       `json:"reorder_level,omitempty"`
	CostPrice     *float64   `json:"cost_price,omitempty"`
	SKU           *string    `json:"sku,omitempty"`
	Supplier      *string    `json:"supplier,omitempty"`
	IsActive      bool       `json:"is_active"`
	IsAvailable   bool       `json:"is_available"`
	ImageURL      string     `json:"image_url,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// OrderStatus описывает статус заказа. Переходы между статусами не
// упорядочены: клиент может выставить любой статус, контроль на бэкенде.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order описывает заказ покупателя.
type Order struct {
	ID            int64       `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	ItemsCount    int         `json:"items_count"`
	TotalAmount   float64     `json:"total_amount"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// StockStatus описывает состояние остатка складской позиции.
type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusIn  StockStatus = "in_stock"
)

// InventoryItem — упрощённая строка склада для страницы инвентаря.
type InventoryItem struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Stock       int        `json:"stock"`
	Unit        string     `json:"unit"`
	MinStock    int        `json:"min_stock"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// InventoryDetail — детальная строка склада с закупочными данными.
type InventoryDetail struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	SKU          string      `json:"sku"`
	CurrentStock int         `json:"current_stock"`
	ReorderLevel int         `json:"reorder_level"`
	UnitCost     float64     `json:"unit_cost"`
	UnitPrice    float64     `json:"unit_price"`
	Supplier     string      `json:"supplier"`
	Status       StockStatus `json:"status"`
	LastUpdated  *time.Time  `json:"last_updated,omitempty"`
}

// LowStockItem — строка отчёта о позициях ниже порога дозаказа.
type LowStockItem struct {
	ID           int64       `json:"id"`
	ProductName  string      `json:"product_name"`
	CurrentStock int         `json:"current_stock"`
	ReorderLevel int         `json:"reorder_level"`
	Status       StockStatus `json:"status"`
}

// StockMovement описывает движение остатка по позиции.
type StockMovement struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryValue — агрегированная стоимость склада.
type InventoryValue struct {
	TotalInventoryValue float64 `json:"totalInventoryValue"`
	TotalItems          int     `json:"totalItems"`
	TotalProducts       int     `json:"totalProducts"`
}

// Notification описывает уведомление панели.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Type      string    `json:"type"`
}

// NotificationSettings — настройки доставки уведомлений.
type NotificationSettings struct {
	EmailEnabled bool `json:"email_enabled"`
	PushEnabled  bool `json:"push_enabled"`
	OrderAlerts  bool `json:"order_alerts"`
	StockAlerts  bool `json:"stock_alerts"`
}

// Settings описывает настройки магазина.
type Settings struct {
	ShopName    string  `json:"shop_name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Currency    string  `json:"currency"`
	TaxRate     float64 `json:"tax_rate"`
	OrderPrefix string  `json:"order_prefix"`
}

// BusinessHours описывает часы работы на один день недели.
type BusinessHours struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

// DashboardStats — сводные показатели для главной страницы панели.
type DashboardStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalCustomers int     `json:"totalCustomers"`
	TotalProducts  int     `json:"totalProducts"`
}
