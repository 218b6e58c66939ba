package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// OrderInput описывает создаваемый заказ.
type OrderInput struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []OrderItemInput   `json:"items,omitempty"`
	Status        *model.OrderStatus `json:"status,omitempty"`
}

// OrderItemInput описывает позицию создаваемого заказа.
type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderPatch описывает изменяемые поля заказа. Нулевые указатели не
// отправляются.
type OrderPatch struct {
	Status        *model.OrderStatus `json:"status,omitempty"`
	CustomerName  *string            `json:"customer_name,omitempty"`
	CustomerEmail *string            `json:"customer_email,omitempty"`
}

// Orders предоставляет CRUD-операции заказов.
type Orders struct {
	client *api.Client
	logger *zap.Logger
}

// NewOrders создаёт сервис заказов.
func NewOrders(client *api.Client, logger *zap.Logger) *Orders {
	return &Orders{
		client: client,
		logger: logger,
	}
}

// List возвращает страницу заказов, опционально отфильтрованную по статусу.
func (o *Orders) List(ctx context.Context, skip, limit int, status model.OrderStatus) ([]model.Order, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	if status != "" {
		query.Set("status", string(status))
	}

	var orders []model.Order
	if err := o.client.Get(ctx, "/orders/", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get возвращает заказ по идентификатору.
func (o *Orders) Get(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := o.client.Get(ctx, fmt.Sprintf("/orders/%d/", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create создаёт заказ.
func (o *Orders) Create(ctx context.Context, input OrderInput) (*model.Order, error) {
	var order model.Order
	if err := o.client.Post(ctx, "/orders/", input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update изменяет заказ.
func (o *Orders) Update(ctx context.Context, id int64, patch OrderPatch) (*model.Order, error) {
	var order model.Order
	if err := o.client.Put(ctx, fmt.Sprintf("/orders/%d/", id), patch, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete удаляет заказ.
func (o *Orders) Delete(ctx context.Context, id int64) error {
	return o.client.Delete(ctx, fmt.Sprintf("/orders/%d/", id))
}
