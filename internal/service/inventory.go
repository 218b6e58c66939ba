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

// defaultReorderLevel подставляется для товаров без заданного порога
// дозаказа.
const defaultReorderLevel = 10

var categoryUnits = map[string]string{
	"coffee":      "kg",
	"tea":         "kg",
	"dairy":       "liters",
	"ingredients": "kg",
	"supplies":    "pieces",
}

// UnitForCategory возвращает единицу измерения для категории товара.
// Неизвестные категории считаются штучными.
func UnitForCategory(category string) string {
	if unit, ok := categoryUnits[category]; ok {
		return unit
	}
	return "pieces"
}

// StockStatusFor выводит состояние остатка из текущего количества и
// порога дозаказа.
func StockStatusFor(stock, reorderLevel int) model.StockStatus {
	if stock == 0 {
		return model.StockStatusOut
	}
	if stock <= reorderLevel {
		return model.StockStatusLow
	}
	return model.StockStatusIn
}

// InventoryPatch описывает изменяемые поля складской позиции.
type InventoryPatch struct {
	CurrentStock *int `json:"current_stock,omitempty"`
	ReorderLevel *int `json:"reorder_level,omitempty"`
}

// MovementInput описывает регистрируемое движение остатка.
type MovementInput struct {
	ProductID int64  `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason,omitempty"`
}

// Inventory предоставляет складские операции. Выделенного складского
// бэкенда может не быть: тогда строки склада выводятся из каталога
// товаров, а обновления транслируются в обновления товара.
type Inventory struct {
	client     *api.Client
	products   *Products
	logger     *zap.Logger
	onFallback FallbackFunc
}

// NewInventory создаёт складской сервис поверх каталога товаров.
func NewInventory(client *api.Client, products *Products, logger *zap.Logger) *Inventory {
	return &Inventory{
		client:   client,
		products: products,
		logger:   logger,
	}
}

// SetFallbackHook регистрирует наблюдателя фолбэков.
func (i *Inventory) SetFallbackHook(fn FallbackFunc) {
	i.onFallback = fn
}

func (i *Inventory) fallback(endpoint string) {
	i.logger.Warn("endpoint not available, using fallback", zap.String("endpoint", endpoint))
	if i.onFallback != nil {
		i.onFallback(endpoint)
	}
}

// Items возвращает упрощённые строки склада. Без складского эндпоинта
// строки выводятся из списка товаров.
func (i *Inventory) Items(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := i.client.Get(ctx, "/admin/inventory/", nil, &items); err == nil {
		return items, nil
	}

	i.fallback("/admin/inventory/")

	products, err := i.products.List(ctx, 0, listLimit, "", true)
	if err != nil {
		return nil, err
	}

	items = make([]model.InventoryItem, 0, len(products))
	for _, p := range products {
		items = append(items, model.InventoryItem{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Stock:       p.StockQuantity,
			Unit:        UnitForCategory(p.Category),
			MinStock:    ReorderLevelOrDefault(p.ReorderLevel),
			LastUpdated: p.UpdatedAt,
		})
	}
	return items, nil
}

// DetailedItems возвращает детальные строки склада с закупочными данными.
func (i *Inventory) DetailedItems(ctx context.Context, skip, limit int) ([]model.InventoryDetail, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var details []model.InventoryDetail
	if err := i.client.Get(ctx, "/admin/inventory/", query, &details); err == nil {
		return details, nil
	}

	i.fallback("/admin/inventory/")

	products, err := i.products.List(ctx, skip, limit, "", true)
	if err != nil {
		return nil, err
	}

	details = make([]model.InventoryDetail, 0, len(products))
	for _, p := range products {
		reorder := ReorderLevelOrDefault(p.ReorderLevel)

		sku := fmt.Sprintf("SKU-%d", p.ID)
		if p.SKU != nil {
			sku = *p.SKU
		}
		supplier := "Unknown"
		if p.Supplier != nil {
			supplier = *p.Supplier
		}
		unitCost := 0.0
		if p.CostPrice != nil {
			unitCost = *p.CostPrice
		}

		details = append(details, model.InventoryDetail{
			ID:           p.ID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			SKU:          sku,
			CurrentStock: p.StockQuantity,
			ReorderLevel: reorder,
			UnitCost:     unitCost,
			UnitPrice:    p.Price,
			Supplier:     supplier,
			Status:       StockStatusFor(p.StockQuantity, reorder),
			LastUpdated:  p.UpdatedAt,
		})
	}
	return details, nil
}

// LowStock возвращает позиции с остатком ниже порога дозаказа.
func (i *Inventory) LowStock(ctx context.Context) ([]model.LowStockItem, error) {
	var items []model.LowStockItem
	if err := i.client.Get(ctx, "/admin/inventory/low-stock/", nil, &items); err == nil {
		return items, nil
	}

	i.fallback("/admin/inventory/low-stock/")

	products, err := i.products.List(ctx, 0, listLimit, "", true)
	if err != nil {
		return nil, err
	}

	items = make([]model.LowStockItem, 0)
	for _, p := range products {
		reorder := ReorderLevelOrDefault(p.ReorderLevel)
		if p.StockQuantity < reorder {
			items = append(items, model.LowStockItem{
				ID:           p.ID,
				ProductName:  p.Name,
				CurrentStock: p.StockQuantity,
				ReorderLevel: reorder,
				Status:       model.StockStatusLow,
			})
		}
	}
	return items, nil
}

// UpdateStock выставляет остаток позиции. Без складского эндпоинта
// обновляется остаток товара.
func (i *Inventory) UpdateStock(ctx context.Context, id int64, stock int) error {
	body := map[string]int{"stock": stock}
	if err := i.client.Put(ctx, fmt.Sprintf("/admin/inventory/%d/", id), body, nil); err == nil {
		return nil
	}

	i.fallback(fmt.Sprintf("/admin/inventory/%d/", id))

	_, err := i.products.Update(ctx, id, ProductInput{StockQuantity: &stock}, nil)
	return err
}

// UpdateItem изменяет складскую позицию. Без складского эндпоинта
// изменения транслируются в товар.
func (i *Inventory) UpdateItem(ctx context.Context, id int64, patch InventoryPatch) error {
	if err := i.client.Put(ctx, fmt.Sprintf("/admin/inventory/%d/", id), patch, nil); err == nil {
		return nil
	}

	i.fallback(fmt.Sprintf("/admin/inventory/%d/", id))

	_, err := i.products.Update(ctx, id, ProductInput{
		StockQuantity: patch.CurrentStock,
		ReorderLevel:  patch.ReorderLevel,
	}, nil)
	return err
}

// AddMovement регистрирует движение остатка. Фолбэка нет: без поддержки
// на бэкенде данные не выдумываются.
func (i *Inventory) AddMovement(ctx context.Context, input MovementInput) (*model.StockMovement, error) {
	var movement model.StockMovement
	if err := i.client.Post(ctx, "/admin/inventory/movements/", input, &movement); err != nil {
		i.logger.Warn("stock movement endpoint not available", zap.Error(err))
		return nil, ErrFeatureUnavailable
	}
	return &movement, nil
}

// Movements возвращает историю движений. Нулевой productID означает все
// товары. Недоступный эндпоинт даёт пустую историю, а не ошибку.
func (i *Inventory) Movements(ctx context.Context, productID int64, skip, limit int) ([]model.StockMovement, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	if productID != 0 {
		query.Set("product_id", strconv.FormatInt(productID, 10))
	}

	var movements []model.StockMovement
	if err := i.client.Get(ctx, "/admin/inventory/movements/", query, &movements); err != nil {
		i.fallback("/admin/inventory/movements/")
		return []model.StockMovement{}, nil
	}
	return movements, nil
}

// Value возвращает агрегированную стоимость склада. Без эндпоинта она
// считается из каталога: остаток умножается на закупочную цену, а при
// её отсутствии на розничную.
func (i *Inventory) Value(ctx context.Context) (*model.InventoryValue, error) {
	var value model.InventoryValue
	if err := i.client.Get(ctx, "/admin/inventory/value/", nil, &value); err == nil {
		return &value, nil
	}

	i.fallback("/admin/inventory/value/")

	products, err := i.products.List(ctx, 0, listLimit, "", true)
	if err != nil {
		return nil, err
	}

	result := &model.InventoryValue{TotalProducts: len(products)}
	for _, p := range products {
		cost := p.Price
		if p.CostPrice != nil {
			cost = *p.CostPrice
		}
		result.TotalInventoryValue += float64(p.StockQuantity) * cost
		result.TotalItems += p.StockQuantity
	}
	return result, nil
}

// ReorderLevelOrDefault возвращает порог дозаказа товара либо значение
// по умолчанию, когда порог не задан.
func ReorderLevelOrDefault(level *int) int {
	if level != nil {
		return *level
	}
	return defaultReorderLevel
}
