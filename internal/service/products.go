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

// ProductInput описывает создаваемые или изменяемые поля товара.
// Нулевые указатели означают «поле не трогать»: такие поля не попадают
// ни в JSON-тело, ни в multipart-форму.
type ProductInput struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Category      *string  `json:"category,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
	ReorderLevel  *int     `json:"reorder_level,omitempty"`
	CostPrice     *float64 `json:"cost_price,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
}

func (in ProductInput) formFields() map[string]string {
	fields := make(map[string]string)

	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = strconv.FormatFloat(*in.Price, 'f', -1, 64)
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.StockQuantity != nil {
		fields["stock_quantity"] = strconv.Itoa(*in.StockQuantity)
	}
	if in.ReorderLevel != nil {
		fields["reorder_level"] = strconv.Itoa(*in.ReorderLevel)
	}
	if in.CostPrice != nil {
		fields["cost_price"] = strconv.FormatFloat(*in.CostPrice, 'f', -1, 64)
	}
	if in.IsActive != nil {
		fields["is_active"] = strconv.FormatBool(*in.IsActive)
	}
	if in.IsAvailable != nil {
		fields["is_available"] = strconv.FormatBool(*in.IsAvailable)
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}

	return fields
}

// Products предоставляет CRUD-операции каталога товаров.
type Products struct {
	client *api.Client
	logger *zap.Logger
}

// NewProducts создаёт сервис каталога товаров.
func NewProducts(client *api.Client, logger *zap.Logger) *Products {
	return &Products{
		client: client,
		logger: logger,
	}
}

// List возвращает страницу каталога. Пустая категория означает все
// категории.
func (p *Products) List(ctx context.Context, skip, limit int, category string, availableOnly bool) ([]model.Product, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("available_only", strconv.FormatBool(availableOnly))
	if category != "" {
		query.Set("category", category)
	}

	var products []model.Product
	if err := p.client.Get(ctx, "/products/", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get возвращает товар по идентификатору.
func (p *Products) Get(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := p.client.Get(ctx, fmt.Sprintf("/products/%d/", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create создаёт товар. При наличии изображения тело передаётся как
// multipart-форма, иначе обычным JSON.
func (p *Products) Create(ctx context.Context, input ProductInput, image *api.FileUpload) (*model.Product, error) {
	var product model.Product

	if image != nil {
		if err := p.client.PostMultipart(ctx, "/products/", input.formFields(), image, &product); err != nil {
			return nil, err
		}
		return &product, nil
	}

	if err := p.client.Post(ctx, "/products/", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update изменяет товар. При наличии изображения тело передаётся как
// multipart-форма, иначе обычным JSON.
func (p *Products) Update(ctx context.Context, id int64, input ProductInput, image *api.FileUpload) (*model.Product, error) {
	var product model.Product
	path := fmt.Sprintf("/products/%d/", id)

	if image != nil {
		if err := p.client.PutMultipart(ctx, path, input.formFields(), image, &product); err != nil {
			return nil, err
		}
		return &product, nil
	}

	if err := p.client.Put(ctx, path, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete удаляет товар.
func (p *Products) Delete(ctx context.Context, id int64) error {
	return p.client.Delete(ctx, fmt.Sprintf("/products/%d/", id))
}
