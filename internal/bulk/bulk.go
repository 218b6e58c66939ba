// Package bulk реализует массовые операции над выбранными ресурсами с
// ограниченным параллелизмом.
package bulk

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/coffeeshop-admin/internal/model"
	"github.com/mmeshcher/coffeeshop-admin/internal/report"
	"github.com/mmeshcher/coffeeshop-admin/internal/service"
	"github.com/mmeshcher/coffeeshop-admin/internal/validation"
)

// defaultLimit ограничивает число одновременных запросов массовой
// операции.
const defaultLimit = 8

var (
	// ErrBulkUpdate возвращается, когда хотя бы одно изменение массовой
	// операции не прошло. Детали отдельных ошибок остаются в логе.
	ErrBulkUpdate = errors.New("some updates failed")

	// ErrBulkGenerate возвращается, когда не удалось построить хотя бы
	// один из запрошенных отчётов.
	ErrBulkGenerate = errors.New("some reports failed")

	// ErrInvalidStatus возвращается для нераспознанного статуса заказа.
	ErrInvalidStatus = errors.New("invalid order status")
)

// ProductChange описывает массовое изменение товаров. Нулевые поля не
// применяются.
type ProductChange struct {
	// Available переключает доступность товара.
	Available *bool
	// Category переносит товары в категорию.
	Category string
	// StockDelta прибавляется к остатку; итог не опускается ниже нуля.
	StockDelta int
}

// Runner выполняет массовые операции, ограничивая параллелизм.
type Runner struct {
	limit  int
	logger *zap.Logger
}

// NewRunner создаёт исполнитель массовых операций. Нулевой limit
// снимает ограничение параллелизма, отрицательный заменяется значением
// по умолчанию.
func NewRunner(limit int, logger *zap.Logger) *Runner {
	if limit < 0 {
		limit = defaultLimit
	}
	return &Runner{
		limit:  limit,
		logger: logger,
	}
}

func (r *Runner) group() *errgroup.Group {
	g := &errgroup.Group{}
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	return g
}

// UpdateOrderStatuses переводит выбранные заказы в указанный статус.
// Возвращает число обновлённых заказов; при любой отказавшей позиции —
// ErrBulkUpdate без частичного счёта.
func (r *Runner) UpdateOrderStatuses(ctx context.Context, orders *service.Orders, ids []int64, status model.OrderStatus) (int, error) {
	if !validation.IsValidOrderStatus(status) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	g := r.group()
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := orders.Update(ctx, id, service.OrderPatch{Status: &status}); err != nil {
				r.logger.Error("bulk order update failed", zap.Int64("order", id), zap.Error(err))
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, ErrBulkUpdate
	}

	r.logger.Info("bulk order update finished",
		zap.Int("count", len(ids)),
		zap.String("status", string(status)))
	return len(ids), nil
}

// UpdateProducts применяет изменение к каждому выбранному товару.
// Остаток после поправки не опускается ниже нуля. Возвращает число
// обновлённых товаров; при любой отказавшей позиции — ErrBulkUpdate.
func (r *Runner) UpdateProducts(ctx context.Context, products *service.Products, selected []model.Product, change ProductChange) (int, error) {
	g := r.group()
	for _, p := range selected {
		p := p
		g.Go(func() error {
			input := service.ProductInput{
				IsAvailable: change.Available,
			}
			if change.Category != "" {
				category := change.Category
				input.Category = &category
			}
			if change.StockDelta != 0 {
				stock := p.StockQuantity + change.StockDelta
				if stock < 0 {
					stock = 0
				}
				input.StockQuantity = &stock
			}

			if _, err := products.Update(ctx, p.ID, input, nil); err != nil {
				r.logger.Error("bulk product update failed", zap.Int64("product", p.ID), zap.Error(err))
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, ErrBulkUpdate
	}

	r.logger.Info("bulk product update finished", zap.Int("count", len(selected)))
	return len(selected), nil
}

// GenerateReports строит отчёты всех запрошенных типов за диапазон.
// Возвращает построенные отчёты по типам; при любом отказе —
// ErrBulkGenerate.
func (r *Runner) GenerateReports(ctx context.Context, reports *report.Reports, types []string, dateRange string) (map[string]any, error) {
	results := make([]any, len(types))

	g := r.group()
	for i, reportType := range types {
		i, reportType := i, reportType
		g.Go(func() error {
			data, err := reports.Generate(ctx, reportType, dateRange)
			if err != nil {
				r.logger.Error("bulk report generation failed", zap.String("type", reportType), zap.Error(err))
				return err
			}
			results[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, ErrBulkGenerate
	}

	generated := make(map[string]any, len(types))
	for i, reportType := range types {
		generated[reportType] = results[i]
	}
	return generated, nil
}
