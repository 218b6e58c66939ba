// Package validation содержит проверки справочных значений панели.
package validation

import "github.com/mmeshcher/coffeeshop-admin/internal/model"

var orderStatuses = map[model.OrderStatus]struct{}{
	model.OrderStatusPending:   {},
	model.OrderStatusConfirmed: {},
	model.OrderStatusPreparing: {},
	model.OrderStatusReady:     {},
	model.OrderStatusDelivered: {},
	model.OrderStatusCancelled: {},
}

var reportTypes = map[string]struct{}{
	"sales":     {},
	"products":  {},
	"customers": {},
	"orders":    {},
}

// IsValidOrderStatus сообщает, входит ли статус в справочник статусов заказа.
func IsValidOrderStatus(status model.OrderStatus) bool {
	_, ok := orderStatuses[status]
	return ok
}

// IsValidReportType сообщает, поддерживается ли указанный тип отчёта.
func IsValidReportType(reportType string) bool {
	_, ok := reportTypes[reportType]
	return ok
}
