// Package service реализует обращения к ресурсам бэкенда и вычисляемые
// фолбэки для эндпоинтов, которых на бэкенде нет.
package service

import "errors"

// ErrFeatureUnavailable возвращается для операций, у которых нет
// поддержки на бэкенде и для которых данные не выдумываются.
var ErrFeatureUnavailable = errors.New("feature not available")

// FallbackFunc вызывается каждый раз, когда сервис подменяет ответ
// отсутствующего эндпоинта вычислением или заглушкой. Аргумент — путь
// эндпоинта, для которого сработал фолбэк. Хук позволяет отличать
// подменённые данные от настоящих.
type FallbackFunc func(endpoint string)

// listLimit — размер выборки, которой фолбэки заменяют агрегирующие
// эндпоинты.
const listLimit = 1000
