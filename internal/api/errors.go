package api

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError описывает ответ бэкенда со статусом вне диапазона 2xx.
// Detail заполняется из поля detail тела ошибки, если бэкенд его прислал.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unexpected status: %d (%s)", e.Status, e.Detail)
	}
	return fmt.Sprintf("unexpected status: %d", e.Status)
}

func statusIs(err error, status int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == status
	}
	return false
}

// IsNotFound сообщает, что бэкенд вернул 404: ресурс или маршрут отсутствует.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsUnauthorized сообщает, что бэкенд вернул 401: токен отсутствует или просрочен.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsForbidden сообщает, что бэкенд вернул 403: недостаточно прав.
func IsForbidden(err error) bool { return statusIs(err, http.StatusForbidden) }

// IsBadRequest сообщает, что бэкенд вернул 400: ошибка валидации.
func IsBadRequest(err error) bool { return statusIs(err, http.StatusBadRequest) }
