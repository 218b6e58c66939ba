package stub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router настраивает маршруты демо-бэкенда. Складские и аналитические
// эндпоинты не регистрируются намеренно: клиент должен считать эти
// данные из первичных ресурсов.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(Logger(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/register/", s.registerHandler)

			r.Get("/users/me", s.currentUserHandler)
			r.Get("/users/", s.listUsersHandler)
			r.Get("/users/{id}/", s.getUserHandler)
			r.Put("/users/{id}/", s.updateUserHandler)
			r.Delete("/users/{id}/", s.deleteUserHandler)

			r.Get("/products/", s.listProductsHandler)
			r.Post("/products/", s.createProductHandler)
			r.Get("/products/{id}/", s.getProductHandler)
			r.Put("/products/{id}/", s.updateProductHandler)
			r.Delete("/products/{id}/", s.deleteProductHandler)

			r.Get("/orders/", s.listOrdersHandler)
			r.Post("/orders/", s.createOrderHandler)
			r.Get("/orders/{id}/", s.getOrderHandler)
			r.Put("/orders/{id}/", s.updateOrderHandler)
			r.Delete("/orders/{id}/", s.deleteOrderHandler)

			r.Get("/notifications/", s.listNotificationsHandler)
			r.Delete("/notifications/", s.clearNotificationsHandler)
			r.Get("/notifications/unread/", s.unreadNotificationsHandler)
			r.Post("/notifications/mark-all-read/", s.markAllReadHandler)
			r.Get("/notifications/settings/", s.notificationSettingsHandler)
			r.Put("/notifications/settings/", s.updateNotificationSettingsHandler)
			r.Post("/notifications/{id}/read/", s.markReadHandler)
			r.Delete("/notifications/{id}/", s.deleteNotificationHandler)

			r.Get("/admin/settings/", s.settingsHandler)
			r.Put("/admin/settings/", s.updateSettingsHandler)
			r.Get("/admin/business-hours/", s.businessHoursHandler)
			r.Put("/admin/business-hours/", s.updateBusinessHoursHandler)
		})

		// Websocket авторизуется токеном в query, не заголовком.
		r.Get("/notifications/ws/", s.websocketHandler)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
