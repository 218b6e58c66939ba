package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

type contextKey string

const userKey contextKey = "user"

func withUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func userFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func pageParams(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return skip, limit
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username != s.login || password != s.password {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	s.mu.Lock()
	admin := s.users[1]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.Session{
		AccessToken: s.issueToken(admin.ID),
		User:        admin,
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Password string     `json:"password"`
		FullName string     `json:"full_name"`
		Role     model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}

	s.mu.Lock()
	user := model.User{
		ID:        s.nextUserID,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	s.nextUserID++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)

	s.mu.Lock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, page(users, skip, limit))
}

func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	s.mu.Lock()
	user, found := s.users[id]
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var patch struct {
		Email    *string     `json:"email"`
		FullName *string     `json:"full_name"`
		Role     *model.Role `json:"role"`
		IsActive *bool       `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	user, found := s.users[id]
	if found {
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if patch.FullName != nil {
			user.FullName = *patch.FullName
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}
		if patch.IsActive != nil {
			user.IsActive = *patch.IsActive
		}
		s.users[id] = user
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	s.mu.Lock()
	_, found := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Category      *string  `json:"category"`
	StockQuantity *int     `json:"stock_quantity"`
	ReorderLevel  *int     `json:"reorder_level"`
	CostPrice     *float64 `json:"cost_price"`
	IsActive      *bool    `json:"is_active"`
	IsAvailable   *bool    `json:"is_available"`
	ImageURL      *string  `json:"image_url"`
}

// decodeProductInput принимает и JSON, и multipart-форму: клиент
// переключается на форму при загрузке изображения.
func decodeProductInput(r *http.Request) (productInput, bool) {
	var in productInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return in, false
		}
		form := r.MultipartForm.Value
		stringField := func(name string) *string {
			if values, ok := form[name]; ok && len(values) > 0 {
				return &values[0]
			}
			return nil
		}
		in.Name = stringField("name")
		in.Description = stringField("description")
		in.Category = stringField("category")
		in.ImageURL = stringField("image_url")
		if raw := stringField("price"); raw != nil {
			if v, err := strconv.ParseFloat(*raw, 64); err == nil {
				in.Price = &v
			}
		}
		if raw := stringField("cost_price"); raw != nil {
			if v, err := strconv.ParseFloat(*raw, 64); err == nil {
				in.CostPrice = &v
			}
		}
		if raw := stringField("stock_quantity"); raw != nil {
			if v, err := strconv.Atoi(*raw); err == nil {
				in.StockQuantity = &v
			}
		}
		if raw := stringField("reorder_level"); raw != nil {
			if v, err := strconv.Atoi(*raw); err == nil {
				in.ReorderLevel = &v
			}
		}
		if raw := stringField("is_active"); raw != nil {
			if v, err := strconv.ParseBool(*raw); err == nil {
				in.IsActive = &v
			}
		}
		if raw := stringField("is_available"); raw != nil {
			if v, err := strconv.ParseBool(*raw); err == nil {
				in.IsAvailable = &v
			}
		}
		return in, true
	}

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, false
	}
	return in, true
}

func (in productInput) apply(p *model.Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.ReorderLevel != nil {
		p.ReorderLevel = in.ReorderLevel
	}
	if in.CostPrice != nil {
		p.CostPrice = in.CostPrice
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	now := time.Now()
	p.UpdatedAt = &now
}

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	category := r.URL.Query().Get("category")
	availableOnly, _ := strconv.ParseBool(r.URL.Query().Get("available_only"))

	s.mu.Lock()
	products := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if availableOnly && !p.IsAvailable {
			continue
		}
		products = append(products, p)
	}
	s.mu.Unlock()

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	writeJSON(w, http.StatusOK, page(products, skip, limit))
}

func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProductInput(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == nil || in.Price == nil {
		writeError(w, http.StatusBadRequest, "Name and price are required")
		return
	}

	product := model.Product{IsActive: true, IsAvailable: true}
	in.apply(&product)

	s.mu.Lock()
	product.ID = s.nextProductID
	s.nextProductID++
	s.products[product.ID] = product
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	s.mu.Lock()
	product, found := s.products[id]
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	in, decoded := decodeProductInput(r)
	if !decoded {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	product, found := s.products[id]
	if found {
		in.apply(&product)
		s.products[id] = product
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	s.mu.Lock()
	_, found := s.products[id]
	delete(s.products, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	orders := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		orders = append(orders, o)
	}
	s.mu.Unlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	writeJSON(w, http.StatusOK, page(orders, skip, limit))
}

func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  string `json:"customer_name"`
		CustomerEmail string `json:"customer_email"`
		Items         []struct {
			ProductID int64 `json:"product_id"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
		Status *model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := model.OrderStatusPending
	if req.Status != nil {
		status = *req.Status
	}

	now := time.Now()
	order := model.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	for _, item := range req.Items {
		order.ItemsCount += item.Quantity
		if product, ok := s.products[item.ProductID]; ok {
			order.TotalAmount += product.Price * float64(item.Quantity)
		}
	}
	order.ID = s.nextOrderID
	s.nextOrderID++
	s.orders[order.ID] = order
	s.mu.Unlock()

	s.notifyOrder(order)

	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	s.mu.Lock()
	order, found := s.orders[id]
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var patch struct {
		Status        *model.OrderStatus `json:"status"`
		CustomerName  *string            `json:"customer_name"`
		CustomerEmail *string            `json:"customer_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if patch.Status != nil && !validOrderStatus(*patch.Status) {
		writeError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	s.mu.Lock()
	order, found := s.orders[id]
	if found {
		if patch.Status != nil {
			order.Status = *patch.Status
		}
		if patch.CustomerName != nil {
			order.CustomerName = *patch.CustomerName
		}
		if patch.CustomerEmail != nil {
			order.CustomerEmail = *patch.CustomerEmail
		}
		order.UpdatedAt = time.Now()
		s.orders[id] = order
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func validOrderStatus(status model.OrderStatus) bool {
	switch status {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing,
		model.OrderStatusReady, model.OrderStatusDelivered, model.OrderStatusCancelled:
		return true
	}
	return false
}

func (s *Server) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	s.mu.Lock()
	_, found := s.orders[id]
	delete(s.orders, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	notifications := slices.Clone(s.notifications)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) unreadNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	unread := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, unread)
}

func (s *Server) markReadHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) markAllReadHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	before := len(s.notifications)
	s.notifications = slices.DeleteFunc(s.notifications, func(n model.Notification) bool {
		return n.ID == id
	})
	found := len(s.notifications) < before
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.notifications = s.notifications[:0]
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) notificationSettingsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.notifSettings
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) updateNotificationSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings model.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	s.notifSettings = settings
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) businessHoursHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hours := slices.Clone(s.hours)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, hours)
}

func (s *Server) updateBusinessHoursHandler(w http.ResponseWriter, r *http.Request) {
	var hours []model.BusinessHours
	if err := json.NewDecoder(r.Body).Decode(&hours); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	s.hours = hours
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, hours)
}
