package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
	ordersvc "github.com/nucoffee/orders/internal/service/order"
)

const (
	idempotencyHeader = "X-Idempotency-Key"
	idempotencyScope  = "orders.create"
)

// OrderHandler транслирует HTTP-запросы в операции сервиса заказов.
type OrderHandler struct {
	svc    *ordersvc.Service
	idem   domain.IdempotencyStore
	logger *log.Entry
}

// NewOrderHandler конструирует обработчик; idem опционален.
func NewOrderHandler(svc *ordersvc.Service, idem domain.IdempotencyStore, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "http-orders")
	}
	return &OrderHandler{svc: svc, idem: idem, logger: logger}
}

type clientReq struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type lineReq struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"min=0"`
	Quantity int32  `json:"quantity" binding:"required,min=1"`
}

type createOrderReq struct {
	Client      clientReq `json:"client" binding:"required"`
	CustomerID  string    `json:"customerId"`
	Items       []lineReq `json:"items" binding:"required,min=1,dive"`
	TotalAmount int64     `json:"totalAmount" binding:"min=0"`
}

type updateStatusReq struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"adminNotes"`
	IsPaid     *bool   `json:"isPaid"`
}

type clientResp struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type lineResp struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int32  `json:"quantity"`
}

type orderResp struct {
	ID          string     `json:"id"`
	Client      clientResp `json:"client"`
	CustomerID  string     `json:"customerId,omitempty"`
	Items       []lineResp `json:"items"`
	TotalAmount int64      `json:"totalAmount"`
	Status      string     `json:"status"`
	IsPaid      bool       `json:"isPaid"`
	AdminNotes  string     `json:"adminNotes"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateOrder обрабатывает POST /api/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
		return
	}

	idemKey := c.GetHeader(idempotencyHeader)
	lockHeld := false
	if h.idem != nil && idemKey != "" {
		locked, err := h.idem.TryLock(c.Request.Context(), idempotencyScope, idemKey)
		if err != nil {
			h.logger.WithError(err).Warn("idempotency lock failed, proceeding without")
		} else if !locked {
			h.replayDuplicate(c, idemKey)
			return
		} else {
			lockHeld = true
		}
	}

	items := make([]ordersvc.LineInput, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, ordersvc.LineInput{
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}

	order, err := h.svc.Create(c.Request.Context(), ordersvc.CreateInput{
		Client: domain.ClientInfo{
			Name:  req.Client.Name,
			Phone: req.Client.Phone,
			Email: req.Client.Email,
		},
		CustomerID:  req.CustomerID,
		Items:       items,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		// Заказ не создан — ключ остаётся без результата. Отпускаем его,
		// иначе исправленный повтор с тем же ключом упрётся в duplicate_request.
		if lockHeld {
			if relErr := h.idem.Release(c.Request.Context(), idempotencyScope, idemKey); relErr != nil {
				h.logger.WithError(relErr).Warn("failed to release idempotency key")
			}
		}
		h.writeError(c, err)
		return
	}

	if h.idem != nil && idemKey != "" {
		if err := h.idem.Remember(c.Request.Context(), idempotencyScope, idemKey, order.ID); err != nil {
			h.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to remember idempotency result")
		}
	}

	c.JSON(http.StatusCreated, toOrderResp(order))
}

// replayDuplicate отвечает на повторную отправку того же idempotency-ключа.
func (h *OrderHandler) replayDuplicate(c *gin.Context, idemKey string) {
	orderID, found, err := h.idem.Recall(c.Request.Context(), idempotencyScope, idemKey)
	if err != nil || !found {
		// Ключ захвачен, но результата ещё нет: первый запрос в обработке.
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
		return
	}

	order, err := h.svc.Get(orderID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// ListOrders обрабатывает GET /api/orders с фильтрами status и customerId.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := domain.OrderFilter{CustomerID: c.Query("customerId")}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
			return
		}
		filter.Status = status
	}

	orders, err := h.svc.List(filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]orderResp, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResp(order))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus обрабатывает PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.AdminNotes, req.IsPaid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// Stats обрабатывает GET /api/orders/stats.
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalOrders":     stats.TotalOrders,
		"pendingOrders":   stats.PendingOrders,
		"completedOrders": stats.CompletedOrders,
		"totalRevenue":    stats.TotalRevenue,
	})
}

// writeError отображает доменные ошибки на HTTP-статусы.
func (h *OrderHandler) writeError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	var transitionErr *domain.InvalidTransitionError

	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient_stock", "item": stockErr.Item})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_transition",
			"from":  string(transitionErr.From),
			"to":    string(transitionErr.To),
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func toOrderResp(order domain.Order) orderResp {
	items := make([]lineResp, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, lineResp{
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}
	return orderResp{
		ID:          order.ID,
		Client:      clientResp{Name: order.Client.Name, Phone: order.Client.Phone, Email: order.Client.Email},
		CustomerID:  order.CustomerID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		IsPaid:      order.IsPaid,
		AdminNotes:  order.AdminNotes,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
