package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
	"github.com/nucoffee/orders/internal/service/loyalty"
)

// CustomerHandler отдаёт поля лояльности и принимает начисления баллов.
type CustomerHandler struct {
	ledger    *loyalty.Ledger
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewCustomerHandler конструирует обработчик покупателей.
func NewCustomerHandler(ledger *loyalty.Ledger, customers domain.CustomerRepository, logger *log.Entry) *CustomerHandler {
	if logger == nil {
		logger = log.WithField("component", "http-customers")
	}
	return &CustomerHandler{ledger: ledger, customers: customers, logger: logger}
}

type addPointsReq struct {
	Points int64 `json:"points" binding:"required"`
}

type customerResp struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	LoyaltyPoints   int64     `json:"loyaltyPoints"`
	TotalSpent      int64     `json:"totalSpent"`
	MembershipLevel string    `json:"membershipLevel"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// GetCustomer обрабатывает GET /api/customers/:id.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResp(customer))
}

// AddPoints обрабатывает POST /api/customers/:id/points.
func (h *CustomerHandler) AddPoints(c *gin.Context) {
	var req addPointsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
		return
	}

	customer, err := h.ledger.AddPoints(c.Param("id"), req.Points)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResp(customer))
}

func (h *CustomerHandler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "details": err.Error()})
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func toCustomerResp(customer domain.Customer) customerResp {
	return customerResp{
		ID:              customer.ID,
		Name:            customer.Name,
		Email:           customer.Email,
		LoyaltyPoints:   customer.LoyaltyPoints,
		TotalSpent:      customer.TotalSpent,
		MembershipLevel: string(customer.MembershipLevel),
		UpdatedAt:       customer.UpdatedAt,
	}
}
