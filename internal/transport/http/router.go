package http

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/transport/http/middleware"
)

// NewRouter собирает публичный API поверх gin.
// Метрики и health-чеки живут на отдельном служебном сервере.
func NewRouter(orders *OrderHandler, customers *CustomerHandler, authz *middleware.Authz, logger *log.Entry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(logger))

	api := r.Group("/api")
	{
		// Оформление заказа доступно и гостям; статусы и сводки — только операторам.
		api.POST("/orders", orders.CreateOrder)
		api.GET("/orders/stats", authz.Require("orders.manage"), orders.Stats)
		api.GET("/orders/:id", orders.GetOrder)
		api.GET("/orders", authz.Require("orders.manage"), orders.ListOrders)
		api.PATCH("/orders/:id/status", authz.Require("orders.manage"), orders.UpdateStatus)

		api.GET("/customers/:id", authz.Require("orders.manage"), customers.GetCustomer)
		api.POST("/customers/:id/points", authz.Require("orders.manage"), customers.AddPoints)
	}

	return r
}
