package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
	"github.com/nucoffee/orders/internal/metrics"
	"github.com/nucoffee/orders/internal/service/loyalty"
)

// Service реализует жизненный цикл заказа: валидация, резервирование стока,
// сохранение, начисление лояльности и рассылка уведомлений.
// Порядок строгий: резерв до сохранения, сохранение до рассылки.
type Service struct {
	orders   domain.OrderRepository
	items    domain.ItemRepository
	ledger   *loyalty.Ledger
	notifier domain.Notifier
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
}

// NewService конструирует сервис с зависимостями. notifier и metrics опциональны.
func NewService(
	orders domain.OrderRepository,
	items domain.ItemRepository,
	ledger *loyalty.Ledger,
	notifier domain.Notifier,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		orders:   orders,
		items:    items,
		ledger:   ledger,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// LineInput — позиция заказа из запроса; имя и цена уже являются снапшотом.
type LineInput struct {
	Name     string
	Price    int64
	Quantity int32
}

// CreateInput — провалидированный запрос на создание заказа.
type CreateInput struct {
	Client      domain.ClientInfo
	CustomerID  string
	Items       []LineInput
	TotalAmount int64
}

// Create проводит заказ через весь конвейер создания.
// Ошибки валидации и нехватки стока возникают до любой durable-мутации;
// после сохранения сбои начисления и рассылки только логируются.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Order, error) {
	now := time.Now().UTC()
	lines := make([]domain.OrderLine, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, domain.OrderLine{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		Client:      input.Client,
		CustomerID:  input.CustomerID,
		Items:       lines,
		TotalAmount: input.TotalAmount,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordOrderRejected()
		}
		return domain.Order{}, domain.NewValidationError(errs)
	}

	// Резервирование атомарно по всем позициям; нехватка по любой из них
	// срывает создание заказа целиком.
	if err := s.items.Reserve(order.Items); err != nil {
		if domain.IsInsufficientStock(err) {
			if s.metrics != nil {
				s.metrics.RecordStockConflict()
			}
			s.logger.WithError(err).WithField("order_id", order.ID).Info("reservation rejected")
		}
		return domain.Order{}, err
	}

	if err := s.orders.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to persist order")
		return domain.Order{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}

	// Заказ сохранён; всё дальше — изолированные побочные эффекты.
	s.accrueSpend(order)
	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(ctx, order)
	}

	return order, nil
}

// accrueSpend начисляет траты авторизованному покупателю.
// Сбой не отменяет уже сохранённый заказ.
func (s *Service) accrueSpend(order domain.Order) {
	if s.ledger == nil || order.CustomerID == "" {
		return
	}
	if _, err := s.ledger.AddSpend(order.CustomerID, order.TotalAmount); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":    order.ID,
			"customer_id": order.CustomerID,
		}).Warn("failed to accrue customer spend")
	}
}

// UpdateStatus применяет переход статуса и рассылает именно переход,
// а не только новое значение. adminNotes и isPaid меняются только
// при ненулевых указателях.
func (s *Service) UpdateStatus(ctx context.Context, orderID, rawStatus string, adminNotes *string, isPaid *bool) (domain.Order, error) {
	next, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return domain.Order{}, domain.NewValidationError([]error{err})
	}

	updated, prev, err := s.orders.UpdateStatus(orderID, next, adminNotes, isPaid)
	if err != nil {
		return domain.Order{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordStatusUpdate(string(next))
	}

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     prev,
		"to":       next,
	}).Info("order status updated")

	if s.notifier != nil {
		// В уведомление уходит применённый переход prev -> next, а не статус
		// из снапшота: снапшот мог уже уехать дальше под конкурентным обновлением.
		s.notifier.NotifyStatusChanged(ctx, updated.ID, prev, next, updated.Client)
	}

	return updated, nil
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(id string) (domain.Order, error) {
	return s.orders.Get(id)
}

// List возвращает заказы по фильтру.
func (s *Service) List(filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(filter)
}

// Stats возвращает сводку по заказам.
func (s *Service) Stats() (domain.OrderStats, error) {
	return s.orders.Stats()
}
