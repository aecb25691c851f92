package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/nucoffee/orders/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	order.Items = append([]domain.OrderLine(nil), order.Items...)
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderLine(nil), order.Items...)
	return order, nil
}

// List возвращает заказы по фильтру от новых к старым.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		order.Items = append([]domain.OrderLine(nil), order.Items...)
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// UpdateStatus применяет переход статуса под общим замком, поэтому
// возвращаемый prev — статус непосредственно перед записью.
func (r *orderRepositoryInMemory) UpdateStatus(id string, next domain.OrderStatus, adminNotes *string, isPaid *bool) (domain.Order, domain.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, "", domain.ErrOrderNotFound
	}

	prev := order.Status
	if !prev.CanTransition(next) {
		return domain.Order{}, "", &domain.InvalidTransitionError{From: prev, To: next}
	}

	order.Status = next
	if adminNotes != nil {
		order.AdminNotes = *adminNotes
	}
	if isPaid != nil {
		order.IsPaid = *isPaid
	}
	order.UpdatedAt = time.Now().UTC()
	r.items[id] = order

	order.Items = append([]domain.OrderLine(nil), order.Items...)
	return order, prev, nil
}

// Stats считает сводку по всем заказам.
func (r *orderRepositoryInMemory) Stats() (domain.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OrderStats
	for _, order := range r.items {
		stats.TotalOrders++
		switch order.Status {
		case domain.OrderStatusPending:
			stats.PendingOrders++
		case domain.OrderStatusDelivered:
			stats.CompletedOrders++
			stats.TotalRevenue += order.TotalAmount
		case domain.OrderStatusReady:
			stats.TotalRevenue += order.TotalAmount
		}
	}
	return stats, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
