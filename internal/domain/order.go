package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в кофейне.
type OrderStatus string

const (
	// OrderStatusPending — заказ принят, но ещё не подтверждён оператором.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — оператор подтвердил заказ.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPreparing — заказ готовится.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReady — заказ готов к выдаче.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusDelivered — заказ выдан клиенту; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusTransitions задаёт легальные рёбра графа статусов.
// Отмена разрешена из любого нетерминального статуса.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: nil,
	OrderStatusCancelled: nil,
}

// ParseOrderStatus валидирует строковое значение статуса.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if _, ok := statusTransitions[status]; !ok {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// IsTerminal сообщает, допускает ли статус дальнейшие переходы.
func (s OrderStatus) IsTerminal() bool {
	edges, ok := statusTransitions[s]
	return ok && len(edges) == 0
}

// CanTransition проверяет, является ли переход s -> next легальным ребром графа.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ClientInfo — снапшот контактов покупателя на момент оформления.
// Хранится внутри заказа, а не ссылкой: покупатель может быть гостем.
type ClientInfo struct {
	Name  string
	Phone string
	Email string
}

// OrderLine — одна позиция заказа. Имя и цена копируются из каталога
// при оформлении, чтобы исторические заказы не менялись вместе с каталогом.
type OrderLine struct {
	Name string
	// Price — цена за единицу в минимальных денежных единицах.
	Price int64
	// Quantity — количество единиц, минимум 1.
	Quantity int32
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID     string
	Client ClientInfo
	// CustomerID заполняется для авторизованных покупателей и нужен
	// для начисления лояльности; может быть пустым.
	CustomerID string
	Items      []OrderLine
	// TotalAmount — канонический итог заказа в минимальных единицах.
	// Уведомления сериализуют именно это поле, а не пересчёт позиций.
	TotalAmount int64
	Status      OrderStatus
	IsPaid      bool
	AdminNotes  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Client.Name == "" {
		errs = append(errs, ErrClientNameRequired)
	}
	if o.Client.Phone == "" {
		errs = append(errs, ErrClientPhoneRequired)
	}
	if o.Client.Email == "" {
		errs = append(errs, ErrClientEmailRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	// Сверяем итог заказа с суммой позиций: quantity * price.
	var calc int64
	for _, line := range o.Items {
		if line.Name == "" {
			errs = append(errs, ErrLineNameRequired)
		}
		if line.Quantity < 1 {
			errs = append(errs, ErrLineQuantityInvalid)
		}
		if line.Price < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Quantity) * line.Price
	}
	if calc != o.TotalAmount {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// OrderFilter ограничивает выборку списка заказов.
type OrderFilter struct {
	Status     OrderStatus
	CustomerID string
}

// OrderStats — сводка по заказам для админки.
// Выручка считается по статусам ready и delivered, как в витрине.
type OrderStats struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	TotalRevenue    int64
}
