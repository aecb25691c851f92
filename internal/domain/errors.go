package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего имени покупателя.
	ErrClientNameRequired = errors.New("client name is required")
	// Ошибка отсутствующего телефона покупателя.
	ErrClientPhoneRequired = errors.New("client phone is required")
	// Ошибка отсутствующего email покупателя.
	ErrClientEmailRequired = errors.New("client email is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательного итога заказа.
	ErrTotalNegative = errors.New("total_amount must be non-negative")
	// Ошибка пустого имени позиции.
	ErrLineNameRequired = errors.New("order line name is required")
	// Ошибка при некорректном количестве (< 1).
	ErrLineQuantityInvalid = errors.New("order line quantity must be at least 1")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("order line price must be non-negative")
	// Ошибка несоответствия итога заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// Ошибка неизвестного значения статуса.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists сигнализирует о попытке создать заказ с занятым ID.
	ErrOrderExists = errors.New("order already exists")
	// ErrCustomerNotFound возвращается, если покупатель не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrItemNotFound возвращается, если позиция каталога не найдена.
	ErrItemNotFound = errors.New("catalog item not found")
	// ErrPointsInvalid — начисляемые баллы должны быть положительными.
	ErrPointsInvalid = errors.New("points must be greater than zero")
	// ErrSpendInvalid — сумма трат не может быть отрицательной.
	ErrSpendInvalid = errors.New("spend amount must be non-negative")
)

// ValidationError агрегирует замечания валидации одного запроса.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap отдаёт вложенные ошибки для errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// NewValidationError оборачивает непустой список замечаний.
func NewValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errs: errs}
}

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError сообщает, какой позиции не хватило на складе.
// Резервирование всего заказа при этом откатывается целиком.
type InsufficientStockError struct {
	Item string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q", e.Item)
}

// IsInsufficientStock проверяет ошибку нехватки стока.
func IsInsufficientStock(err error) bool {
	var se *InsufficientStockError
	return errors.As(err, &se)
}

// InvalidTransitionError описывает запрещённое ребро графа статусов.
// Сохранённый статус при этой ошибке не меняется.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// IsInvalidTransition проверяет ошибку запрещённого перехода.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
