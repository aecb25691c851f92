package loyalty

import (
	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
)

// Ledger начисляет баллы и траты покупателям.
// Уровень лояльности выводится из баллов после каждого начисления;
// баллы только растут, поэтому уровень не понижается никогда.
type Ledger struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewLedger конструирует Ledger с зависимостями.
func NewLedger(customers domain.CustomerRepository, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.WithField("component", "loyalty-ledger")
	}
	return &Ledger{customers: customers, logger: logger}
}

// AddPoints начисляет баллы (строго положительные) и возвращает
// покупателя с уже пересчитанным уровнем.
func (l *Ledger) AddPoints(customerID string, points int64) (domain.Customer, error) {
	if points <= 0 {
		return domain.Customer{}, domain.NewValidationError([]error{domain.ErrPointsInvalid})
	}

	customer, err := l.customers.AddPoints(customerID, points)
	if err != nil {
		return domain.Customer{}, err
	}

	l.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"points":      points,
		"level":       customer.MembershipLevel,
	}).Info("loyalty points added")

	return customer, nil
}

// AddSpend увеличивает накопленные траты. Автоматической конвертации
// трат в баллы нет — это внешняя политика.
func (l *Ledger) AddSpend(customerID string, amount int64) (domain.Customer, error) {
	if amount < 0 {
		return domain.Customer{}, domain.NewValidationError([]error{domain.ErrSpendInvalid})
	}

	customer, err := l.customers.AddSpend(customerID, amount)
	if err != nil {
		return domain.Customer{}, err
	}

	l.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"amount":      amount,
	}).Info("customer spend recorded")

	return customer, nil
}
