package memory

import (
	"sync"
	"time"

	"github.com/nucoffee/orders/internal/domain"
)

// CustomerRepository — in-memory хранилище полей лояльности.
type CustomerRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий покупателей.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		items: make(map[string]domain.Customer),
	}
}

// Put добавляет или заменяет покупателя; наполнение для тестов и локальных запусков.
func (r *CustomerRepository) Put(customer domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.MembershipLevel == "" {
		customer.MembershipLevel = domain.LevelForPoints(customer.LoyaltyPoints)
	}
	r.items[customer.ID] = customer
}

// Get возвращает покупателя или ErrCustomerNotFound.
func (r *CustomerRepository) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// AddPoints начисляет баллы и пересчитывает уровень под одним замком.
func (r *CustomerRepository) AddPoints(id string, points int64) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	customer.LoyaltyPoints += points
	customer.MembershipLevel = domain.LevelForPoints(customer.LoyaltyPoints)
	customer.UpdatedAt = time.Now().UTC()
	r.items[id] = customer
	return customer, nil
}

// AddSpend увеличивает накопленные траты.
func (r *CustomerRepository) AddSpend(id string, amount int64) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	customer.TotalSpent += amount
	customer.UpdatedAt = time.Now().UTC()
	r.items[id] = customer
	return customer, nil
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)
