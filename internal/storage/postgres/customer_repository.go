package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nucoffee/orders/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanCustomer(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, loyalty_points, total_spent, membership_level, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id))
}

// AddPoints начисляет баллы и пересчитывает уровень одним UPDATE:
// начисление и деривация уровня атомарны, промежуточное состояние
// с новыми баллами и старым уровнем снаружи не наблюдается.
func (r *customerRepository) AddPoints(id string, points int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanCustomer(r.db.QueryRowContext(ctx, `
		UPDATE customers
		SET loyalty_points = loyalty_points + $1,
		    membership_level = CASE
		        WHEN loyalty_points + $1 >= 1000 THEN 'platinum'
		        WHEN loyalty_points + $1 >= 500  THEN 'gold'
		        WHEN loyalty_points + $1 >= 100  THEN 'silver'
		        ELSE 'bronze'
		    END,
		    updated_at = $2
		WHERE id = $3
		RETURNING id, name, email, loyalty_points, total_spent, membership_level, created_at, updated_at
	`, points, time.Now().UTC(), id))
}

func (r *customerRepository) AddSpend(id string, amount int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanCustomer(r.db.QueryRowContext(ctx, `
		UPDATE customers
		SET total_spent = total_spent + $1,
		    updated_at = $2
		WHERE id = $3
		RETURNING id, name, email, loyalty_points, total_spent, membership_level, created_at, updated_at
	`, amount, time.Now().UTC(), id))
}

func (r *customerRepository) scanCustomer(row *sql.Row) (domain.Customer, error) {
	var customer domain.Customer
	var level string
	err := row.Scan(
		&customer.ID, &customer.Name, &customer.Email,
		&customer.LoyaltyPoints, &customer.TotalSpent, &level,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("scan customer: %w", err)
	}
	customer.MembershipLevel = domain.MembershipLevel(level)

	return customer, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
