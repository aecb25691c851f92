package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nucoffee/orders/internal/domain"
)

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository создаёт PostgreSQL-реализацию ItemRepository.
func NewItemRepository(store *Store) domain.ItemRepository {
	return &itemRepository{db: store.DB()}
}

func (r *itemRepository) GetByName(name string) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var item domain.Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, category, stock, is_available, created_at, updated_at
		FROM items
		WHERE name = $1
	`, name).Scan(
		&item.ID, &item.Name, &item.Price, &item.Category,
		&item.Stock, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("select item: %w", err)
	}

	return item, nil
}

// Reserve списывает сток по каждой позиции условным UPDATE со
// страховкой stock >= quantity. Все позиции в одной транзакции:
// нулевой rows affected по любой из них откатывает резервирование целиком,
// поэтому конкурентные заказы не могут увести сток в минус.
func (r *itemRepository) Reserve(lines []domain.OrderLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, line := range lines {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE items
			SET stock = stock - $1,
			    updated_at = $2
			WHERE name = $3
			  AND is_available
			  AND stock >= $1
		`, line.Quantity, now, line.Name)
		if err != nil {
			return fmt.Errorf("reserve stock for %q: %w", line.Name, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = &domain.InsufficientStockError{Item: line.Name}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}

	return nil
}

var _ domain.ItemRepository = (*itemRepository)(nil)
