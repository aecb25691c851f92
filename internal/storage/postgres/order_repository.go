package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nucoffee/orders/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
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

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_id, client_name, client_phone, client_email,
			total_amount, status, is_paid, admin_notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		order.ID, order.CustomerID, order.Client.Name, order.Client.Phone, order.Client.Email,
		order.TotalAmount, string(order.Status), order.IsPaid, order.AdminNotes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, line := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, position, name, price, quantity
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			uuid.NewString(), order.ID, pos, line.Name, line.Price, line.Quantity,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	var status string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, client_name, client_phone, client_email,
		       total_amount, status, is_paid, admin_notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.Client.Name, &order.Client.Phone, &order.Client.Email,
		&order.TotalAmount, &status, &order.IsPaid, &order.AdminNotes,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	lines, err := loadLines(ctx, r.db, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = lines

	return order, nil
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, customer_id, client_name, client_phone, client_email,
		       total_amount, status, is_paid, admin_notes, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR customer_id = $2)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), filter.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		var status string
		if err := rows.Scan(
			&order.ID, &order.CustomerID, &order.Client.Name, &order.Client.Phone, &order.Client.Email,
			&order.TotalAmount, &status, &order.IsPaid, &order.AdminNotes,
			&order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)

		lines, err := loadLines(ctx, r.db, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = lines
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus выполняет SELECT ... FOR UPDATE и UPDATE в одной транзакции:
// конкурентные переходы по одному заказу сериализуются на строке,
// а возвращаемый prev — статус непосредственно перед записью.
// Возвращаемый заказ собирается внутри той же транзакции: чтение после
// коммита могло бы увидеть уже следующий конкурентный переход.
func (r *orderRepository) UpdateStatus(id string, next domain.OrderStatus, adminNotes *string, isPaid *bool) (domain.Order, domain.OrderStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var order domain.Order
	var prevRaw string
	err = tx.QueryRowContext(ctx, `
		SELECT id, customer_id, client_name, client_phone, client_email,
		       total_amount, status, is_paid, admin_notes, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.Client.Name, &order.Client.Phone, &order.Client.Email,
		&order.TotalAmount, &prevRaw, &order.IsPaid, &order.AdminNotes,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrOrderNotFound
			return domain.Order{}, "", err
		}
		return domain.Order{}, "", fmt.Errorf("lock order row: %w", err)
	}

	prev := domain.OrderStatus(prevRaw)
	if !prev.CanTransition(next) {
		err = &domain.InvalidTransitionError{From: prev, To: next}
		return domain.Order{}, "", err
	}

	// nil-параметры приходят в базу как NULL и оставляют текущее значение.
	now := time.Now().UTC()
	var nextRaw string
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status      = $1,
		    admin_notes = COALESCE($2, admin_notes),
		    is_paid     = COALESCE($3, is_paid),
		    updated_at  = $4
		WHERE id = $5
		RETURNING status, admin_notes, is_paid, updated_at
	`, string(next), adminNotes, isPaid, now, id).Scan(
		&nextRaw, &order.AdminNotes, &order.IsPaid, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("update order status: %w", err)
	}
	order.Status = domain.OrderStatus(nextRaw)

	lines, err := loadLines(ctx, tx, order.ID)
	if err != nil {
		return domain.Order{}, "", err
	}
	order.Items = lines

	if err = tx.Commit(); err != nil {
		return domain.Order{}, "", fmt.Errorf("commit status update: %w", err)
	}

	return order, prev, nil
}

func (r *orderRepository) Stats() (domain.OrderStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var stats domain.OrderStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status IN ('ready','delivered')), 0)
		FROM orders
	`).Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.CompletedOrders, &stats.TotalRevenue)
	if err != nil {
		return domain.OrderStats{}, fmt.Errorf("query order stats: %w", err)
	}

	return stats, nil
}

// queryer покрывает *sql.DB и *sql.Tx: строки заказа читаются и из пула,
// и изнутри транзакции UpdateStatus.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadLines(ctx context.Context, q queryer, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, price, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
