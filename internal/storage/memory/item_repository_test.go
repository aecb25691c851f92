package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/nucoffee/orders/internal/domain"
)

func seedCatalog(t *testing.T) *ItemRepository {
	t.Helper()
	repo := NewItemRepository()
	repo.Put(domain.Item{Name: "Латте", Price: 350, Stock: 10, IsAvailable: true})
	repo.Put(domain.Item{Name: "Круассан", Price: 200, Stock: 3, IsAvailable: true})
	repo.Put(domain.Item{Name: "Сироп", Price: 50, Stock: 5, IsAvailable: false})
	return repo
}

func TestItemRepository_GetByName(t *testing.T) {
	repo := seedCatalog(t)

	item, err := repo.GetByName("Латте")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.Stock != 10 {
		t.Fatalf("stock = %d, want 10", item.Stock)
	}

	if _, err := repo.GetByName("Эспрессо"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemRepository_Reserve(t *testing.T) {
	repo := seedCatalog(t)

	err := repo.Reserve([]domain.OrderLine{
		{Name: "Латте", Quantity: 2},
		{Name: "Круассан", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	latte, _ := repo.GetByName("Латте")
	croissant, _ := repo.GetByName("Круассан")
	if latte.Stock != 8 || croissant.Stock != 2 {
		t.Fatalf("stock after reserve: latte=%d croissant=%d", latte.Stock, croissant.Stock)
	}
}

// Нехватка по одной позиции откатывает весь заказ.
func TestItemRepository_ReserveInsufficient(t *testing.T) {
	repo := seedCatalog(t)

	err := repo.Reserve([]domain.OrderLine{
		{Name: "Латте", Quantity: 2},
		{Name: "Круассан", Quantity: 4},
	})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	latte, _ := repo.GetByName("Латте")
	if latte.Stock != 10 {
		t.Fatalf("partial reservation leaked: latte stock = %d", latte.Stock)
	}
}

func TestItemRepository_ReserveUnavailable(t *testing.T) {
	repo := seedCatalog(t)

	err := repo.Reserve([]domain.OrderLine{{Name: "Сироп", Quantity: 1}})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError for unavailable item, got %v", err)
	}
}

func TestItemRepository_ReserveUnknown(t *testing.T) {
	repo := seedCatalog(t)

	err := repo.Reserve([]domain.OrderLine{{Name: "Эспрессо", Quantity: 1}})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError for unknown item, got %v", err)
	}
}

// Одна позиция в нескольких строках: проверяется суммарное количество.
func TestItemRepository_ReserveRepeatedLine(t *testing.T) {
	repo := NewItemRepository()
	repo.Put(domain.Item{Name: "Латте", Price: 350, Stock: 3, IsAvailable: true})

	err := repo.Reserve([]domain.OrderLine{
		{Name: "Латте", Quantity: 2},
		{Name: "Латте", Quantity: 2},
	})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError for combined quantity, got %v", err)
	}

	item, _ := repo.GetByName("Латте")
	if item.Stock != 3 {
		t.Fatalf("stock changed after rejected reserve: %d", item.Stock)
	}
}

// Конкурентные резервы не должны увести сток в минус.
func TestItemRepository_ReserveConcurrent(t *testing.T) {
	repo := NewItemRepository()
	repo.Put(domain.Item{Name: "Латте", Price: 350, Stock: 10, IsAvailable: true})

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve([]domain.OrderLine{{Name: "Латте", Quantity: 1}}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("succeeded = %d, want 10", succeeded)
	}
	item, _ := repo.GetByName("Латте")
	if item.Stock != 0 {
		t.Fatalf("final stock = %d, want 0", item.Stock)
	}
}
