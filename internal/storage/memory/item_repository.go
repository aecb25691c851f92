package memory

import (
	"sync"

	"github.com/nucoffee/orders/internal/domain"
)

// ItemRepository хранит каталог и сток под одним замком,
// поэтому check-and-decrement по всем позициям заказа атомарен.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Item // ключ — имя позиции
}

// NewItemRepository возвращает in-memory каталог для разработки и тестов.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{
		items: make(map[string]domain.Item),
	}
}

// Put добавляет или заменяет позицию каталога. Нужен для наполнения
// в тестах и локальных запусках; в проде каталогом владеет внешний сервис.
func (r *ItemRepository) Put(item domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Name] = item
}

// GetByName возвращает позицию каталога или ErrItemNotFound.
func (r *ItemRepository) GetByName(name string) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[name]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, nil
}

// Reserve проверяет доступность и списывает сток по всем позициям.
// Всё или ничего: сначала проверяем каждую позицию, затем списываем.
func (r *ItemRepository) Reserve(lines []domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Одна и та же позиция может встречаться в нескольких строках —
	// проверяем суммарное количество.
	need := make(map[string]int32, len(lines))
	for _, line := range lines {
		need[line.Name] += line.Quantity
	}

	for _, line := range lines {
		item, ok := r.items[line.Name]
		if !ok || !item.IsAvailable || item.Stock < need[line.Name] {
			return &domain.InsufficientStockError{Item: line.Name}
		}
	}

	for name, qty := range need {
		item := r.items[name]
		item.Stock -= qty
		r.items[name] = item
	}

	return nil
}

var _ domain.ItemRepository = (*ItemRepository)(nil)
