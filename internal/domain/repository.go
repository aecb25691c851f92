package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// List возвращает заказы по фильтру, отсортированные от новых к старым.
	List(filter OrderFilter) ([]Order, error)
	// UpdateStatus атомарно применяет переход статуса и возвращает обновлённый
	// заказ вместе со статусом, который был непосредственно перед записью.
	// Легальность перехода проверяется внутри той же критической секции;
	// запрещённое ребро даёт InvalidTransitionError, статус не меняется.
	// nil-поля adminNotes и isPaid оставляют соответствующие значения без изменений.
	UpdateStatus(id string, next OrderStatus, adminNotes *string, isPaid *bool) (Order, OrderStatus, error)
	// Stats считает сводку по заказам.
	Stats() (OrderStats, error)
}

// ItemRepository описывает доступ к каталогу и резервирование стока.
type ItemRepository interface {
	// GetByName возвращает позицию каталога или ErrItemNotFound.
	GetByName(name string) (Item, error)
	// Reserve атомарно проверяет доступность и списывает сток по всем
	// позициям заказа. Всё или ничего: нехватка по любой позиции
	// откатывает резервирование целиком и возвращает InsufficientStockError.
	Reserve(lines []OrderLine) error
}

// CustomerRepository хранит поля лояльности покупателей.
type CustomerRepository interface {
	// Get возвращает покупателя или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// AddPoints атомарно начисляет баллы и пересчитывает уровень.
	AddPoints(id string, points int64) (Customer, error)
	// AddSpend атомарно увеличивает накопленные траты.
	AddSpend(id string, amount int64) (Customer, error)
}
