package domain

import "time"

// Item — позиция каталога. CRUD каталога живёт во внешнем сервисе;
// ядро читает цену/доступность/сток и списывает сток при резервировании.
type Item struct {
	ID   string
	Name string
	// Price — цена за единицу в минимальных единицах.
	Price    int64
	Category string
	// Stock — остаток на складе, не бывает отрицательным.
	Stock       int32
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
