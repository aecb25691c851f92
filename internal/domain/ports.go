package domain

import "context"

// Notifier рассылает события заказа внешним получателям.
// Доставка best-effort: реализации логируют сбои по каждому получателю
// и никогда не возвращают ошибку вызывающей стороне — к моменту
// рассылки заказ уже сохранён.
type Notifier interface {
	// NotifyOrderCreated рассылает свежесохранённый заказ всем получателям.
	NotifyOrderCreated(ctx context.Context, order Order)
	// NotifyStatusChanged рассылает переход статуса (именно переход, не только
	// новое значение).
	NotifyStatusChanged(ctx context.Context, orderID string, from, to OrderStatus, client ClientInfo)
}

// IdempotencyStore защищает создание заказа от повторной отправки формы.
type IdempotencyStore interface {
	// TryLock захватывает ключ на время TTL; false — ключ уже занят.
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Release снимает захват ключа, под которым результат так и не был
	// сохранён: неудавшийся запрос не должен блокировать исправленный повтор.
	Release(ctx context.Context, scope, key string) error
	// Remember сохраняет результат обработки под ключом.
	Remember(ctx context.Context, scope, key, value string) error
	// Recall возвращает сохранённый результат, если он есть.
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
