package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nucoffee/orders/internal/domain"
	"github.com/nucoffee/orders/internal/metrics"
)

const defaultSendTimeout = 5 * time.Second

// Config — неизменяемая конфигурация рассылки, собирается один раз на старте.
type Config struct {
	// Endpoint — общий URL доставки (мост к Telegram Bot API).
	Endpoint string
	// ChatIDs — адреса получателей.
	ChatIDs []string
	// SendTimeout — таймаут одной попытки доставки.
	SendTimeout time.Duration
}

// Dispatcher рассылает события заказа каждому получателю независимо.
// Попытки идут параллельно, каждая со своим таймаутом; сбой одного
// получателя не блокирует и не отменяет остальных. Доставка best-effort,
// без повторов и дедупликации; заказ к моменту рассылки уже сохранён,
// поэтому ошибки доставки наружу не поднимаются.
type Dispatcher struct {
	endpoint string
	chatIDs  []string
	timeout  time.Duration
	client   *http.Client
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
}

// NewDispatcher конструирует Dispatcher; список получателей копируется.
func NewDispatcher(cfg Config, m *metrics.OrderMetrics, logger *log.Entry) *Dispatcher {
	if logger == nil {
		logger = log.WithField("component", "telegram-dispatcher")
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{
		endpoint: cfg.Endpoint,
		chatIDs:  append([]string(nil), cfg.ChatIDs...),
		timeout:  timeout,
		client:   &http.Client{},
		metrics:  m,
		logger:   logger,
	}
}

// Recipients возвращает число настроенных получателей.
func (d *Dispatcher) Recipients() int {
	return len(d.chatIDs)
}

type payloadItem struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
	Price    int64  `json:"price"`
}

type payloadOrder struct {
	Items []payloadItem `json:"items"`
	// Total — сохранённый totalAmount заказа, не пересчёт позиций.
	Total int64 `json:"total"`
}

type payloadClient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type orderCreatedPayload struct {
	ChatID string        `json:"chatId"`
	Order  payloadOrder  `json:"order"`
	Client payloadClient `json:"client"`
}

type statusChangedPayload struct {
	ChatID    string        `json:"chatId"`
	OrderID   string        `json:"orderId"`
	OldStatus string        `json:"oldStatus"`
	NewStatus string        `json:"newStatus"`
	Client    payloadClient `json:"client"`
}

// NotifyOrderCreated рассылает сохранённый заказ всем получателям.
func (d *Dispatcher) NotifyOrderCreated(ctx context.Context, order domain.Order) {
	items := make([]payloadItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, payloadItem{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	d.fanOut(ctx, "order_created", order.ID, func(chatID string) any {
		return orderCreatedPayload{
			ChatID: chatID,
			Order:  payloadOrder{Items: items, Total: order.TotalAmount},
			Client: toPayloadClient(order.Client),
		}
	})
}

// NotifyStatusChanged рассылает переход статуса заказа.
func (d *Dispatcher) NotifyStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus, client domain.ClientInfo) {
	d.fanOut(ctx, "status_changed", orderID, func(chatID string) any {
		return statusChangedPayload{
			ChatID:    chatID,
			OrderID:   orderID,
			OldStatus: string(from),
			NewStatus: string(to),
			Client:    toPayloadClient(client),
		}
	})
}

// fanOut отправляет событие каждому получателю в отдельной горутине и
// дожидается всех попыток. Ровно N попыток на N получателей.
func (d *Dispatcher) fanOut(ctx context.Context, event, orderID string, build func(chatID string) any) {
	if len(d.chatIDs) == 0 || d.endpoint == "" {
		return
	}

	// Заказ уже сохранён; обрыв клиентского запроса не должен отменять
	// доставку. Значения контекста (trace id и т.п.) при этом сохраняются,
	// таймаут каждой попытки задаёт send.
	ctx = context.WithoutCancel(ctx)

	if d.metrics != nil {
		d.metrics.DispatchStarted()
		defer d.metrics.DispatchFinished()
	}
	started := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, len(d.chatIDs))
	for i, chatID := range d.chatIDs {
		wg.Add(1)
		go func(i int, chatID string) {
			defer wg.Done()
			errs[i] = d.send(ctx, build(chatID))
			if d.metrics != nil {
				d.metrics.RecordNotifyAttempt(errs[i] == nil)
			}
		}(i, chatID)
	}
	wg.Wait()

	if d.metrics != nil {
		d.metrics.RecordDispatchDuration(time.Since(started))
	}

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		d.logger.WithError(err).WithFields(log.Fields{
			"event":    event,
			"order_id": orderID,
			"chat_id":  d.chatIDs[i],
		}).Warn("notification delivery failed")
	}

	if failed == len(d.chatIDs) {
		d.logger.WithFields(log.Fields{
			"event":      event,
			"order_id":   orderID,
			"recipients": len(d.chatIDs),
		}).Error("notification delivery failed for all recipients")
	}
}

func (d *Dispatcher) send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("delivery endpoint returned %d", resp.StatusCode)
	}

	return nil
}

func toPayloadClient(client domain.ClientInfo) payloadClient {
	return payloadClient{Name: client.Name, Phone: client.Phone, Email: client.Email}
}

var _ domain.Notifier = (*Dispatcher)(nil)
