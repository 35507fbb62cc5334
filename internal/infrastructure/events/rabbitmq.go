package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const (
	exchangeType  = "topic"
	dialAttempts  = 5
	dialBackoff   = 2 * time.Second
	publishWindow = 3 * time.Second
)

var _ inventory.MovementPublisher = (*Publisher)(nil)

// channel subconjunto de *amqp.Channel usado por el publicador.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publica operaciones confirmadas y alertas de stock bajo en un exchange topic.
// Routing keys: stock.<kind> (stock.receipt, stock.delivery, ...) y stock.low.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *logger.Logger
	now      func() time.Time
}

// Connect abre la conexión (con reintentos), el canal y declara el exchange.
func Connect(url, exchange string, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("amqp_publisher")

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("no se pudo conectar a RabbitMQ")
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("conectar a rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{ch: ch, exchange: exchange, log: log, now: time.Now}
}

// MovementEvent cuerpo JSON de stock.<kind>.
type MovementEvent struct {
	OperationID string             `json:"operationId"`
	Kind        string             `json:"kind"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Entries     []MovementEventRow `json:"entries"`
}

// MovementEventRow un asiento del libro.
type MovementEventRow struct {
	EntryID        string  `json:"entryId"`
	ProductID      string  `json:"productId"`
	FromLocationID *string `json:"fromLocationId"`
	ToLocationID   *string `json:"toLocationId"`
	Quantity       string  `json:"quantity"`
}

// LowStockEvent cuerpo JSON de stock.low.
type LowStockEvent struct {
	ProductID    string    `json:"productId"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CurrentStock string    `json:"currentStock"`
	ReorderLevel string    `json:"reorderLevel"`
	DetectedAt   time.Time `json:"detectedAt"`
}

// PublishOperation publica una operación ya confirmada.
func (p *Publisher) PublishOperation(ctx context.Context, op *entity.Operation, entries []*entity.LedgerEntry) error {
	ev := MovementEvent{
		OperationID: op.ID,
		Kind:        string(op.Kind),
		CreatedBy:   op.CreatedBy,
		OccurredAt:  op.UpdatedAt.UTC(),
		Entries:     make([]MovementEventRow, 0, len(entries)),
	}
	for _, e := range entries {
		ev.Entries = append(ev.Entries, MovementEventRow{
			EntryID:        e.ID,
			ProductID:      e.ProductID,
			FromLocationID: e.FromLocationID,
			ToLocationID:   e.ToLocationID,
			Quantity:       e.Quantity.String(),
		})
	}
	return p.publish(ctx, "stock."+string(op.Kind), op.ID, ev)
}

// PublishLowStock publica una alerta de stock bajo.
func (p *Publisher) PublishLowStock(ctx context.Context, item entity.LowStockItem) error {
	ev := LowStockEvent{
		ProductID:    item.ProductID,
		SKU:          item.SKU,
		Name:         item.Name,
		CurrentStock: item.CurrentStock.String(),
		ReorderLevel: item.ReorderLevel.String(),
		DetectedAt:   p.now().UTC(),
	}
	return p.publish(ctx, "stock.low", item.ProductID, ev)
}

func (p *Publisher) publish(ctx context.Context, routingKey, messageID string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", routingKey, err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishWindow)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    p.now().UTC(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publicar %s: %w", routingKey, err)
	}
	p.log.Debug().Str("routing_key", routingKey).Str("message_id", messageID).Msg("evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop publicador que descarta los eventos (sin AMQP_URL).
type Nop struct{}

func (Nop) PublishOperation(context.Context, *entity.Operation, []*entity.LedgerEntry) error {
	return nil
}

func (Nop) PublishLowStock(context.Context, entity.LowStockItem) error { return nil }
