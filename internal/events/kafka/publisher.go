// Package kafka publishes order events to a Kafka topic.
package kafka

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/xenking/optic-storefront/internal/domain/order"
)

var _ order.Publisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events keyed by order ID. The trace context of the
// publishing request travels in the message headers.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a Publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

// Publish implements order.Publisher.
func (p *Publisher) Publish(ctx context.Context, e order.Event) error {
	msg := kafka.Message{
		Key:   []byte(e.Order.ID),
		Value: EncodeEvent(e),
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &msg.Headers})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write %s event", e.Type)
	}
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// EncodeEvent serializes e as JSON. Amounts are written in minor units.
func EncodeEvent(e order.Event) []byte {
	o := e.Order
	var enc jx.Encoder
	enc.ObjStart()
	enc.FieldStart("type")
	enc.Str(e.Type)
	enc.FieldStart("at")
	enc.Str(e.At.UTC().Format(time.RFC3339Nano))
	enc.FieldStart("orderId")
	enc.Str(o.ID)
	enc.FieldStart("sessionId")
	enc.Str(o.SessionID)
	enc.FieldStart("items")
	enc.ArrStart()
	for _, it := range o.Items {
		enc.ObjStart()
		enc.FieldStart("productId")
		enc.Str(it.ProductID)
		enc.FieldStart("lensType")
		enc.Str(it.LensType)
		enc.FieldStart("qty")
		enc.Int(it.Qty)
		enc.FieldStart("lineTotal")
		enc.Int64(int64(it.LineTotal()))
		enc.ObjEnd()
	}
	enc.ArrEnd()
	enc.FieldStart("subtotal")
	enc.Int64(int64(o.Subtotal))
	enc.FieldStart("deliveryCharge")
	enc.Int64(int64(o.DeliveryCharge))
	enc.FieldStart("discount")
	enc.Int64(int64(o.Discount))
	enc.FieldStart("total")
	enc.Int64(int64(o.Total))
	enc.FieldStart("promoCode")
	enc.Str(o.PromoCode)
	enc.FieldStart("city")
	enc.Str(o.Shipping.City)
	enc.ObjEnd()
	return enc.Bytes()
}

// headerCarrier adapts Kafka headers to a propagation.TextMapCarrier.
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(*c.headers))
	for i, h := range *c.headers {
		keys[i] = h.Key
	}
	return keys
}
