package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer is a buffered async kafka writer. Publishing never blocks the
// settlement path beyond the inbox buffer; flushing happens on a background
// goroutine.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	service string
}

func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		service: service,
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer func() {
			_ = p.w.Close()
			close(p.closeCh)
		}()
		for {
			select {
			case <-ctx.Done():
				// drain what is already buffered, then stop
				for {
					select {
					case m, ok := <-p.inbox:
						if !ok {
							return
						}
						if err := p.w.WriteMessages(context.Background(), m); err != nil {
							log.Printf("kafka flush: %v", err)
						}
					default:
						return
					}
				}
			case m, ok := <-p.inbox:
				if !ok {
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("kafka write: %v", err)
				}
			}
		}
	}()
}

// OrderSettled publishes the settlement outcome for one order.
func (p *Producer) OrderSettled(orderID, reference, status, method, amount string) {
	payload, err := json.Marshal(OrderSettledPayload{
		OrderID:   orderID,
		Reference: reference,
		Status:    status,
		Method:    method,
		Amount:    amount,
	})
	if err != nil {
		log.Printf("marshal settled payload: %v", err)
		return
	}

	value, err := json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderSettled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: orderID,
		Payload:       payload,
	})
	if err != nil {
		log.Printf("marshal settled envelope: %v", err)
		return
	}

	p.inbox <- kafka.Message{
		Key:   PartitionKey(orderID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(EventOrderSettled)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
}

// Close stops accepting messages; the background goroutine flushes the rest.
func (p *Producer) Close() { close(p.inbox) }

func (p *Producer) WaitClosed() { <-p.closeCh }
