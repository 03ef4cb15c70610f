package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/nebulashop-backend/pkg/config"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

const writeTimeout = 10 * time.Second

// ErrProducerClosed is returned when publishing after Close.
var ErrProducerClosed = errors.New("kafka producer closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages and writes them from a single goroutine so
// callers never wait on the brokers.
type Producer struct {
	w     messageWriter
	logg  *logger.Logger
	inbox chan kafka.Message
	done  chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewProducer connects a hash-balanced writer to the configured brokers and
// starts the write loop.
func NewProducer(cfg config.KafkaConfig, logg *logger.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newProducer(w, cfg.BufferSize, logg)
}

func newProducer(w messageWriter, buf int, logg *logger.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	if logg == nil {
		logg = logger.Nop()
	}
	p := &Producer{
		w:     w,
		logg:  logg,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Producer) run() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.logg.Error(p.logg.WithField(ctx, "kafka_key", string(m.Key)), "kafka write failed", err)
		}
		cancel()
	}
}

// Publish queues a message. It blocks only while the buffer is full and
// gives up when ctx ends.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	msg := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued messages and closes the writer.
func (p *Producer) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
		p.closeErr = p.w.Close()
	})
	return p.closeErr
}
