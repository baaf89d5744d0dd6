package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer is a fire-and-forget publisher. Messages are queued on an inbox
// and written by a single goroutine; a full inbox drops the message.
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	mu      sync.RWMutex // guards closed against concurrent Publish
	closed  bool
	log     zerolog.Logger
}

// NewProducer builds a writer without a fixed topic; every message names its own.
func NewProducer(brokers []string, buf int, log zerolog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return newProducer(w, buf, log)
}

func newProducer(w messageWriter, buf int, log zerolog.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.With().Str("component", "kafka-producer").Logger(),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.Error().Err(err).Str("topic", m.Topic).Bytes("key", m.Key).Msg("write message")
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Error().Err(err).Msg("close writer")
		}
	}()
}

// Publish enqueues a message and reports whether it was accepted.
func (p *Producer) Publish(topic string, key, value []byte, headers ...kafka.Header) bool {
	m := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn().Str("topic", topic).Bytes("key", key).Msg("producer closed, message dropped")
		return false
	}
	select {
	case p.inbox <- m:
		return true
	default:
		p.log.Warn().Str("topic", topic).Bytes("key", key).Msg("inbox full, message dropped")
		return false
	}
}

// Close stops accepting messages, flushes the inbox and waits for the writer.
// Publish after Close drops the message.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.closeCh
}
