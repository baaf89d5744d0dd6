package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	failOn  string
	closed  bool
	release chan struct{}
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		if m.Topic == f.failOn {
			return errors.New("broker unavailable")
		}
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestProducer_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, zerolog.Nop())
	p.Start()

	assert.True(t, p.Publish("order.paid", []byte("sess_1"), []byte(`{"a":1}`),
		kafka.Header{Key: "x-event-type", Value: []byte("OrderPaid")}))
	assert.True(t, p.Publish("order.canceled", []byte("sess_2"), []byte(`{"a":2}`)))
	p.Close()

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "order.paid", w.msgs[0].Topic)
	assert.Equal(t, []byte("sess_1"), w.msgs[0].Key)
	assert.Equal(t, "x-event-type", w.msgs[0].Headers[0].Key)
	assert.True(t, w.closed)
}

func TestProducer_WriteErrorDoesNotStopLoop(t *testing.T) {
	w := &fakeWriter{failOn: "bad"}
	p := newProducer(w, 8, zerolog.Nop())
	p.Start()

	p.Publish("bad", nil, []byte("x"))
	p.Publish("good", nil, []byte("y"))
	p.Close()

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "good", w.msgs[0].Topic)
}

func TestProducer_DropsWhenInboxFull(t *testing.T) {
	w := &fakeWriter{release: make(chan struct{})}
	p := newProducer(w, 1, zerolog.Nop())

	// not started: the single slot fills and the next publish is dropped
	assert.True(t, p.Publish("t", nil, []byte("1")))
	assert.False(t, p.Publish("t", nil, []byte("2")))

	close(w.release)
	p.Start()
	p.Close()
	assert.Len(t, w.msgs, 1)
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	p := newProducer(&fakeWriter{}, 1, zerolog.Nop())
	p.Start()
	p.Close()
	p.Close()
}

func TestProducer_PublishAfterCloseDrops(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 4, zerolog.Nop())
	p.Start()
	p.Close()

	assert.NotPanics(t, func() {
		assert.False(t, p.Publish("order.paid", []byte("sess_1"), []byte(`{}`)))
	})
	assert.Empty(t, w.msgs)
}

func TestProducer_ConcurrentPublishAndClose(t *testing.T) {
	p := newProducer(&fakeWriter{}, 64, zerolog.Nop())
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Publish("order.placed", []byte("k"), []byte(`{}`))
			}
		}()
	}
	p.Close()
	wg.Wait()
}

func TestMustMarshal(t *testing.T) {
	assert.JSONEq(t, `{"session_ref":"sess_1"}`, string(MustMarshal(map[string]string{"session_ref": "sess_1"})))
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}
