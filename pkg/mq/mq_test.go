package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "bookshelf.events", nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	err := p.Publish(context.Background(), "book.created", map[string]any{"bookId": 7})
	require.NoError(t, err)

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "bookshelf.events", got.exchange)
	assert.Equal(t, "book.created", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, now, got.msg.Timestamp)
	assert.NotEmpty(t, got.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, float64(7), body["bookId"])
}

func TestPublisher_PublishError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: brokerErr}, "bookshelf.events", nil)

	err := p.Publish(context.Background(), "book.deleted", struct{}{})
	assert.ErrorIs(t, err, brokerErr)
}

func TestPublisher_PublishUnmarshalable(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "bookshelf.events", nil)

	err := p.Publish(context.Background(), "book.created", make(chan int))
	require.Error(t, err)
	assert.Empty(t, ch.sent)
}

func TestPublisher_ConcurrentPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "bookshelf.events", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish(context.Background(), "book.reviewed", map[string]int{"n": i}))
		}()
	}
	wg.Wait()
	assert.Len(t, ch.sent, 20)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "bookshelf.events", nil)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
