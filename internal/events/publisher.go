package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/metrics"
)

// Publisher hands an event to the broker.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, string, any) error { return nil }

// Publisher defaults.
const (
	publishTimeout = 3 * time.Second
	publishBuffer  = 1024
)

// Errors returned by AMQPPublisher.Publish. Neither is meant to reach a client.
var (
	ErrPublishBufferFull = errors.New("event buffer full")
	ErrPublisherClosed   = errors.New("publisher closed")
)

// AMQPPublisher publishes persistent JSON messages to one durable queue via
// the default exchange. Publish only enqueues: one background goroutine owns
// the connection, dials on first use and re-dials after the broker drops it.
// Dial, handshake and each publish are bounded by timeout. After a failed
// dial no new dial is attempted for one timeout period and events arriving in
// that window are dropped.
type AMQPPublisher struct {
	url     string
	queue   string
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration

	pending   chan Envelope
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by run
	conn       *amqp.Connection
	ch         *amqp.Channel
	retryAfter time.Time
}

// NewAMQPPublisher starts a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string, log *zap.Logger) *AMQPPublisher {
	p := newAMQPPublisher(url, queue, log, publishTimeout, publishBuffer)
	go p.run()
	return p
}

func newAMQPPublisher(url, queue string, log *zap.Logger, timeout time.Duration, buffer int) *AMQPPublisher {
	return &AMQPPublisher{
		url:     url,
		queue:   queue,
		log:     log.Named("publisher"),
		now:     time.Now,
		timeout: timeout,
		pending: make(chan Envelope, buffer),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Publish builds the Envelope and hands it to the background sender. It
// never waits on the broker; a full buffer drops the event.
func (p *AMQPPublisher) Publish(_ context.Context, name string, payload any) error {
	env, err := NewEnvelope(name, payload, p.now())
	if err != nil {
		p.fail(name, "marshal", err)
		return err
	}
	select {
	case <-p.stop:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.pending <- env:
		return nil
	default:
		p.fail(name, "enqueue", ErrPublishBufferFull)
		return ErrPublishBufferFull
	}
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	defer p.reset()
	for {
		select {
		case env := <-p.pending:
			p.send(env)
		case <-p.stop:
			p.drain()
			return
		}
	}
}

// drain sends what is still buffered, giving up after one timeout period.
func (p *AMQPPublisher) drain() {
	deadline := time.Now().Add(p.timeout)
	for time.Now().Before(deadline) {
		select {
		case env := <-p.pending:
			p.send(env)
		default:
			return
		}
	}
	if n := len(p.pending); n > 0 {
		p.log.Warn("events dropped on close", zap.Int("count", n))
	}
}

func (p *AMQPPublisher) send(env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		p.fail(env.Name, "marshal", err)
		return
	}
	ch, err := p.channel()
	if err != nil {
		p.fail(env.Name, "connect", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Name,
		Timestamp:    env.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		p.fail(env.Name, "publish", err)
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(env.Name, "ok").Inc()
	p.log.Debug("event published", zap.String("event", env.Name), zap.String("event_id", env.ID))
}

var errDialBackoff = errors.New("broker unreachable, waiting before redial")

// channel returns the open channel, dialing when needed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.retryAfter) {
		return nil, errDialBackoff
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.timeout),
	})
	if err != nil {
		p.retryAfter = time.Now().Add(p.timeout)
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

func (p *AMQPPublisher) fail(name, stage string, err error) {
	metrics.EventsPublishedTotal.WithLabelValues(name, "error").Inc()
	p.log.Warn("event publish failed", zap.String("event", name), zap.String("stage", stage), zap.Error(err))
}

// Close stops the sender after it flushes the buffer (bounded by the
// publish timeout) and releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, name string, payload any) error {
	env, err := NewEnvelope(name, payload, time.Now())
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, env)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}

// Named returns the published events called name.
func (r *Recorder) Named(name string) []Envelope {
	var out []Envelope
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
