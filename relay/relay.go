// Package relay distributes status-change notifications to role views. With
// brokers configured it consumes a kafka topic; without, it runs an
// in-process loopback channel. The manager is injected and owns its
// lifecycle explicitly; there is no package-global connection.
package relay

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/segmentio/kafka-go"
)

const (
	maxReconnectAttempts = 5
	reconnectBaseDelay   = 500 * time.Millisecond
)

// Listener receives every notification the relay dispatches.
type Listener func(models.Notification)

// Subscription is the handle returned by Subscribe; the listener stays
// registered until Unsubscribe is called.
type Subscription struct {
	id int
	m  *Manager
}

func (s *Subscription) Unsubscribe() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.listeners, s.id)
}

// messageReader is the consume side of the kafka transport. Tests swap in a
// failing reader to exercise the reconnect budget.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Manager owns the inbound event channel and the listener registry.
type Manager struct {
	brokers       []string
	topic         string
	groupID       string
	newReader     func() messageReader
	reconnectBase time.Duration

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	running   bool
	cancel    context.CancelFunc

	loopback chan models.Notification
}

func NewManager(brokers []string, topic string) *Manager {
	m := &Manager{
		brokers:       brokers,
		topic:         topic,
		groupID:       "momfood-relay",
		reconnectBase: reconnectBaseDelay,
		listeners:     make(map[int]Listener),
		loopback:      make(chan models.Notification, 64),
	}
	m.newReader = func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: m.brokers,
			Topic:   m.topic,
			GroupID: m.groupID,
		})
	}
	return m
}

// Connect starts the dispatch loop. Calling Connect on a running manager is
// a no-op; calling it after the reconnect budget was exhausted starts a
// fresh attempt cycle.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	if len(m.brokers) == 0 {
		go m.runLoopback(runCtx)
	} else {
		go m.runKafka(runCtx)
	}
}

// Disconnect stops the dispatch loop. Registered listeners are kept.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.cancel()
	m.running = false
}

// Connected reports whether the dispatch loop is live.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Subscribe registers a listener and returns its handle.
func (m *Manager) Subscribe(fn Listener) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.listeners[m.nextID] = fn
	return &Subscription{id: m.nextID, m: m}
}

// Inject feeds an event into the loopback channel. The in-process publisher
// uses it when no brokers are configured.
func (m *Manager) Inject(n models.Notification) {
	select {
	case m.loopback <- n:
	default:
		log.Printf("relay: loopback channel full, dropping notification %s", n.ID)
	}
}

func (m *Manager) dispatch(n models.Notification) {
	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(n)
	}
}

func (m *Manager) runLoopback(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-m.loopback:
			m.dispatch(n)
		}
	}
}

// runKafka consumes the topic, reconnecting with exponential backoff. After
// maxReconnectAttempts consecutive failures the loop gives up; the next
// Connect call starts over.
func (m *Manager) runKafka(ctx context.Context) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}
		reader := m.newReader()
		err := m.consume(ctx, reader)
		_ = reader.Close()
		if ctx.Err() != nil {
			return
		}
		attempts++
		if attempts >= maxReconnectAttempts {
			log.Printf("relay: giving up after %d reconnect attempts: %v", attempts, err)
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return
		}
		delay := m.reconnectBase << uint(attempts-1)
		log.Printf("relay: connection lost (%v), reconnecting in %s", err, delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (m *Manager) consume(ctx context.Context, reader messageReader) error {
	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		var n models.Notification
		if err := json.Unmarshal(message.Value, &n); err != nil {
			log.Printf("relay: dropping malformed event: %v", err)
			continue
		}
		m.dispatch(n)
	}
}
