package event

import (
	"sync"

	"go.uber.org/zap"
)

const listenerBuffer = 64

type Listener struct {
	eventType Type
	channel   chan interface{}
	done      chan struct{}
}

// Manager fans events out to listeners. Each listener receives its events in emit order on
// its own goroutine.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
	closed    bool
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) *Listener {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := &Listener{
		eventType: eventType,
		channel:   make(chan interface{}, listenerBuffer),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, listener)
	m.mu.Unlock()

	go func() {
		defer close(listener.done)
		for msg := range listener.channel {
			callback(msg)
		}
	}()

	return listener
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	for _, listener := range m.listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			listener.channel <- msg
		}
	}
}

// Close stops accepting events and waits for every listener to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	listeners := m.listeners
	m.mu.Unlock()

	for _, listener := range listeners {
		close(listener.channel)
		<-listener.done
	}
}
