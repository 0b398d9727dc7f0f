// Package state provides thread-safe state shared between the animation loop
// and the terminal preview.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-starfield/internal/comet"
	"github.com/litescript/ls-starfield/internal/strip"
)

// EventType represents the type of animation event.
type EventType string

const (
	EventCometStarted  EventType = "COMET_STARTED"
	EventCometFinished EventType = "COMET_FINISHED"
)

// Event records a comet launch or landing.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Direction string        `json:"direction"`
	Trail     int           `json:"trail"`
	StepDelay time.Duration `json:"step_delay"`
	Head      float64       `json:"head_brightness"`
}

// Manager holds the latest shown frame and a log of comet events. The
// animation goroutine writes, the preview reads snapshots.
type Manager struct {
	mu sync.RWMutex

	// Current frame
	frame     []strip.HSV
	lastFrame time.Time
	frames    uint64

	// Counters
	ticks       uint64
	comets      uint64
	cometActive bool
	started     time.Time

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50, // Last 50 events
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		started:   time.Now(),
	}
}

// FrameShown stores a copy of a frame that was latched on the strip. It
// matches strip.Buffer's OnShow signature.
func (m *Manager) FrameShown(frame []strip.HSV) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cap(m.frame) < len(frame) {
		m.frame = make([]strip.HSV, len(frame))
	}
	m.frame = m.frame[:len(frame)]
	copy(m.frame, frame)
	m.lastFrame = time.Now()
	m.frames++
}

// Ticked implements scheduler.Observer.
func (m *Manager) Ticked(tick uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = tick
}

// CometStarted implements scheduler.Observer.
func (m *Manager) CometStarted(p comet.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comets++
	m.cometActive = true
	m.addEvent(newEvent(EventCometStarted, p))
}

// CometFinished implements scheduler.Observer.
func (m *Manager) CometFinished(p comet.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cometActive = false
	m.addEvent(newEvent(EventCometFinished, p))
}

func newEvent(t EventType, p comet.Params) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Direction: p.Direction.String(),
		Trail:     p.Trail,
		StepDelay: p.StepDelay,
		Head:      p.HeadBrightness,
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame       []strip.HSV
	LastFrame   time.Time
	Frames      uint64
	Ticks       uint64
	Comets      uint64
	CometActive bool
	Uptime      time.Duration
	Events      []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frame := make([]strip.HSV, len(m.frame))
	copy(frame, m.frame)

	return Snapshot{
		Frame:       frame,
		LastFrame:   m.lastFrame,
		Frames:      m.frames,
		Ticks:       m.ticks,
		Comets:      m.comets,
		CometActive: m.cometActive,
		Uptime:      time.Since(m.started),
		Events:      m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events, oldest first.
func (s Snapshot) RecentEvents(n int) []Event {
	if n <= 0 {
		return nil
	}
	if len(s.Events) <= n {
		return s.Events
	}
	return s.Events[len(s.Events)-n:]
}

// HasFrame returns true once at least one frame has been shown.
func (s Snapshot) HasFrame() bool {
	return s.Frames > 0
}
