// Package clipboard stores the text produced by region copies.
//
// Backends implement Store. Session adapts a Store to the one-method
// clipboard the copy tool writes to and absorbs every backend error.
package clipboard

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var ErrClosed = errors.New("clipboard: closed")

type Entry struct {
	At      time.Time `json:"at"`
	Session string    `json:"session,omitempty"`
	Payload string    `json:"payload"`
}

type Store interface {
	Put(e Entry) error
	Close() error
}

// Session writes payloads for one session into a store.
type Session struct {
	ID     string
	Store  Store
	Logger *log.Logger
	Now    func() time.Time
}

func (s Session) SetContents(text string) {
	if s.Store == nil {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := s.Store.Put(Entry{At: now().UTC(), Session: s.ID, Payload: text}); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = log.New(io.Discard)
		}
		logger.Warn("clipboard unavailable", "session", s.ID, "bytes", len(text), "err", err)
	}
}

// Memory keeps the newest entries in memory.
type Memory struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
	closed  bool
}

// NewMemory keeps at most limit entries; limit <= 0 keeps 64.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 64
	}
	return &Memory{limit: limit}
}

func (m *Memory) Put(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	return nil
}

func (m *Memory) Latest() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// History returns up to limit entries, newest first.
func (m *Memory) History(limit int) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Multi writes every entry to all stores.
type Multi []Store

func (m Multi) Put(e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Put(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
