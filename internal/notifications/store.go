// Package notifications keeps the session-scoped notification list shown by
// the shell.
package notifications

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"advisorvoice/internal/domain"
)

var ErrNotFound = errors.New("notification not found")

// Observer is told about every notification that was actually inserted.
type Observer func(n domain.Notification, showToast bool)

// Store is an in-memory notification list, newest first.
type Store struct {
	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	items    []domain.Notification
	observer Observer
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithObserver(observer Observer) Option {
	return func(s *Store) { s.observer = observer }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a notification unless one with the same title and message is
// already present. The bool reports whether it was inserted.
func (s *Store) Add(kind, title, message string, priority domain.NotificationPriority, showToast bool) (domain.Notification, bool) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if priority == "" {
		priority = domain.PriorityMedium
	}

	s.mu.Lock()
	existing, dup := lo.Find(s.items, func(n domain.Notification) bool {
		return n.Title == title && n.Message == message
	})
	if dup {
		s.mu.Unlock()
		return existing, false
	}

	n := domain.Notification{
		ID:       s.newID(),
		Type:     kind,
		Title:    title,
		Message:  message,
		Priority: priority,
		Time:     s.now(),
	}
	s.items = append([]domain.Notification{n}, s.items...)
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(n, showToast)
	}
	return n, true
}

func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, index, ok := lo.FindIndexOf(s.items, func(n domain.Notification) bool {
		return n.ID == id
	})
	if !ok {
		return ErrNotFound
	}
	s.items[index].Read = true
	return nil
}

func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// List returns a copy, newest first.
func (s *Store) List() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.CountBy(s.items, func(n domain.Notification) bool {
		return !n.Read
	})
}
