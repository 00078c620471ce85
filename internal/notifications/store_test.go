package notifications

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"advisorvoice/internal/domain"
)

func newTestStore(opts ...Option) *Store {
	var (
		mu   sync.Mutex
		next int
	)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	base := []Option{
		WithClock(func() time.Time { return fixed }),
		WithIDs(func() string {
			mu.Lock()
			defer mu.Unlock()
			next++
			return fmt.Sprintf("n-%d", next)
		}),
	}
	return NewStore(append(base, opts...)...)
}

func TestStoreDropsExactDuplicates(t *testing.T) {
	t.Parallel()

	s := newTestStore()

	first, added := s.Add("task", "Task created", "call John Smith tomorrow", domain.PriorityMedium, true)
	require.True(t, added)
	require.Equal(t, "n-1", first.ID)

	again, added := s.Add("task", "Task created", "call John Smith tomorrow", domain.PriorityHigh, true)
	require.False(t, added)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, s.List(), 1)

	_, added = s.Add("task", "Task created", "email Maria", domain.PriorityMedium, false)
	require.True(t, added)
	require.Len(t, s.List(), 2)
}

func TestStoreListIsNewestFirstCopy(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.Add("task", "A", "first", domain.PriorityLow, false)
	s.Add("task", "B", "second", "", false)

	list := s.List()
	require.Equal(t, "B", list[0].Title)
	require.Equal(t, domain.PriorityMedium, list[0].Priority)
	require.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), list[0].Time)

	list[0].Title = "mutated"
	require.Equal(t, "B", s.List()[0].Title)
}

func TestStoreMarkRead(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	a, _ := s.Add("task", "A", "first", domain.PriorityLow, false)
	s.Add("appointment", "B", "second", domain.PriorityLow, false)
	require.Equal(t, 2, s.UnreadCount())

	require.NoError(t, s.MarkRead(a.ID))
	require.Equal(t, 1, s.UnreadCount())
	require.ErrorIs(t, s.MarkRead("missing"), ErrNotFound)

	s.MarkAllRead()
	require.Zero(t, s.UnreadCount())
}

func TestStoreObserverSeesInsertsOnly(t *testing.T) {
	t.Parallel()

	var toasts []string
	s := newTestStore(WithObserver(func(n domain.Notification, showToast bool) {
		if showToast {
			toasts = append(toasts, n.Title)
		}
	}))

	s.Add("task", "Task created", "x", domain.PriorityMedium, true)
	s.Add("task", "Task created", "x", domain.PriorityMedium, true)
	s.Add("task", "Quiet", "y", domain.PriorityMedium, false)

	require.Equal(t, []string{"Task created"}, toasts)
}

func TestStoreDefaultIDsAreUUIDs(t *testing.T) {
	t.Parallel()

	n, _ := NewStore().Add("task", "t", "m", domain.PriorityLow, false)
	require.Len(t, n.ID, 36)
}
