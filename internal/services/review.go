package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookdesk/bookdesk/internal/models"
)

var (
	ErrSessionNotFound = errors.New("review session not found")
	ErrIndexOutOfRange = errors.New("item index out of range")
	ErrItemResolved    = errors.New("item is already resolved")
	ErrItemUnresolved  = errors.New("item is not resolved yet")
	ErrStillNoMatch    = errors.New("still no catalog match")
	ErrUnknownField    = errors.New("unknown item field")
)

const sessionTTL = time.Hour

// ReviewSession owns the processed items of one extraction run plus
// the cart they merge into. Items leave the sequence the moment they
// are merged or removed; a merged item never lingers in review.
type ReviewSession struct {
	ID        string
	UserID    int
	CreatedAt time.Time

	mu       sync.Mutex
	items    []models.ProcessedItem
	cart     *models.Cart
	searcher BookSearcher
}

// Items returns a copy of the current review sequence.
func (s *ReviewSession) Items() []models.ProcessedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProcessedItem, len(s.items))
	copy(out, s.items)
	return out
}

// CartItems returns the session cart entries in insertion order.
func (s *ReviewSession) CartItems() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// EditFailed updates the title or quantity of an unresolved item.
// Resolved items are read-only; their data came from the catalog.
func (s *ReviewSession) EditFailed(index int, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	item := &s.items[index]
	if item.IsResolved() {
		return ErrItemResolved
	}

	switch field {
	case "title":
		item.Title = fmt.Sprintf("%v", value)
	case "quantity":
		item.Quantity = coerceEditQuantity(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Retry re-runs the catalog search for an unresolved item using its
// current (possibly edited) title. On a match the item becomes
// resolved in place; otherwise it stays unresolved and the caller gets
// ErrStillNoMatch as a non-fatal signal.
func (s *ReviewSession) Retry(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	item := s.items[index]
	if item.IsResolved() {
		return ErrItemResolved
	}

	books, err := s.searcher.Search(ctx, item.Title, 1)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return ErrStillNoMatch
	}

	s.items[index] = models.NewResolvedItem(item.Title, item.Quantity, books[0])
	return nil
}

// MergeOne moves one resolved item into the cart and drops it from the
// review sequence. Quantities sum when the cart already holds the same
// book.
func (s *ReviewSession) MergeOne(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	item := s.items[index]
	if !item.IsResolved() {
		return ErrItemUnresolved
	}

	s.cart.Add(*item.Book, item.Quantity)
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// MergeAllResolved merges every resolved item into the cart, leaving
// only unresolved items behind. Returns how many items were merged.
func (s *ReviewSession) MergeAllResolved() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	remaining := s.items[:0]
	for _, item := range s.items {
		if item.IsResolved() {
			s.cart.Add(*item.Book, item.Quantity)
			merged++
			continue
		}
		remaining = append(remaining, item)
	}
	s.items = remaining
	return merged
}

// Remove deletes an item from the sequence. The cart is untouched.
func (s *ReviewSession) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

func coerceEditQuantity(value any) int {
	switch q := value.(type) {
	case float64:
		if q >= 1 {
			return int(q)
		}
	case int:
		if q >= 1 {
			return q
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

// SessionStore keeps active review sessions in memory. Sessions are
// short-lived scratch state; they expire after an hour untouched by
// an order submission.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ReviewSession
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*ReviewSession),
		ttl:      sessionTTL,
		now:      time.Now,
	}
}

// Create registers a new session owning the given items.
func (st *SessionStore) Create(userID int, items []models.ProcessedItem, searcher BookSearcher) *ReviewSession {
	session := &ReviewSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: st.now(),
		items:     items,
		cart:      models.NewCart(),
		searcher:  searcher,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
	return session
}

// Get returns the session owned by userID, expiring stale entries on
// the way. Another user's session ID behaves like a missing one.
func (st *SessionStore) Get(id string, userID int) (*ReviewSession, error) {
	st.mu.RLock()
	session, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if st.now().Sub(session.CreatedAt) > st.ttl {
		st.Delete(id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete drops a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Sweep removes expired sessions. Called periodically from main.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	cutoff := st.now().Add(-st.ttl)
	for id, session := range st.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
