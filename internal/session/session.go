// Package session keeps one contact form per visitor, keyed by a cookie id.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artemstakhov/portfolio/internal/contact"
)

var (
	ErrUnknownSession = errors.New("unknown session")

	// ErrAttachmentBudget is returned by Attach when the file does not fit in
	// the bytes left for uploads across all sessions.
	ErrAttachmentBudget = errors.New("attachment budget exhausted")
)

// Factory creates the form for a new session.
type Factory func() *contact.Form

// Limits bound what the store keeps in memory. Zero caps mean unlimited.
type Limits struct {
	TTL time.Duration
	// MaxSessions is the number of live sessions. When full, the least
	// recently used session that is not submitting is evicted.
	MaxSessions int
	// MaxAttachmentBytes is the total size of files held by all forms.
	MaxAttachmentBytes int64
}

type entry struct {
	form     *contact.Form
	lastSeen time.Time
}

// Store holds live sessions in memory. Sessions idle longer than the TTL
// are dropped, except while their form is submitting.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	limits   Limits
	now      func() time.Time
}

func NewStore(l Limits) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		limits:   l,
		now:      time.Now,
	}
}

// Get returns the form of session id, creating a new session (with a new
// id) when id is unknown or expired. The returned id is the one to keep.
func (s *Store) Get(id string, newForm Factory) (string, *contact.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.liveLocked(id, now); ok {
		e.lastSeen = now
		return id, e.form, false
	}

	s.makeRoomLocked(now)

	id = uuid.NewString()
	form := newForm()
	s.sessions[id] = &entry{form: form, lastSeen: now}
	return id, form, true
}

// Lookup returns the form of a live session without creating one.
func (s *Store) Lookup(id string) (*contact.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.liveLocked(id, now)
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.form, true
}

// Attach binds a file to field fieldID of session id, provided the upload
// budget allows it. A file the field already holds does not count against
// the budget since it is replaced.
func (s *Store) Attach(id, fieldID string, a contact.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.liveLocked(id, now)
	if !ok {
		return ErrUnknownSession
	}
	e.lastSeen = now

	if budget := s.limits.MaxAttachmentBytes; budget > 0 {
		s.sweepLocked(now)
		var held int64
		for other, oe := range s.sessions {
			if other != id {
				held += oe.form.AttachmentBytes()
			}
		}
		if held+int64(len(a.Data)) > budget {
			return ErrAttachmentBudget
		}
	}
	return e.form.SetAttachment(fieldID, a)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// TTL is the idle lifetime of a session.
func (s *Store) TTL() time.Duration {
	return s.limits.TTL
}

func (s *Store) liveLocked(id string, now time.Time) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok || now.Sub(e.lastSeen) > s.limits.TTL {
		return nil, false
	}
	return e, true
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.limits.TTL && !e.form.IsSubmitting() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// makeRoomLocked frees a slot for a new session. Forms that are submitting
// are never evicted, so the cap can be exceeded by in-flight deliveries.
func (s *Store) makeRoomLocked(now time.Time) {
	limit := s.limits.MaxSessions
	if limit <= 0 || len(s.sessions) < limit {
		return
	}
	s.sweepLocked(now)

	for len(s.sessions) >= limit {
		oldest := ""
		var oldestSeen time.Time
		for id, e := range s.sessions {
			if e.form.IsSubmitting() {
				continue
			}
			if oldest == "" || e.lastSeen.Before(oldestSeen) {
				oldest, oldestSeen = id, e.lastSeen
			}
		}
		if oldest == "" {
			return
		}
		delete(s.sessions, oldest)
	}
}
