// Package drafts keeps the in-progress editing sessions of the builder.
// A draft lives in memory only; the template it edits is persisted when the
// owner submits it.
package drafts

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mbolis/forms-app/builder"
	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
)

var (
	ErrNotFound  = errors.New("draft not found")
	ErrForbidden = errors.New("draft belongs to another user")
)

type Draft struct {
	ID    string
	Owner string
	// TemplateID is the stored template being edited, 0 for a new one.
	TemplateID int

	mu      sync.Mutex
	builder *builder.Builder
	engine  *dnd.Engine
	touched time.Time
}

func newDraft(id, owner string, t model.Template, now time.Time) *Draft {
	d := &Draft{
		ID:         id,
		Owner:      owner,
		TemplateID: t.ID,
		builder:    builder.New(t),
		touched:    now,
	}
	d.engine = dnd.New(d.builder.QuestionIDs(), func(from, to int) {
		if err := d.builder.Reorder(from, to); err != nil {
			log.Errorf("drafts.reorder %s: %v", d.ID, err)
		}
	})
	return d
}

// Edit runs fn on the draft's builder under the draft lock. When fn changes
// the set or order of questions the drag engine is resynced, which cancels
// a gesture in progress.
func (d *Draft) Edit(fn func(b *builder.Builder) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := d.builder.QuestionIDs()
	err := fn(d.builder)
	if after := d.builder.QuestionIDs(); !slices.Equal(before, after) {
		d.engine.SetItems(after)
	}
	return err
}

// Drag runs fn on the drag engine under the draft lock. Drops commit into
// the builder.
func (d *Draft) Drag(fn func(e *dnd.Engine) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.engine)
}

// Template returns a copy of the template being edited.
func (d *Draft) Template() model.Template {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.builder.Template()
}

// Order is the question order to display: the live preview while a drag is
// in progress, the committed order otherwise.
func (d *Draft) Order() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Items()
}

type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// NewStore creates an empty store. Drafts untouched for longer than ttl are
// dropped by Purge; ttl <= 0 keeps them forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		drafts: make(map[string]*Draft),
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Store) Create(owner string, t model.Template) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := newDraft(s.newID(), owner, t, s.now())
	s.drafts[d.ID] = d
	log.Debugf("drafts.create %s by %s", d.ID, owner)
	return d
}

func (s *Store) Get(id, owner string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Owner != owner {
		return nil, ErrForbidden
	}
	d.mu.Lock()
	d.touched = s.now()
	d.mu.Unlock()
	return d, nil
}

func (s *Store) Delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return ErrNotFound
	}
	if d.Owner != owner {
		return ErrForbidden
	}
	delete(s.drafts, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Purge drops the expired drafts and returns how many were removed.
func (s *Store) Purge() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, d := range s.drafts {
		d.mu.Lock()
		expired := d.touched.Before(cutoff)
		d.mu.Unlock()
		if expired {
			delete(s.drafts, id)
			n++
		}
	}
	return n
}

// Janitor purges the store every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				log.Infof("drafts.purge removed %d expired drafts", n)
			}
		}
	}
}
