package drafts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mbolis/forms-app/builder"
	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(ttl)
	s.now = func() time.Time { return now }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("d%d", n)
	}
	return s, &now
}

func threeQuestions() model.Template {
	return model.Template{Questions: []model.Question{
		{ID: "a", Type: model.TypeText},
		{ID: "b", Type: model.TypeText},
		{ID: "c", Type: model.TypeText},
	}}
}

func TestOwnership(t *testing.T) {
	s, _ := newTestStore(0)
	d := s.Create("alice", model.Template{})
	assert.Equal(t, "d1", d.ID)

	got, err := s.Get("d1", "alice")
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = s.Get("d1", "bob")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Get("d9", "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete("d1", "bob"), ErrForbidden)
	require.NoError(t, s.Delete("d1", "alice"))
	assert.Equal(t, 0, s.Len())
}

func TestDragCommitsIntoBuilder(t *testing.T) {
	s, _ := newTestStore(0)
	d := s.Create("alice", threeQuestions())

	err := d.Drag(func(e *dnd.Engine) error {
		for i, id := range []string{"a", "b", "c"} {
			e.Measure(id, dnd.Rect{Y: float64(i * 100), Width: 300, Height: 100})
		}
		if err := e.Start("a"); err != nil {
			return err
		}
		preview, err := e.Move(dnd.Point{X: 150, Y: 250})
		if err != nil {
			return err
		}
		assert.Equal(t, []string{"b", "c", "a"}, preview)
		_, _, err = e.Drop()
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c", "a"}, d.Template().QuestionIDs())
	assert.Equal(t, []string{"b", "c", "a"}, d.Order())
}

func TestEditResyncsEngine(t *testing.T) {
	s, _ := newTestStore(0)
	d := s.Create("alice", threeQuestions())

	require.NoError(t, d.Drag(func(e *dnd.Engine) error { return e.Start("b") }))

	var added model.Question
	require.NoError(t, d.Edit(func(b *builder.Builder) error {
		var err error
		added, err = b.AddQuestion(model.TypeRadio)
		return err
	}))

	assert.Equal(t, []string{"a", "b", "c", added.ID}, d.Order())
	err := d.Drag(func(e *dnd.Engine) error {
		assert.Equal(t, dnd.Idle, e.State())
		return nil
	})
	require.NoError(t, err)

	err = d.Edit(func(b *builder.Builder) error { return b.RemoveQuestion(10) })
	assert.ErrorIs(t, err, builder.ErrIndexOutOfRange)
}

func TestPurge(t *testing.T) {
	s, now := newTestStore(time.Hour)
	s.Create("alice", model.Template{})
	*now = now.Add(30 * time.Minute)
	s.Create("bob", model.Template{})

	*now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, s.Purge())
	_, err := s.Get("d1", "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	*now = now.Add(50 * time.Minute)
	_, err = s.Get("d2", "bob")
	require.NoError(t, err, "reading a draft keeps it alive")
	*now = now.Add(50 * time.Minute)
	assert.Equal(t, 0, s.Purge())
}

func TestJanitorStops(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Janitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
