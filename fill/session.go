// Package fill collects the answers of one form-filling session and checks
// them before they are handed to storage.
package fill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mbolis/forms-app/model"
	"github.com/mbolis/forms-app/render"
)

var ErrUnknownQuestion = errors.New("unknown question")

// RequiredError blocks a submission. Errors maps question ids to the
// message shown next to each question.
type RequiredError struct {
	Errors map[string]string
}

func (e *RequiredError) Error() string {
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%d required question(s) unanswered: %s", len(ids), strings.Join(ids, ", "))
}

// Submitter is the storage side of a submission.
type Submitter interface {
	SubmitAnswers(ctx context.Context, templateID int, username string, answers model.AnswerSet) (model.Receipt, error)
}

type Session struct {
	template model.Template
	answers  model.AnswerSet
	registry *render.Registry
}

func NewSession(t model.Template, registry *render.Registry) *Session {
	if registry == nil {
		registry = render.DefaultRegistry
	}
	return &Session{
		template: t,
		answers:  make(model.AnswerSet),
		registry: registry,
	}
}

func (s *Session) Template() model.Template {
	return s.template
}

// Answers returns a copy of the current answer set.
func (s *Session) Answers() model.AnswerSet {
	out := make(model.AnswerSet, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// SetAnswer stores value as is; the input that produced it is
// responsible for its shape.
func (s *Session) SetAnswer(questionID string, value any) error {
	if _, ok := s.template.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	s.answers[questionID] = value
	return nil
}

// SetRawAnswer parses a client value with the question's input strategy
// and stores the result.
func (s *Session) SetRawAnswer(questionID string, raw json.RawMessage) error {
	q, ok := s.template.QuestionByID(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	in, ok := s.registry.ResolveInputRenderer(q.Type)
	if !ok {
		return fmt.Errorf("%w: %s", render.ErrInvalidAnswer, render.UnsupportedMessage(q.Type))
	}
	value, err := in.Parse(q, raw)
	if err != nil {
		return fmt.Errorf("question %s: %w", questionID, err)
	}
	return s.SetAnswer(questionID, value)
}

// SetRawAnswers applies every entry of raw and reports the ones that
// could not be parsed, keyed by question id.
func (s *Session) SetRawAnswers(raw map[string]json.RawMessage) map[string]string {
	errs := make(map[string]string)
	for id, value := range raw {
		if err := s.SetRawAnswer(id, value); err != nil {
			errs[id] = err.Error()
		}
	}
	return errs
}

func (s *Session) Validate() map[string]string {
	return model.ValidateAll(s.template, s.answers)
}

// Views renders the template in fill mode with the current answers and
// their validation messages.
func (s *Session) Views(errs map[string]string) []render.View {
	return render.NewDispatcher(s.registry).RenderTemplate(s.template, render.ModeFill, s.answers, errs)
}

// Submit hands the answers to store once every required question is
// answered. The answers stay in the session whatever happens, so a failed
// submission can be retried.
func (s *Session) Submit(ctx context.Context, store Submitter, username string) (model.Receipt, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return model.Receipt{}, &RequiredError{Errors: errs}
	}
	return store.SubmitAnswers(ctx, s.template.ID, username, s.Answers())
}

// Discard drops the answers of an abandoned session.
func (s *Session) Discard() {
	s.answers = make(model.AnswerSet)
}
