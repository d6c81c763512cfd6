// Package builder holds the editing state of one template: the ordered
// question list and its metadata. Every operation mutates memory only;
// nothing is persisted until Submit succeeds and the caller saves.
package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/model"
)

var (
	ErrLimitReached    = errors.New("question limit reached")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrLastOption      = errors.New("a question needs at least one option")
	ErrUnknownField    = errors.New("unknown question field")
	ErrInvalidValue    = errors.New("invalid field value")
	ErrUnknownType     = errors.New("unknown question type")
)

const (
	MsgIncompleteTemplate = "Please complete all required fields"
	MsgNoQuestions        = "Please add at least one question"
	MsgIncompleteQuestion = "Each question must have a title and question text"
	MsgDuplicateID        = "Each question must have a unique id"
	MsgMissingOptions     = "Each choice question needs at least one option"
	MsgIncompleteGrid     = "Each grid question needs at least one row and one column"
	MsgInvalidScale       = "Each scale question needs a minimum lower than its maximum"
)

// MsgUnsupportedType is formatted with the offending type.
const MsgUnsupportedType = "Unsupported question type: %s"

type Builder struct {
	template model.Template
	newID    func() string
}

// New starts an editing session over t. Every question is normalized to
// its type; questions without an id, or repeating the id of an earlier
// one, get a fresh id.
func New(t model.Template) *Builder {
	b := &Builder{
		template: t.Clone(),
		newID:    uuid.NewString,
	}
	seen := make(map[string]bool, len(b.template.Questions))
	for i, q := range b.template.Questions {
		q = model.Normalize(q)
		if q.ID == "" || seen[q.ID] {
			q.ID = b.newID()
		}
		seen[q.ID] = true
		b.template.Questions[i] = q
	}
	return b
}

// Template returns a copy of the current state.
func (b *Builder) Template() model.Template {
	return b.template.Clone()
}

func (b *Builder) Questions() []model.Question {
	return b.Template().Questions
}

func (b *Builder) QuestionIDs() []string {
	return b.template.QuestionIDs()
}

func (b *Builder) CanAdd(t model.QuestionType) bool {
	return model.CanAdd(b.template.Questions, t)
}

func (b *Builder) AddQuestion(t model.QuestionType) (model.Question, error) {
	if !t.Known() {
		return model.Question{}, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if !b.CanAdd(t) {
		max, _ := model.Limit(t)
		return model.Question{}, fmt.Errorf("%w: at most %d questions of type %s", ErrLimitReached, max, t)
	}

	q := model.CreateDefault(t)
	q.ID = b.newID()
	b.template.Questions = append(b.template.Questions, q)
	return q.Clone(), nil
}

func (b *Builder) RemoveQuestion(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	qs := b.template.Questions
	b.template.Questions = append(qs[:index:index], qs[index+1:]...)
	return nil
}

// Reorder moves one question, keeping the others in their relative order.
func (b *Builder) Reorder(from, to int) error {
	if err := b.checkIndex(from); err != nil {
		return err
	}
	if err := b.checkIndex(to); err != nil {
		return err
	}
	b.template.Questions = dnd.Move(b.template.Questions, from, to)
	return nil
}

func (b *Builder) UpdateOption(qIndex, optIndex int, value string) error {
	q, err := b.optionQuestion(qIndex)
	if err != nil {
		return err
	}
	if optIndex < 0 || optIndex >= len(q.Options) {
		return fmt.Errorf("%w: option %d", ErrIndexOutOfRange, optIndex)
	}
	q.Options[optIndex] = value
	return nil
}

func (b *Builder) AddOption(qIndex int) error {
	q, err := b.optionQuestion(qIndex)
	if err != nil {
		return err
	}
	q.Options = append(q.Options, "")
	return nil
}

func (b *Builder) RemoveOption(qIndex, optIndex int) error {
	q, err := b.optionQuestion(qIndex)
	if err != nil {
		return err
	}
	if optIndex < 0 || optIndex >= len(q.Options) {
		return fmt.Errorf("%w: option %d", ErrIndexOutOfRange, optIndex)
	}
	if len(q.Options) <= 1 {
		return ErrLastOption
	}
	q.Options = append(q.Options[:optIndex:optIndex], q.Options[optIndex+1:]...)
	return nil
}

// Meta is the template data edited outside the question list.
type Meta struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Topic        model.Topic     `json:"topic"`
	Tags         []string        `json:"tags"`
	IsPublic     bool            `json:"isPublic"`
	AllowedUsers []model.UserRef `json:"allowedUsers"`
}

func (b *Builder) SetMeta(m Meta) {
	b.template.Title = m.Title
	b.template.Description = m.Description
	b.template.Topic = m.Topic
	b.template.IsPublic = m.IsPublic
	b.template.Tags = uniqueTags(m.Tags)
	if m.IsPublic {
		b.template.AllowedUsers = nil
	} else {
		b.template.AllowedUsers = append([]model.UserRef(nil), m.AllowedUsers...)
	}
}

// Submit validates the template and returns a copy of it when valid.
func (b *Builder) Submit() (model.ValidationResult, *model.Template) {
	result := Validate(b.template)
	if !result.IsValid {
		return result, nil
	}
	t := b.Template()
	return result, &t
}

// Validate runs the structural checks in order and stops at the first
// failing category. Only the limit check reports several messages.
func Validate(t model.Template) model.ValidationResult {
	if err := model.ValidateMeta(t); err != nil {
		return model.Invalid(MsgIncompleteTemplate)
	}
	if len(t.Questions) == 0 {
		return model.Invalid(MsgNoQuestions)
	}
	for _, q := range t.Questions {
		if strings.TrimSpace(q.Title) == "" || strings.TrimSpace(q.QuestionText) == "" {
			return model.Invalid(MsgIncompleteQuestion)
		}
	}
	seen := make(map[string]bool, len(t.Questions))
	for _, q := range t.Questions {
		if msg := checkShape(q); msg != "" {
			return model.Invalid(msg)
		}
		if seen[q.ID] {
			return model.Invalid(MsgDuplicateID)
		}
		seen[q.ID] = true
	}
	return model.ValidateLimits(t.Questions)
}

// checkShape reports the first structural problem of q, or "".
func checkShape(q model.Question) string {
	switch {
	case !q.Type.Known():
		return fmt.Sprintf(MsgUnsupportedType, q.Type)
	case q.Type.HasOptions() && len(q.Options) < 1:
		return MsgMissingOptions
	case q.Type.IsGrid() && (len(q.Rows) < 1 || len(q.Columns) < 1):
		return MsgIncompleteGrid
	case q.Type.IsScale() && (q.Min == nil || q.Max == nil || *q.Min >= *q.Max):
		return MsgInvalidScale
	}
	return ""
}

func (b *Builder) checkIndex(i int) error {
	if i < 0 || i >= len(b.template.Questions) {
		return fmt.Errorf("%w: question %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func (b *Builder) optionQuestion(i int) (*model.Question, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	q := &b.template.Questions[i]
	if !q.Type.HasOptions() {
		return nil, fmt.Errorf("%w: %s questions have no options", ErrInvalidValue, q.Type)
	}
	return q, nil
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
