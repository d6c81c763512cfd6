package render

import (
	"encoding/json"
	"errors"

	"github.com/mbolis/forms-app/model"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// RenderStrategy draws the input of one question type and turns what the
// client sends back into an answer of the right shape.
type RenderStrategy interface {
	Input(q model.Question, current any, disabled bool) View
	Parse(q model.Question, raw json.RawMessage) (any, error)
}

// ConfigStrategy draws the authoring controls specific to a question type.
type ConfigStrategy interface {
	Configure(q model.Question) View
}

type Registry struct {
	inputs  map[model.QuestionType]RenderStrategy
	configs map[model.QuestionType]ConfigStrategy
}

func NewRegistry() *Registry {
	return &Registry{
		inputs:  make(map[model.QuestionType]RenderStrategy),
		configs: make(map[model.QuestionType]ConfigStrategy),
	}
}

// Register binds t to its strategies. cfg may be nil for types without
// extra authoring controls.
func (r *Registry) Register(t model.QuestionType, in RenderStrategy, cfg ConfigStrategy) {
	r.inputs[t] = in
	if cfg != nil {
		r.configs[t] = cfg
	} else {
		delete(r.configs, t)
	}
}

func (r *Registry) ResolveInputRenderer(t model.QuestionType) (RenderStrategy, bool) {
	s, ok := r.inputs[t]
	return s, ok
}

func (r *Registry) ResolveBuilderConfig(t model.QuestionType) ConfigStrategy {
	return r.configs[t]
}

var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(model.TypeText, textInput{KindInput}, nil)
	r.Register(model.TypeTextarea, textInput{KindTextarea}, nil)
	r.Register(model.TypeRadio, choiceInput{kind: KindRadio}, optionsConfig{})
	r.Register(model.TypeSelect, choiceInput{kind: KindSelect}, optionsConfig{})
	r.Register(model.TypeCheckbox, choiceInput{kind: KindCheckbox, multi: true}, optionsConfig{})
	r.Register(model.TypeLinear, scaleInput{KindLinear}, scaleConfig{minChoices: []int{0, 1}, maxFrom: 2, maxTo: 10})
	r.Register(model.TypeRating, scaleInput{KindRating}, scaleConfig{minChoices: []int{0, 1}, maxFrom: 1, maxTo: 10})
	r.Register(model.TypeGridRadio, gridInput{KindGridRadio, false}, gridConfig{})
	r.Register(model.TypeGridCheckbox, gridInput{KindGridCheck, true}, gridConfig{})
	r.Register(model.TypeFile, fileInput{}, fileConfig{})
	r.Register(model.TypeDate, temporalInput{KindDate, "2006-01-02"}, nil)
	r.Register(model.TypeTime, temporalInput{KindTime, "15:04"}, nil)
	return r
}
