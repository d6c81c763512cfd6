package render

import (
	"github.com/mbolis/forms-app/model"
)

// Context carries what a question needs beyond itself.
type Context struct {
	// Answer is the current value in fill mode.
	Answer any
	// Error is the inline validation message in fill mode.
	Error    string
	Disabled bool
	// Siblings are the other questions of the template; the builder uses
	// them to disable type choices that would break a limit.
	Siblings []model.Question
}

type Dispatcher struct {
	Registry *Registry
}

func NewDispatcher(r *Registry) Dispatcher {
	if r == nil {
		r = DefaultRegistry
	}
	return Dispatcher{Registry: r}
}

func UnsupportedMessage(t model.QuestionType) string {
	return "Unsupported question type: " + string(t)
}

func (d Dispatcher) Render(q model.Question, mode Mode, ctx Context) View {
	switch mode {
	case ModeBuilder:
		return d.builder(q, ctx)
	case ModePreview:
		return d.preview(q)
	default:
		return d.fill(q, ctx)
	}
}

// RenderTemplate renders every question of t. answers and errors are only
// read in fill mode and may be nil.
func (d Dispatcher) RenderTemplate(t model.Template, mode Mode, answers model.AnswerSet, errors map[string]string) []View {
	views := make([]View, 0, len(t.Questions))
	for i, q := range t.Questions {
		ctx := Context{
			Answer:   answers[q.ID],
			Error:    errors[q.ID],
			Siblings: siblings(t.Questions, i),
		}
		views = append(views, d.Render(q, mode, ctx))
	}
	return views
}

func (d Dispatcher) fill(q model.Question, ctx Context) View {
	in, ok := d.Registry.ResolveInputRenderer(q.Type)
	if !ok {
		return View{Kind: KindWarning, Field: q.ID, Text: UnsupportedMessage(q.Type)}
	}

	v := View{
		Kind:     KindQuestion,
		Field:    q.ID,
		Text:     q.Label(),
		Value:    q.QuestionText,
		Error:    ctx.Error,
		Children: []View{in.Input(q, ctx.Answer, ctx.Disabled)},
	}
	if q.Required {
		v.Badges = []string{BadgeRequired}
	}
	return v
}

func (d Dispatcher) builder(q model.Question, ctx Context) View {
	typeSelect := View{Kind: KindSelect, Field: "type", Text: "Question type", Value: q.Type}
	for _, t := range model.QuestionTypes {
		typeSelect.Items = append(typeSelect.Items, string(t))
		if t != q.Type && !model.CanAdd(ctx.Siblings, t) {
			typeSelect.DisabledItems = append(typeSelect.DisabledItems, string(t))
		}
	}

	children := []View{
		{Kind: KindInput, Field: "title", Text: "Title", Value: q.Title},
		{Kind: KindTextarea, Field: "questionText", Text: "Question", Value: q.QuestionText},
		{Kind: KindTextarea, Field: "description", Text: "Description", Value: q.Description},
		typeSelect,
	}

	if _, ok := d.Registry.ResolveInputRenderer(q.Type); !ok {
		children = append(children, View{Kind: KindWarning, Text: UnsupportedMessage(q.Type)})
	} else if cfg := d.Registry.ResolveBuilderConfig(q.Type); cfg != nil {
		children = append(children, cfg.Configure(q))
	}

	children = append(children,
		View{Kind: KindToggle, Field: "required", Text: "Required", Value: q.Required},
		View{Kind: KindToggle, Field: "showInTable", Text: "Show in table", Value: q.ShowInTable},
		View{Kind: KindAction, Field: "delete", Text: "Delete question"},
	)

	return View{Kind: KindQuestionEditor, Field: q.ID, Text: q.Label(), Children: children}
}

func (d Dispatcher) preview(q model.Question) View {
	v := View{
		Kind:     KindPreview,
		Field:    q.ID,
		Text:     q.Label(),
		Value:    q.QuestionText,
		ReadOnly: true,
	}
	if q.Required {
		v.Badges = append(v.Badges, BadgeRequired)
	}
	if q.ShowInTable {
		v.Badges = append(v.Badges, BadgeShowInTable)
	}

	if q.Description != "" {
		v.Children = append(v.Children, View{Kind: KindText, Text: q.Description})
	}
	switch {
	case q.Type.HasOptions():
		v.Children = append(v.Children, View{Kind: KindList, Items: q.Options})
	case q.Type.IsGrid():
		v.Children = append(v.Children, View{Kind: KindList, Text: "Rows", Items: q.Rows}, View{Kind: KindList, Text: "Columns", Items: q.Columns})
	case q.Type.IsScale():
		v.Min, v.Max = q.Min, q.Max
	case q.Type == model.TypeFile:
		v.Accept, v.Multiple = q.Accept, q.Multiple
	}
	if _, ok := d.Registry.ResolveInputRenderer(q.Type); !ok {
		v.Children = append(v.Children, View{Kind: KindWarning, Text: UnsupportedMessage(q.Type)})
	}
	return v
}

func siblings(qs []model.Question, i int) []model.Question {
	out := make([]model.Question, 0, len(qs)-1)
	out = append(out, qs[:i]...)
	return append(out, qs[i+1:]...)
}
