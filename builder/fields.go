package builder

import (
	"fmt"
	"math"

	"github.com/mbolis/forms-app/model"
)

// Field names accepted by UpdateQuestionField. They match the JSON names
// of model.Question.
const (
	FieldType         = "type"
	FieldTitle        = "title"
	FieldQuestionText = "questionText"
	FieldDescription  = "description"
	FieldRequired     = "required"
	FieldShowInTable  = "showInTable"
	FieldOptions      = "options"
	FieldRows         = "rows"
	FieldColumns      = "columns"
	FieldMin          = "min"
	FieldMax          = "max"
	FieldAccept       = "accept"
	FieldMultiple     = "multiple"
)

// UpdateQuestionField sets one field of the question at index. Values may
// come straight from a JSON decoder (float64 numbers, []any lists).
// Changing the type goes through model.ChangeType so stale auxiliary
// fields never survive.
func (b *Builder) UpdateQuestionField(index int, field string, value any) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	q := &b.template.Questions[index]

	switch field {
	case FieldType:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		t := model.QuestionType(s)
		if !t.Known() {
			return fmt.Errorf("%w: %s", ErrUnknownType, s)
		}
		if t == q.Type {
			return nil
		}
		others := append(append([]model.Question(nil), b.template.Questions[:index]...), b.template.Questions[index+1:]...)
		if !model.CanAdd(others, t) {
			max, _ := model.Limit(t)
			return fmt.Errorf("%w: at most %d questions of type %s", ErrLimitReached, max, t)
		}
		*q = model.ChangeType(*q, t)

	case FieldTitle, FieldQuestionText, FieldDescription:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		switch field {
		case FieldTitle:
			q.Title = s
		case FieldQuestionText:
			q.QuestionText = s
		default:
			q.Description = s
		}

	case FieldRequired, FieldShowInTable:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, field)
		}
		if field == FieldRequired {
			q.Required = v
		} else {
			q.ShowInTable = v
		}

	case FieldOptions:
		if !q.Type.HasOptions() {
			return notApplicable(field, q.Type)
		}
		opts, err := asStrings(field, value)
		if err != nil {
			return err
		}
		if len(opts) == 0 {
			return ErrLastOption
		}
		q.Options = opts

	case FieldRows, FieldColumns:
		if !q.Type.IsGrid() {
			return notApplicable(field, q.Type)
		}
		list, err := asStrings(field, value)
		if err != nil {
			return err
		}
		if field == FieldRows {
			q.Rows = list
		} else {
			q.Columns = list
		}

	case FieldMin, FieldMax:
		if !q.Type.IsScale() {
			return notApplicable(field, q.Type)
		}
		n, err := asInt(field, value)
		if err != nil {
			return err
		}
		if field == FieldMin {
			if q.Max != nil && n >= *q.Max {
				return fmt.Errorf("%w: min must be lower than max", ErrInvalidValue)
			}
			q.Min = model.IntPtr(n)
		} else {
			if q.Min != nil && n <= *q.Min {
				return fmt.Errorf("%w: max must be greater than min", ErrInvalidValue)
			}
			q.Max = model.IntPtr(n)
		}

	case FieldAccept:
		if q.Type != model.TypeFile {
			return notApplicable(field, q.Type)
		}
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		q.Accept = s

	case FieldMultiple:
		if q.Type != model.TypeFile {
			return notApplicable(field, q.Type)
		}
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, field)
		}
		q.Multiple = v

	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func notApplicable(field string, t model.QuestionType) error {
	return fmt.Errorf("%w: %s does not apply to %s questions", ErrInvalidValue, field, t)
}

func asString(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidValue, field)
	}
	return s, nil
}

func asStrings(field string, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidValue, field)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidValue, field)
}

func asInt(field string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidValue, field)
}
