package model

type QuestionType string

const (
	TypeText         QuestionType = "text"
	TypeTextarea     QuestionType = "textarea"
	TypeRadio        QuestionType = "radio"
	TypeCheckbox     QuestionType = "checkbox"
	TypeSelect       QuestionType = "select"
	TypeLinear       QuestionType = "linear"
	TypeRating       QuestionType = "rating"
	TypeGridRadio    QuestionType = "grid_radio"
	TypeGridCheckbox QuestionType = "grid_checkbox"
	TypeFile         QuestionType = "file"
	TypeDate         QuestionType = "date"
	TypeTime         QuestionType = "time"

	// TypeNumber only appears in the limit policy; the builder never offers it.
	TypeNumber QuestionType = "number"
)

// QuestionTypes are the types offered by the builder, in display order.
var QuestionTypes = []QuestionType{
	TypeText,
	TypeTextarea,
	TypeRadio,
	TypeCheckbox,
	TypeSelect,
	TypeLinear,
	TypeRating,
	TypeGridRadio,
	TypeGridCheckbox,
	TypeFile,
	TypeDate,
	TypeTime,
}

func (t QuestionType) Known() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t QuestionType) HasOptions() bool {
	return t == TypeRadio || t == TypeCheckbox || t == TypeSelect
}

func (t QuestionType) IsGrid() bool {
	return t == TypeGridRadio || t == TypeGridCheckbox
}

func (t QuestionType) IsScale() bool {
	return t == TypeLinear || t == TypeRating
}

// Question is a single form field. Which of the auxiliary fields
// (Options, Rows/Columns, Min/Max, Accept/Multiple) are populated
// depends on Type.
type Question struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	Title        string       `json:"title"`
	QuestionText string       `json:"questionText"`
	Description  string       `json:"description,omitempty"`
	Required     bool         `json:"required"`
	ShowInTable  bool         `json:"showInTable"`

	Options  []string `json:"options,omitempty"`
	Rows     []string `json:"rows,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
	Accept   string   `json:"accept,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Label is the display text used by fill-mode views. It exists for
// clients that still send or expect a single label.
func (q Question) Label() string {
	if q.Title != "" {
		return q.Title
	}
	return q.QuestionText
}

func (q Question) Clone() Question {
	c := q
	c.Options = cloneStrings(q.Options)
	c.Rows = cloneStrings(q.Rows)
	c.Columns = cloneStrings(q.Columns)
	if q.Min != nil {
		c.Min = IntPtr(*q.Min)
	}
	if q.Max != nil {
		c.Max = IntPtr(*q.Max)
	}
	return c
}

// CreateDefault returns a blank question of type t. The id is left
// empty; whoever owns the question list assigns it.
func CreateDefault(t QuestionType) Question {
	q := Question{
		Type:        t,
		Required:    false,
		ShowInTable: true,
	}

	switch {
	case t.HasOptions():
		q.Options = []string{"", ""}
	case t.IsGrid():
		q.Rows = []string{""}
		q.Columns = []string{""}
	case t == TypeLinear:
		q.Min = IntPtr(1)
		q.Max = IntPtr(5)
	case t == TypeRating:
		q.Min = IntPtr(0)
		q.Max = IntPtr(5)
	}
	return q
}

// Normalize clears the auxiliary fields that do not belong to the type of q
// and fills missing scale bounds with the type defaults. Values that do
// belong to the type are kept as they are.
func Normalize(q Question) Question {
	n := q.Clone()
	if !n.Type.HasOptions() {
		n.Options = nil
	}
	if !n.Type.IsGrid() {
		n.Rows, n.Columns = nil, nil
	}
	if n.Type.IsScale() {
		def := CreateDefault(n.Type)
		if n.Min == nil {
			n.Min = def.Min
		}
		if n.Max == nil {
			n.Max = def.Max
		}
	} else {
		n.Min, n.Max = nil, nil
	}
	if n.Type != TypeFile {
		n.Accept, n.Multiple = "", false
	}
	return n
}

// ChangeType keeps the identity and the common fields of q and
// replaces every type-specific field with the defaults of t.
func ChangeType(q Question, t QuestionType) Question {
	next := CreateDefault(t)
	next.ID = q.ID
	next.Title = q.Title
	next.QuestionText = q.QuestionText
	next.Description = q.Description
	next.Required = q.Required
	next.ShowInTable = q.ShowInTable
	return next
}

func IntPtr(i int) *int {
	return &i
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
