// Package render turns questions into view models for the three modes a
// question is shown in: builder, fill and preview. A view model is plain
// data the client draws; field bindings name what a control edits.
package render

import "fmt"

type Mode string

const (
	ModeBuilder Mode = "builder"
	ModeFill    Mode = "fill"
	ModePreview Mode = "preview"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBuilder, ModeFill, ModePreview:
		return m, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// View kinds.
const (
	KindQuestion       = "question"
	KindQuestionEditor = "question-editor"
	KindPreview        = "question-preview"
	KindWarning        = "warning"

	KindInput     = "input"
	KindTextarea  = "textarea"
	KindRadio     = "radio"
	KindCheckbox  = "checkbox"
	KindSelect    = "select"
	KindLinear    = "linear"
	KindRating    = "rating"
	KindGridRadio = "grid-radio"
	KindGridCheck = "grid-checkbox"
	KindFile      = "file"
	KindDate      = "date"
	KindTime      = "time"

	KindToggle        = "toggle"
	KindAction        = "action"
	KindOptionsEditor = "options-editor"
	KindGridEditor    = "grid-editor"
	KindScaleEditor   = "scale-editor"
	KindFileEditor    = "file-editor"
	KindList          = "list"
	KindText          = "text"
)

const (
	BadgeRequired    = "required"
	BadgeShowInTable = "showInTable"
)

// View is a node of the rendered tree. Field is the binding: a question id
// in fill mode, a question field name in builder mode.
type View struct {
	Kind          string   `json:"kind"`
	Field         string   `json:"field,omitempty"`
	Text          string   `json:"text,omitempty"`
	Value         any      `json:"value,omitempty"`
	Items         []string `json:"items,omitempty"`
	DisabledItems []string `json:"disabledItems,omitempty"`
	Rows          []string `json:"rows,omitempty"`
	Columns       []string `json:"columns,omitempty"`
	Min           *int     `json:"min,omitempty"`
	Max           *int     `json:"max,omitempty"`
	Accept        string   `json:"accept,omitempty"`
	Multiple      bool     `json:"multiple,omitempty"`
	Disabled      bool     `json:"disabled,omitempty"`
	ReadOnly      bool     `json:"readOnly,omitempty"`
	Badges        []string `json:"badges,omitempty"`
	Error         string   `json:"error,omitempty"`
	Children      []View   `json:"children,omitempty"`
}

// Find returns the first node of kind in a depth-first walk.
func (v View) Find(kind string) (View, bool) {
	if v.Kind == kind {
		return v, true
	}
	for _, c := range v.Children {
		if found, ok := c.Find(kind); ok {
			return found, true
		}
	}
	return View{}, false
}
