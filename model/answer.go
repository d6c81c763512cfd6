package model

import (
	"strings"
	"time"
)

// StringSet is a checkbox answer: a subset of the question options.
type StringSet []string

func (s StringSet) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// GridRadio maps a row index to the chosen column.
type GridRadio map[int]string

// GridCheckbox maps a row index to the chosen columns.
type GridCheckbox map[int][]string

type FileRef struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

func (f FileRef) IsZero() bool {
	return f.Name == "" && f.URL == ""
}

// AnswerSet maps question ids to answer values. The shape of each value
// depends on the question type.
type AnswerSet map[string]any

type Receipt struct {
	ID          int       `json:"id"`
	TemplateID  int       `json:"templateId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

const (
	MsgRequired       = "This field is required"
	MsgSelectOption   = "Please select at least one option"
	MsgSelectValue    = "Please select a value"
	MsgAnswerEveryRow = "Please answer every row"
	MsgSelectEveryRow = "Please select at least one option in every row"
	MsgAttachFile     = "Please attach a file"
)

// ValidateRequired returns the message to show next to a required
// question whose answer is missing, or "" when the answer is present.
func ValidateRequired(q Question, answer any) string {
	switch q.Type {
	case TypeText, TypeTextarea:
		s, _ := answer.(string)
		if strings.TrimSpace(s) == "" {
			return MsgRequired
		}

	case TypeRadio, TypeSelect, TypeDate, TypeTime:
		s, _ := answer.(string)
		if s == "" {
			return MsgRequired
		}

	case TypeCheckbox:
		if len(asStrings(answer)) == 0 {
			return MsgSelectOption
		}

	case TypeLinear, TypeRating:
		// zero is a legitimate value
		switch v := answer.(type) {
		case nil:
			return MsgSelectValue
		case string:
			if v == "" {
				return MsgSelectValue
			}
		case int, int32, int64, float64:
		default:
			return MsgSelectValue
		}

	case TypeGridRadio:
		grid, _ := answer.(GridRadio)
		for row := range q.Rows {
			if grid[row] == "" {
				return MsgAnswerEveryRow
			}
		}

	case TypeGridCheckbox:
		grid, _ := answer.(GridCheckbox)
		for row := range q.Rows {
			if len(grid[row]) == 0 {
				return MsgSelectEveryRow
			}
		}

	case TypeFile:
		switch v := answer.(type) {
		case FileRef:
			if v.IsZero() {
				return MsgAttachFile
			}
		case *FileRef:
			if v == nil || v.IsZero() {
				return MsgAttachFile
			}
		case []FileRef:
			if len(v) == 0 {
				return MsgAttachFile
			}
		default:
			return MsgAttachFile
		}
	}
	return ""
}

// ValidateAll checks every required question of t against answers.
// The result is empty, never nil, when nothing blocks the submission.
func ValidateAll(t Template, answers AnswerSet) map[string]string {
	errs := make(map[string]string)
	for _, q := range t.Questions {
		if !q.Required {
			continue
		}
		if msg := ValidateRequired(q, answers[q.ID]); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}

func asStrings(v any) []string {
	switch s := v.(type) {
	case StringSet:
		return s
	case []string:
		return s
	}
	return nil
}
