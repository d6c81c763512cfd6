package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequired(t *testing.T) {
	grid := Question{Type: TypeGridRadio, Rows: []string{"r1", "r2"}, Columns: []string{"a", "b"}}
	gridCheck := Question{Type: TypeGridCheckbox, Rows: []string{"r1", "r2"}, Columns: []string{"a", "b"}}

	tests := []struct {
		name   string
		q      Question
		answer any
		ok     bool
	}{
		{"text empty", Question{Type: TypeText}, "", false},
		{"text whitespace", Question{Type: TypeTextarea}, "  \t\n", false},
		{"text unset", Question{Type: TypeText}, nil, false},
		{"text filled", Question{Type: TypeText}, "hello", true},
		{"radio unset", Question{Type: TypeRadio}, nil, false},
		{"select empty", Question{Type: TypeSelect}, "", false},
		{"radio chosen", Question{Type: TypeRadio}, "Yes", true},
		{"date set", Question{Type: TypeDate}, "2024-02-01", true},
		{"checkbox empty set", Question{Type: TypeCheckbox}, StringSet{}, false},
		{"checkbox nil", Question{Type: TypeCheckbox}, nil, false},
		{"checkbox chosen", Question{Type: TypeCheckbox}, StringSet{"a"}, true},
		{"checkbox plain slice", Question{Type: TypeCheckbox}, []string{"a"}, true},
		{"rating zero", Question{Type: TypeRating, Min: IntPtr(0), Max: IntPtr(5)}, 0, true},
		{"linear zero", Question{Type: TypeLinear, Min: IntPtr(0), Max: IntPtr(5)}, 0, true},
		{"rating nil", Question{Type: TypeRating}, nil, false},
		{"rating empty string", Question{Type: TypeRating}, "", false},
		{"linear three", Question{Type: TypeLinear}, 3, true},
		{"grid radio partial", grid, GridRadio{0: "a"}, false},
		{"grid radio blank cell", grid, GridRadio{0: "a", 1: ""}, false},
		{"grid radio full", grid, GridRadio{0: "a", 1: "b"}, true},
		{"grid checkbox empty row", gridCheck, GridCheckbox{0: {"a"}, 1: {}}, false},
		{"grid checkbox full", gridCheck, GridCheckbox{0: {"a"}, 1: {"a", "b"}}, true},
		{"file none", Question{Type: TypeFile}, nil, false},
		{"file zero ref", Question{Type: TypeFile}, FileRef{}, false},
		{"file attached", Question{Type: TypeFile}, FileRef{Name: "cv.pdf", URL: "https://x/cv.pdf"}, true},
		{"files empty", Question{Type: TypeFile, Multiple: true}, []FileRef{}, false},
		{"files attached", Question{Type: TypeFile, Multiple: true}, []FileRef{{Name: "a.png"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateRequired(tt.q, tt.answer)
			if tt.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	tmpl := Template{
		Questions: []Question{
			{ID: "c", Type: TypeCheckbox, Required: true, Options: []string{"a", "b"}},
			{ID: "t", Type: TypeText, Required: false},
		},
	}

	t.Run("empty set on required checkbox", func(t *testing.T) {
		errs := ValidateAll(tmpl, AnswerSet{"c": StringSet{}})
		assert.Len(t, errs, 1)
		assert.Contains(t, errs, "c")
	})

	t.Run("optional questions are ignored", func(t *testing.T) {
		errs := ValidateAll(tmpl, AnswerSet{"c": StringSet{"a"}})
		assert.NotNil(t, errs)
		assert.Empty(t, errs)
	})
}

func TestRequiredRadioScenario(t *testing.T) {
	tmpl := Template{
		Title: "Satisfaction Survey",
		Topic: TopicQuiz,
		Questions: []Question{
			{ID: "q1", Type: TypeRadio, Title: "Happy?", QuestionText: "Are you happy?", Options: []string{"Yes", "No"}, Required: true},
		},
	}

	answers := AnswerSet{}
	errs := ValidateAll(tmpl, answers)
	assert.Equal(t, map[string]string{"q1": MsgRequired}, errs)

	answers["q1"] = "Yes"
	assert.Empty(t, ValidateAll(tmpl, answers))
}

func TestBuildResultsTable(t *testing.T) {
	tmpl := Template{Questions: []Question{
		{ID: "a", Title: "A", Type: TypeText, ShowInTable: true},
		{ID: "b", Title: "B", Type: TypeText, ShowInTable: false},
		{ID: "c", Title: "C", Type: TypeRating, ShowInTable: true},
	}}
	subs := []Submission{{ID: 1, Answers: map[string]any{"a": "x", "b": "hidden", "c": float64(4)}}}

	table := BuildResultsTable(tmpl, subs)
	if assert.Len(t, table.Columns, 2) {
		assert.Equal(t, "a", table.Columns[0].QuestionID)
		assert.Equal(t, "c", table.Columns[1].QuestionID)
	}
	if assert.Len(t, table.Rows, 1) {
		assert.Equal(t, []any{"x", float64(4)}, table.Rows[0].Cells)
	}
}
