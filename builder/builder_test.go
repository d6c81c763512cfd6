package builder

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBuilder hands out predictable ids: q1, q2, ...
func newTestBuilder(t model.Template) *Builder {
	b := New(t)
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("q%d", n)
	}
	return b
}

func completeMeta() Meta {
	return Meta{Title: "Satisfaction Survey", Description: "How was it?", Topic: model.TopicQuiz}
}

func TestAddQuestion(t *testing.T) {
	b := newTestBuilder(model.Template{})

	q, err := b.AddQuestion(model.TypeRadio)
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, []string{"", ""}, q.Options)

	_, err = b.AddQuestion("slider")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Len(t, b.Questions(), 1)
}

func TestAddQuestionRespectsLimits(t *testing.T) {
	b := newTestBuilder(model.Template{})
	for i := 0; i < 4; i++ {
		_, err := b.AddQuestion(model.TypeText)
		require.NoError(t, err)
	}

	assert.False(t, b.CanAdd(model.TypeText))
	_, err := b.AddQuestion(model.TypeText)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Len(t, b.Questions(), 4)

	for i := 0; i < 20; i++ {
		_, err := b.AddQuestion(model.TypeRadio)
		require.NoError(t, err)
	}
}

func TestRemoveQuestionKeepsIDs(t *testing.T) {
	b := newTestBuilder(model.Template{})
	for i := 0; i < 3; i++ {
		_, _ = b.AddQuestion(model.TypeDate)
	}
	require.NoError(t, b.RemoveQuestion(1))
	assert.Equal(t, []string{"q1", "q3"}, b.QuestionIDs())

	q, _ := b.AddQuestion(model.TypeDate)
	assert.Equal(t, "q4", q.ID, "ids are never reused")

	assert.ErrorIs(t, b.RemoveQuestion(5), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.RemoveQuestion(-1), ErrIndexOutOfRange)
}

func TestReorder(t *testing.T) {
	b := newTestBuilder(model.Template{})
	for i := 0; i < 4; i++ {
		_, _ = b.AddQuestion(model.TypeTime)
	}
	require.NoError(t, b.Reorder(0, 2))
	assert.Equal(t, []string{"q2", "q3", "q1", "q4"}, b.QuestionIDs())
	require.NoError(t, b.Reorder(3, 0))
	assert.Equal(t, []string{"q4", "q2", "q3", "q1"}, b.QuestionIDs())
	assert.ErrorIs(t, b.Reorder(0, 4), ErrIndexOutOfRange)
}

// Replaying random add/remove/reorder sequences on a plain list of ids
// must give the same ids as the builder.
func TestOperationsMatchReferenceModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := newTestBuilder(model.Template{})
	var reference []string
	next := 0

	for i := 0; i < 1000; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(reference) == 0:
			_, err := b.AddQuestion(model.TypeRadio)
			require.NoError(t, err)
			next++
			reference = append(reference, fmt.Sprintf("q%d", next))
		case op == 1:
			idx := rng.Intn(len(reference))
			require.NoError(t, b.RemoveQuestion(idx))
			reference = append(reference[:idx:idx], reference[idx+1:]...)
		default:
			from, to := rng.Intn(len(reference)), rng.Intn(len(reference))
			require.NoError(t, b.Reorder(from, to))
			reference = dnd.Move(reference, from, to)
		}
		require.Equal(t, reference, b.QuestionIDs())
	}

	ids := b.QuestionIDs()
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		assert.NotEqual(t, ids[i-1], ids[i], "duplicate id")
	}
}

func TestOptions(t *testing.T) {
	b := newTestBuilder(model.Template{})
	_, _ = b.AddQuestion(model.TypeCheckbox)
	_, _ = b.AddQuestion(model.TypeText)

	require.NoError(t, b.UpdateOption(0, 0, "Red"))
	require.NoError(t, b.UpdateOption(0, 1, "Blue"))
	require.NoError(t, b.AddOption(0))
	require.NoError(t, b.UpdateOption(0, 2, "Green"))
	assert.Equal(t, []string{"Red", "Blue", "Green"}, b.Questions()[0].Options)

	require.NoError(t, b.RemoveOption(0, 1))
	assert.Equal(t, []string{"Red", "Green"}, b.Questions()[0].Options)
	require.NoError(t, b.RemoveOption(0, 0))
	assert.ErrorIs(t, b.RemoveOption(0, 0), ErrLastOption)
	assert.Equal(t, []string{"Green"}, b.Questions()[0].Options)

	assert.ErrorIs(t, b.UpdateOption(0, 3, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.AddOption(1), ErrInvalidValue)
}

func TestUpdateQuestionField(t *testing.T) {
	b := newTestBuilder(model.Template{})
	_, _ = b.AddQuestion(model.TypeGridRadio)

	require.NoError(t, b.UpdateQuestionField(0, FieldTitle, "Week"))
	require.NoError(t, b.UpdateQuestionField(0, FieldQuestionText, "Rate each day"))
	require.NoError(t, b.UpdateQuestionField(0, FieldRequired, true))
	require.NoError(t, b.UpdateQuestionField(0, FieldRows, []any{"Mon", "Tue"}))
	require.NoError(t, b.UpdateQuestionField(0, FieldColumns, []string{"good", "bad"}))

	q := b.Questions()[0]
	assert.Equal(t, []string{"Mon", "Tue"}, q.Rows)

	t.Run("type change resets auxiliary fields", func(t *testing.T) {
		require.NoError(t, b.UpdateQuestionField(0, FieldType, "text"))
		q := b.Questions()[0]
		assert.Equal(t, "q1", q.ID)
		assert.Equal(t, model.TypeText, q.Type)
		assert.Equal(t, "Week", q.Title)
		assert.True(t, q.Required)
		assert.Nil(t, q.Rows)
		assert.Nil(t, q.Columns)
	})

	t.Run("fields of other types are refused", func(t *testing.T) {
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldOptions, []string{"a"}), ErrInvalidValue)
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldMin, 1.0), ErrInvalidValue)
	})

	t.Run("scale bounds", func(t *testing.T) {
		require.NoError(t, b.UpdateQuestionField(0, FieldType, "linear"))
		require.NoError(t, b.UpdateQuestionField(0, FieldMin, float64(0)))
		require.NoError(t, b.UpdateQuestionField(0, FieldMax, float64(10)))
		q := b.Questions()[0]
		assert.Equal(t, 0, *q.Min)
		assert.Equal(t, 10, *q.Max)
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldMin, float64(10)), ErrInvalidValue)
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldMax, 2.5), ErrInvalidValue)
	})

	t.Run("bad input", func(t *testing.T) {
		assert.ErrorIs(t, b.UpdateQuestionField(0, "color", "red"), ErrUnknownField)
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldTitle, 12), ErrInvalidValue)
		assert.ErrorIs(t, b.UpdateQuestionField(0, FieldType, "hologram"), ErrUnknownType)
		assert.ErrorIs(t, b.UpdateQuestionField(3, FieldTitle, "x"), ErrIndexOutOfRange)
	})
}

func TestTypeChangeRespectsLimits(t *testing.T) {
	b := newTestBuilder(model.Template{})
	for i := 0; i < 4; i++ {
		_, _ = b.AddQuestion(model.TypeText)
	}
	_, _ = b.AddQuestion(model.TypeRadio)

	assert.ErrorIs(t, b.UpdateQuestionField(4, FieldType, "text"), ErrLimitReached)
	// switching a text question to text again is a no-op, not a violation
	assert.NoError(t, b.UpdateQuestionField(0, FieldType, "text"))
}

func TestSubmit(t *testing.T) {
	t.Run("missing metadata", func(t *testing.T) {
		b := newTestBuilder(model.Template{})
		result, tmpl := b.Submit()
		assert.False(t, result.IsValid)
		assert.Equal(t, []string{MsgIncompleteTemplate}, result.Errors)
		assert.Nil(t, tmpl)
	})

	t.Run("no questions", func(t *testing.T) {
		b := newTestBuilder(model.Template{})
		b.SetMeta(completeMeta())
		result, _ := b.Submit()
		assert.Equal(t, []string{MsgNoQuestions}, result.Errors)
	})

	t.Run("incomplete question", func(t *testing.T) {
		b := newTestBuilder(model.Template{})
		b.SetMeta(completeMeta())
		_, _ = b.AddQuestion(model.TypeRadio)
		require.NoError(t, b.UpdateQuestionField(0, FieldTitle, "Happy?"))
		result, _ := b.Submit()
		assert.Equal(t, []string{MsgIncompleteQuestion}, result.Errors)
	})

	t.Run("limits are checked last and aggregated", func(t *testing.T) {
		var qs []model.Question
		for i := 0; i < 5; i++ {
			for _, typ := range []model.QuestionType{model.TypeText, model.TypeCheckbox} {
				q := model.CreateDefault(typ)
				q.ID = fmt.Sprintf("q%d", len(qs))
				q.Title, q.QuestionText = "t", "qt"
				qs = append(qs, q)
			}
		}
		tmpl := model.Template{Title: "x", Description: "y", Topic: model.TopicOther, Questions: qs}
		result := Validate(tmpl)
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("valid", func(t *testing.T) {
		b := newTestBuilder(model.Template{})
		b.SetMeta(completeMeta())
		_, _ = b.AddQuestion(model.TypeRadio)
		require.NoError(t, b.UpdateQuestionField(0, FieldTitle, "Happy?"))
		require.NoError(t, b.UpdateQuestionField(0, FieldQuestionText, "Are you happy?"))
		require.NoError(t, b.UpdateQuestionField(0, FieldOptions, []any{"Yes", "No"}))
		require.NoError(t, b.UpdateQuestionField(0, FieldRequired, true))

		result, tmpl := b.Submit()
		assert.True(t, result.IsValid)
		require.NotNil(t, tmpl)
		assert.Equal(t, "Satisfaction Survey", tmpl.Title)
		assert.Equal(t, []string{"Yes", "No"}, tmpl.Questions[0].Options)
	})
}

func TestSetMeta(t *testing.T) {
	b := newTestBuilder(model.Template{})
	m := completeMeta()
	m.Tags = []string{"Go", " go ", "", "forms"}
	m.AllowedUsers = []model.UserRef{{ID: 1, Username: "bob"}}
	b.SetMeta(m)

	tmpl := b.Template()
	assert.Equal(t, []string{"Go", "forms"}, tmpl.Tags)
	assert.Len(t, tmpl.AllowedUsers, 1)

	m.IsPublic = true
	b.SetMeta(m)
	assert.Nil(t, b.Template().AllowedUsers)
}

func TestNewAssignsMissingIDs(t *testing.T) {
	b := New(model.Template{Questions: []model.Question{{ID: "keep"}, {}}})
	ids := b.QuestionIDs()
	assert.Equal(t, "keep", ids[0])
	assert.NotEmpty(t, ids[1])
}

func TestNewNormalizesQuestions(t *testing.T) {
	b := New(model.Template{Questions: []model.Question{
		{ID: "q1", Type: model.TypeText, Rows: []string{"leak"}, Options: []string{"x"}, Min: model.IntPtr(3)},
		{ID: "q2", Type: model.TypeRating},
	}})
	qs := b.Questions()

	assert.Nil(t, qs[0].Rows)
	assert.Nil(t, qs[0].Options)
	assert.Nil(t, qs[0].Min)
	if assert.NotNil(t, qs[1].Min) && assert.NotNil(t, qs[1].Max) {
		assert.Equal(t, 0, *qs[1].Min)
		assert.Equal(t, 5, *qs[1].Max)
	}
}

func TestNewReassignsDuplicateIDs(t *testing.T) {
	b := New(model.Template{Questions: []model.Question{{ID: "q1"}, {ID: "q1"}, {ID: "q2"}}})
	ids := b.QuestionIDs()
	assert.Equal(t, "q1", ids[0])
	assert.NotEqual(t, "q1", ids[1])
	assert.NotEmpty(t, ids[1])
	assert.Equal(t, "q2", ids[2])
}

func TestValidateQuestionShape(t *testing.T) {
	question := func(id string, typ model.QuestionType) model.Question {
		q := model.CreateDefault(typ)
		q.ID, q.Title, q.QuestionText = id, "t", "qt"
		return q
	}
	template := func(qs ...model.Question) model.Template {
		return model.Template{Title: "x", Description: "y", Topic: model.TopicOther, Questions: qs}
	}

	tests := []struct {
		name string
		q    func() model.Question
		want string
	}{
		{"unknown type", func() model.Question {
			q := question("q1", model.TypeText)
			q.Type = "hologram"
			return q
		}, fmt.Sprintf(MsgUnsupportedType, "hologram")},
		{"number is not offered", func() model.Question {
			q := question("q1", model.TypeText)
			q.Type = model.TypeNumber
			return q
		}, fmt.Sprintf(MsgUnsupportedType, model.TypeNumber)},
		{"radio without options", func() model.Question {
			q := question("q1", model.TypeRadio)
			q.Options = nil
			return q
		}, MsgMissingOptions},
		{"grid without columns", func() model.Question {
			q := question("q1", model.TypeGridRadio)
			q.Columns = []string{}
			return q
		}, MsgIncompleteGrid},
		{"inverted scale", func() model.Question {
			q := question("q1", model.TypeLinear)
			q.Min, q.Max = model.IntPtr(5), model.IntPtr(1)
			return q
		}, MsgInvalidScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(template(tt.q()))
			assert.False(t, result.IsValid)
			assert.Equal(t, []string{tt.want}, result.Errors)
		})
	}

	t.Run("duplicate ids", func(t *testing.T) {
		result := Validate(template(question("q1", model.TypeText), question("q1", model.TypeRadio)))
		assert.Equal(t, []string{MsgDuplicateID}, result.Errors)
	})

	t.Run("radio without options posted through New", func(t *testing.T) {
		q := question("q1", model.TypeRadio)
		q.Options = nil
		result := Validate(New(template(q)).Template())
		assert.Equal(t, []string{MsgMissingOptions}, result.Errors)
	})

	t.Run("valid shapes", func(t *testing.T) {
		result := Validate(template(
			question("q1", model.TypeRadio),
			question("q2", model.TypeGridCheckbox),
			question("q3", model.TypeRating),
			question("q4", model.TypeFile),
		))
		assert.True(t, result.IsValid, result.Errors)
	})
}
