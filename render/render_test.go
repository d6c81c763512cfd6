package render

import (
	"encoding/json"
	"testing"

	"github.com/mbolis/forms-app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCoversEveryType(t *testing.T) {
	for _, typ := range model.QuestionTypes {
		_, ok := DefaultRegistry.ResolveInputRenderer(typ)
		assert.True(t, ok, "no input renderer for %s", typ)
	}

	assert.Nil(t, DefaultRegistry.ResolveBuilderConfig(model.TypeText))
	assert.NotNil(t, DefaultRegistry.ResolveBuilderConfig(model.TypeRadio))
	assert.NotNil(t, DefaultRegistry.ResolveBuilderConfig(model.TypeGridCheckbox))
	assert.NotNil(t, DefaultRegistry.ResolveBuilderConfig(model.TypeFile))

	_, ok := DefaultRegistry.ResolveInputRenderer("slider")
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("preview")
	require.NoError(t, err)
	assert.Equal(t, ModePreview, m)

	_, err = ParseMode("print")
	assert.Error(t, err)
}

func TestFillMode(t *testing.T) {
	d := NewDispatcher(nil)
	q := model.Question{ID: "q1", Type: model.TypeRadio, Title: "Happy?", QuestionText: "Are you?", Options: []string{"Yes", "No"}, Required: true}

	v := d.Render(q, ModeFill, Context{Answer: "Yes", Error: "boom"})
	assert.Equal(t, KindQuestion, v.Kind)
	assert.Equal(t, "Happy?", v.Text)
	assert.Equal(t, []string{BadgeRequired}, v.Badges)
	assert.Equal(t, "boom", v.Error)
	require.Len(t, v.Children, 1)
	in := v.Children[0]
	assert.Equal(t, KindRadio, in.Kind)
	assert.Equal(t, "q1", in.Field)
	assert.Equal(t, []string{"Yes", "No"}, in.Items)
	assert.Equal(t, "Yes", in.Value)
}

func TestUnsupportedTypeIsVisible(t *testing.T) {
	d := NewDispatcher(nil)
	tmpl := model.Template{Questions: []model.Question{
		{ID: "a", Type: "hologram", Title: "Weird"},
		{ID: "b", Type: model.TypeText, Title: "Name"},
	}}

	views := d.RenderTemplate(tmpl, ModeFill, nil, nil)
	require.Len(t, views, 2)
	assert.Equal(t, KindWarning, views[0].Kind)
	assert.Equal(t, "Unsupported question type: hologram", views[0].Text)
	assert.Equal(t, KindQuestion, views[1].Kind, "other questions still render")

	builder := d.Render(tmpl.Questions[0], ModeBuilder, Context{})
	_, ok := builder.Find(KindWarning)
	assert.True(t, ok)

	preview := d.Render(tmpl.Questions[0], ModePreview, Context{})
	_, ok = preview.Find(KindWarning)
	assert.True(t, ok)
}

func TestBuilderMode(t *testing.T) {
	d := NewDispatcher(nil)
	q := model.CreateDefault(model.TypeCheckbox)
	q.ID = "q9"

	var siblings []model.Question
	for i := 0; i < 4; i++ {
		siblings = append(siblings, model.CreateDefault(model.TypeText))
	}

	v := d.Render(q, ModeBuilder, Context{Siblings: siblings})
	assert.Equal(t, KindQuestionEditor, v.Kind)

	editor, ok := v.Find(KindOptionsEditor)
	require.True(t, ok)
	assert.Equal(t, []string{"", ""}, editor.Items)

	var typeSelect View
	for _, c := range v.Children {
		if c.Field == "type" {
			typeSelect = c
		}
	}
	assert.Contains(t, typeSelect.DisabledItems, "text")
	assert.NotContains(t, typeSelect.DisabledItems, "checkbox")

	for _, field := range []string{"title", "questionText", "required", "delete"} {
		found := false
		for _, c := range v.Children {
			found = found || c.Field == field
		}
		assert.True(t, found, "missing %s control", field)
	}
}

func TestPreviewMode(t *testing.T) {
	d := NewDispatcher(nil)
	q := model.Question{ID: "p", Type: model.TypeSelect, Title: "Color", Description: "favourite", Options: []string{"red", "blue"}, Required: true, ShowInTable: true}

	v := d.Render(q, ModePreview, Context{Answer: "red"})
	assert.Equal(t, KindPreview, v.Kind)
	assert.True(t, v.ReadOnly)
	assert.Equal(t, []string{BadgeRequired, BadgeShowInTable}, v.Badges)

	list, ok := v.Find(KindList)
	require.True(t, ok)
	assert.Equal(t, []string{"red", "blue"}, list.Items)

	for _, kind := range []string{KindSelect, KindInput, KindAction, KindToggle} {
		_, ok := v.Find(kind)
		assert.False(t, ok, "preview must not contain %s", kind)
	}
}

func parse(t *testing.T, q model.Question, raw string) (any, error) {
	t.Helper()
	in, ok := DefaultRegistry.ResolveInputRenderer(q.Type)
	require.True(t, ok)
	return in.Parse(q, json.RawMessage(raw))
}

func TestParseAnswers(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		v, err := parse(t, model.Question{Type: model.TypeText}, `"hi"`)
		require.NoError(t, err)
		assert.Equal(t, "hi", v)

		v, err = parse(t, model.Question{Type: model.TypeText}, `null`)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("radio", func(t *testing.T) {
		q := model.Question{Type: model.TypeRadio, Options: []string{"Yes", "No"}}
		v, err := parse(t, q, `"Yes"`)
		require.NoError(t, err)
		assert.Equal(t, "Yes", v)

		_, err = parse(t, q, `"Maybe"`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
	})

	t.Run("checkbox is a set", func(t *testing.T) {
		q := model.Question{Type: model.TypeCheckbox, Options: []string{"a", "b"}}
		v, err := parse(t, q, `["a","a","b"]`)
		require.NoError(t, err)
		assert.Equal(t, model.StringSet{"a", "b"}, v)

		v, err = parse(t, q, `[]`)
		require.NoError(t, err)
		assert.Equal(t, model.StringSet{}, v)
	})

	t.Run("rating", func(t *testing.T) {
		q := model.Question{Type: model.TypeRating, Min: model.IntPtr(0), Max: model.IntPtr(5)}
		v, err := parse(t, q, `0`)
		require.NoError(t, err)
		assert.Equal(t, 0, v)
		assert.Empty(t, model.ValidateRequired(q, v))

		v, err = parse(t, q, `""`)
		require.NoError(t, err)
		assert.Nil(t, v)

		_, err = parse(t, q, `6`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
		_, err = parse(t, q, `2.5`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
		_, err = parse(t, q, `"3"`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
	})

	t.Run("grid radio", func(t *testing.T) {
		q := model.Question{Type: model.TypeGridRadio, Rows: []string{"r0", "r1"}, Columns: []string{"a", "b"}}
		v, err := parse(t, q, `{"0":"a","1":"b"}`)
		require.NoError(t, err)
		assert.Equal(t, model.GridRadio{0: "a", 1: "b"}, v)

		_, err = parse(t, q, `{"2":"a"}`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
		_, err = parse(t, q, `{"0":"c"}`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
	})

	t.Run("grid checkbox", func(t *testing.T) {
		q := model.Question{Type: model.TypeGridCheckbox, Rows: []string{"r0"}, Columns: []string{"a", "b"}}
		v, err := parse(t, q, `{"0":["a","b","a"]}`)
		require.NoError(t, err)
		assert.Equal(t, model.GridCheckbox{0: {"a", "b"}}, v)
	})

	t.Run("file", func(t *testing.T) {
		q := model.Question{Type: model.TypeFile, Accept: "image/*,.pdf"}
		v, err := parse(t, q, `{"name":"cv.pdf","url":"https://files/cv.pdf"}`)
		require.NoError(t, err)
		assert.Equal(t, model.FileRef{Name: "cv.pdf", URL: "https://files/cv.pdf"}, v)

		_, err = parse(t, q, `{"name":"run.exe","url":"https://files/run.exe"}`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)

		q.Multiple = true
		v, err = parse(t, q, `[{"name":"a.png","mimeType":"image/png"}]`)
		require.NoError(t, err)
		assert.Len(t, v, 1)
	})

	t.Run("date and time", func(t *testing.T) {
		_, err := parse(t, model.Question{Type: model.TypeDate}, `"2024-13-01"`)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
		v, err := parse(t, model.Question{Type: model.TypeTime}, `"09:30"`)
		require.NoError(t, err)
		assert.Equal(t, "09:30", v)
	})
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts("", model.FileRef{Name: "x.bin"}))
	assert.True(t, Accepts(".PDF", model.FileRef{Name: "doc.pdf"}))
	assert.True(t, Accepts("image/*", model.FileRef{Name: "a", MimeType: "image/jpeg"}))
	assert.True(t, Accepts("application/pdf", model.FileRef{MimeType: "application/pdf"}))
	assert.False(t, Accepts("image/*", model.FileRef{Name: "a.txt", MimeType: "text/plain"}))
}

func TestScaleConfig(t *testing.T) {
	cfg := DefaultRegistry.ResolveBuilderConfig(model.TypeLinear)
	require.NotNil(t, cfg)
	v := cfg.Configure(model.CreateDefault(model.TypeLinear))
	assert.Equal(t, KindScaleEditor, v.Kind)
	require.Len(t, v.Children, 2)
	assert.Equal(t, []string{"0", "1"}, v.Children[0].Items)
	assert.Len(t, v.Children[1].Items, 9)
}
