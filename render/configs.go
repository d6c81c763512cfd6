package render

import (
	"fmt"
	"strconv"

	"github.com/mbolis/forms-app/model"
)

// MinVisibleOptions is the number of options below which the editor stops
// offering a remove action. The data layer only needs one.
const MinVisibleOptions = 2

type optionsConfig struct{}

func (optionsConfig) Configure(q model.Question) View {
	v := View{Kind: KindOptionsEditor, Field: "options", Items: q.Options}
	canRemove := len(q.Options) > MinVisibleOptions
	for i, opt := range q.Options {
		v.Children = append(v.Children,
			View{Kind: KindInput, Field: fmt.Sprintf("options.%d", i), Value: opt},
			View{Kind: KindAction, Field: fmt.Sprintf("options.%d.remove", i), Text: "Remove option", Disabled: !canRemove},
		)
	}
	v.Children = append(v.Children, View{Kind: KindAction, Field: "options.add", Text: "Add option"})
	return v
}

type gridConfig struct{}

func (gridConfig) Configure(q model.Question) View {
	return View{
		Kind:    KindGridEditor,
		Rows:    q.Rows,
		Columns: q.Columns,
		Children: []View{
			{Kind: KindList, Field: "rows", Items: q.Rows, Text: "Rows"},
			{Kind: KindList, Field: "columns", Items: q.Columns, Text: "Columns"},
		},
	}
}

type scaleConfig struct {
	minChoices     []int
	maxFrom, maxTo int
}

func (c scaleConfig) Configure(q model.Question) View {
	minPicker := View{Kind: KindSelect, Field: "min", Text: "From", Value: q.Min}
	for _, n := range c.minChoices {
		minPicker.Items = append(minPicker.Items, strconv.Itoa(n))
	}
	maxPicker := View{Kind: KindSelect, Field: "max", Text: "To", Value: q.Max}
	for n := c.maxFrom; n <= c.maxTo; n++ {
		maxPicker.Items = append(maxPicker.Items, strconv.Itoa(n))
	}
	return View{
		Kind:     KindScaleEditor,
		Min:      q.Min,
		Max:      q.Max,
		Children: []View{minPicker, maxPicker},
	}
}

type fileConfig struct{}

func (fileConfig) Configure(q model.Question) View {
	return View{
		Kind:     KindFileEditor,
		Accept:   q.Accept,
		Multiple: q.Multiple,
		Children: []View{
			{Kind: KindInput, Field: "accept", Text: "Accepted files", Value: q.Accept},
			{Kind: KindToggle, Field: "multiple", Text: "Allow several files", Value: q.Multiple},
		},
	}
}
