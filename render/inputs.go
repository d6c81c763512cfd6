package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/forms-app/model"
)

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAnswer, fmt.Sprintf(format, args...))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

type textInput struct {
	kind string
}

func (in textInput) Input(q model.Question, current any, disabled bool) View {
	return View{Kind: in.kind, Field: q.ID, Value: current, Disabled: disabled}
}

func (textInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalid("%s expects text", q.Type)
	}
	return s, nil
}

// choiceInput serves radio, select and (multi) checkbox questions.
type choiceInput struct {
	kind  string
	multi bool
}

func (in choiceInput) Input(q model.Question, current any, disabled bool) View {
	return View{Kind: in.kind, Field: q.ID, Items: q.Options, Value: current, Disabled: disabled, Multiple: in.multi}
}

func (in choiceInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}

	if !in.multi {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid("%s expects one option", q.Type)
		}
		if s != "" && !contains(q.Options, s) {
			return nil, invalid("%q is not an option", s)
		}
		return s, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, invalid("%s expects a list of options", q.Type)
	}
	set := model.StringSet{}
	for _, s := range list {
		if !contains(q.Options, s) {
			return nil, invalid("%q is not an option", s)
		}
		if !set.Contains(s) {
			set = append(set, s)
		}
	}
	return set, nil
}

// scaleInput serves linear scales and star ratings.
type scaleInput struct {
	kind string
}

func (in scaleInput) Input(q model.Question, current any, disabled bool) View {
	v := View{Kind: in.kind, Field: q.ID, Min: q.Min, Max: q.Max, Value: current, Disabled: disabled}
	if q.Min != nil && q.Max != nil {
		for i := *q.Min; i <= *q.Max; i++ {
			v.Items = append(v.Items, strconv.Itoa(i))
		}
	}
	return v
}

func (scaleInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) || bytes.Equal(bytes.TrimSpace(raw), []byte(`""`)) {
		return nil, nil
	}

	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		return nil, invalid("%s expects a number", q.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return nil, invalid("%s expects a number", q.Type)
	}
	n, err := num.Int64()
	if err != nil {
		return nil, invalid("%s expects a whole number", q.Type)
	}
	v := int(n)
	if (q.Min != nil && v < *q.Min) || (q.Max != nil && v > *q.Max) {
		return nil, invalid("%d is out of range", v)
	}
	return v, nil
}

type gridInput struct {
	kind  string
	multi bool
}

func (in gridInput) Input(q model.Question, current any, disabled bool) View {
	return View{Kind: in.kind, Field: q.ID, Rows: q.Rows, Columns: q.Columns, Value: current, Disabled: disabled, Multiple: in.multi}
}

func (in gridInput) row(q model.Question, key string) (int, error) {
	row, err := strconv.Atoi(key)
	if err != nil || row < 0 || row >= len(q.Rows) {
		return 0, invalid("no row %q", key)
	}
	return row, nil
}

func (in gridInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}

	if !in.multi {
		var cells map[string]string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, invalid("%s expects one column per row", q.Type)
		}
		grid := model.GridRadio{}
		for key, col := range cells {
			row, err := in.row(q, key)
			if err != nil {
				return nil, err
			}
			if col == "" {
				continue
			}
			if !contains(q.Columns, col) {
				return nil, invalid("%q is not a column", col)
			}
			grid[row] = col
		}
		return grid, nil
	}

	var cells map[string][]string
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, invalid("%s expects a list of columns per row", q.Type)
	}
	grid := model.GridCheckbox{}
	for key, cols := range cells {
		row, err := in.row(q, key)
		if err != nil {
			return nil, err
		}
		var chosen []string
		for _, col := range cols {
			if !contains(q.Columns, col) {
				return nil, invalid("%q is not a column", col)
			}
			if !contains(chosen, col) {
				chosen = append(chosen, col)
			}
		}
		grid[row] = chosen
	}
	return grid, nil
}

type fileInput struct{}

func (fileInput) Input(q model.Question, current any, disabled bool) View {
	return View{Kind: KindFile, Field: q.ID, Accept: q.Accept, Multiple: q.Multiple, Value: current, Disabled: disabled}
}

func (fileInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}

	if q.Multiple {
		var refs []model.FileRef
		if err := json.Unmarshal(raw, &refs); err != nil {
			return nil, invalid("file expects a list of files")
		}
		for _, ref := range refs {
			if !Accepts(q.Accept, ref) {
				return nil, invalid("%s is not an accepted file", ref.Name)
			}
		}
		return refs, nil
	}

	var ref model.FileRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, invalid("file expects a single file")
	}
	if ref.IsZero() {
		return nil, nil
	}
	if !Accepts(q.Accept, ref) {
		return nil, invalid("%s is not an accepted file", ref.Name)
	}
	return ref, nil
}

// Accepts matches a file against an HTML accept filter such as
// "image/*,.pdf". An empty filter accepts everything.
func Accepts(accept string, ref model.FileRef) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	ext := strings.ToLower(path.Ext(ref.Name))
	mime := strings.ToLower(ref.MimeType)

	for _, rule := range strings.Split(accept, ",") {
		rule = strings.ToLower(strings.TrimSpace(rule))
		switch {
		case rule == "":
		case strings.HasPrefix(rule, "."):
			if ext == rule {
				return true
			}
		case strings.HasSuffix(rule, "/*"):
			if strings.HasPrefix(mime, strings.TrimSuffix(rule, "*")) {
				return true
			}
		case mime == rule:
			return true
		}
	}
	return false
}

type temporalInput struct {
	kind   string
	layout string
}

func (in temporalInput) Input(q model.Question, current any, disabled bool) View {
	return View{Kind: in.kind, Field: q.ID, Value: current, Disabled: disabled}
}

func (in temporalInput) Parse(q model.Question, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalid("%s expects text", q.Type)
	}
	if s == "" {
		return s, nil
	}
	if _, err := time.Parse(in.layout, s); err != nil {
		return nil, invalid("%q is not a valid %s", s, q.Type)
	}
	return s, nil
}
