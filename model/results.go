package model

import "time"

type Submission struct {
	ID          int            `json:"id"`
	TemplateID  int            `json:"templateId"`
	Username    string         `json:"username,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Answers     map[string]any `json:"answers"`
}

type ResultColumn struct {
	QuestionID string       `json:"questionId"`
	Title      string       `json:"title"`
	Type       QuestionType `json:"type"`
}

type ResultRow struct {
	SubmissionID int       `json:"submissionId"`
	Username     string    `json:"username,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Cells        []any     `json:"cells"`
}

// ResultsTable is the tabular view of submissions. Only questions marked
// ShowInTable become columns.
type ResultsTable struct {
	Columns []ResultColumn `json:"columns"`
	Rows    []ResultRow    `json:"rows"`
}

func BuildResultsTable(t Template, submissions []Submission) ResultsTable {
	table := ResultsTable{
		Columns: []ResultColumn{},
		Rows:    make([]ResultRow, 0, len(submissions)),
	}
	for _, q := range t.Questions {
		if q.ShowInTable {
			table.Columns = append(table.Columns, ResultColumn{QuestionID: q.ID, Title: q.Label(), Type: q.Type})
		}
	}

	for _, s := range submissions {
		row := ResultRow{
			SubmissionID: s.ID,
			Username:     s.Username,
			SubmittedAt:  s.SubmittedAt,
			Cells:        make([]any, len(table.Columns)),
		}
		for i, col := range table.Columns {
			row.Cells[i] = s.Answers[col.QuestionID]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
