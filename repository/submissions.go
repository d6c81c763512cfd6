package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mbolis/forms-app/model"
	"github.com/pkg/errors"
)

type SubmissionRepository struct {
	db *sql.DB
}

// SubmitAnswers stores one completed form. Each answer is kept as JSON
// under its question id.
func (repo *SubmissionRepository) SubmitAnswers(ctx context.Context, templateID int, username string, answers model.AnswerSet) (model.Receipt, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Receipt{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM template WHERE id = ?", templateID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Receipt{}, errors.Wrapf(ErrNotFound, "db.insert_submission template %d", templateID)
	}
	if err != nil {
		return model.Receipt{}, errors.Wrap(err, "db.insert_submission.template")
	}

	receipt := model.Receipt{TemplateID: templateID, SubmittedAt: time.Now().UTC()}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO submission (template_id, username, submitted_at) VALUES (?, ?, ?)
		RETURNING id`,
		templateID, username, receipt.SubmittedAt,
	).Scan(&receipt.ID)
	if err != nil {
		return model.Receipt{}, errors.Wrap(err, "db.insert_submission")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submission_answer (submission_id, question_id, value)
		VALUES (?, ?, ?)`)
	if err != nil {
		return model.Receipt{}, errors.Wrap(err, "db.insert_submission.answers.prepare")
	}
	defer stmt.Close()

	for id, value := range answers {
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return model.Receipt{}, errors.Wrapf(err, "db.insert_submission.answers.encode %s", id)
		}
		if _, err = stmt.ExecContext(ctx, receipt.ID, id, string(valueJSON)); err != nil {
			return model.Receipt{}, errors.Wrapf(err, "db.insert_submission.answers.insert %s", id)
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Receipt{}, errors.Wrap(err, "db.insert_submission.commit")
	}
	return receipt, nil
}

// ListByTemplate returns the submissions of a template in submission order.
// Answers come back decoded from JSON, so their Go types are the generic
// ones of encoding/json.
func (repo *SubmissionRepository) ListByTemplate(ctx context.Context, templateID int) ([]model.Submission, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT s.id, s.username, s.submitted_at, a.question_id, a.value
		FROM submission s
		LEFT OUTER JOIN submission_answer a ON (s.id = a.submission_id)
		WHERE s.template_id = ?
		ORDER BY s.submitted_at, s.id`,
		templateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s := model.Submission{TemplateID: templateID}
		var questionID, value sql.NullString
		err = rows.Scan(&s.ID, &s.Username, &s.SubmittedAt, &questionID, &value)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_submissions.scan")
		}

		last := len(submissions) - 1
		if last < 0 || submissions[last].ID != s.ID {
			s.Answers = map[string]any{}
			submissions = append(submissions, s)
			last++
		}
		if !questionID.Valid {
			continue
		}

		var v any
		if err = json.Unmarshal([]byte(value.String), &v); err != nil {
			return nil, errors.Wrapf(err, "db.get_submissions.parse_value %d/%s", s.ID, questionID.String)
		}
		submissions[last].Answers[questionID.String] = v
	}
	return submissions, errors.Wrap(rows.Err(), "db.get_submissions.next")
}

func (repo *SubmissionRepository) Count(ctx context.Context, templateID int) (n int, err error) {
	err = repo.db.QueryRowContext(ctx, "SELECT count(*) FROM submission WHERE template_id = ?", templateID).Scan(&n)
	return n, errors.Wrap(err, "db.count_submissions")
}
