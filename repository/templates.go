package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/mbolis/forms-app/model"
	"github.com/pkg/errors"
)

type TemplateRepository struct {
	db *sql.DB
}

// ListFilter narrows TemplateRepository.List. Viewer sees public templates,
// their own and the ones shared with them; Admin sees everything.
type ListFilter struct {
	Viewer string
	Admin  bool
	Owner  string
	Query  string
	Tag    string
}

// questionConfig holds the type-specific question fields in one JSON column.
type questionConfig struct {
	Options  []string `json:"options,omitempty"`
	Rows     []string `json:"rows,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
	Accept   string   `json:"accept,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

const tagSep = "\x1f"

func (repo *TemplateRepository) Create(ctx context.Context, t model.Template) (id int, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO template (owner, title, description, topic, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.Owner, t.Title, t.Description, t.Topic, t.IsPublic, now, now,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "db.insert_template")
	}

	if err = writeChildren(ctx, tx, id, t); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "db.insert_template.commit")
	}
	return id, nil
}

func (repo *TemplateRepository) Get(ctx context.Context, id int) (*model.Template, error) {
	t := model.Template{}
	var tags string
	err := repo.db.QueryRowContext(ctx, `
		SELECT
			t.id, t.version, t.owner, t.title, t.description, t.topic, t.is_public,
			t.created_at, t.updated_at,
			(SELECT count(*) FROM template_like l WHERE l.template_id = t.id),
			COALESCE((
				SELECT group_concat(g.name, char(31))
				FROM template_tag tt
				INNER JOIN tag g ON (g.id = tt.tag_id)
				WHERE tt.template_id = t.id
			), '')
		FROM template t
		WHERE t.id = ?`,
		id,
	).Scan(
		&t.ID, &t.Version, &t.Owner, &t.Title, &t.Description, &t.Topic, &t.IsPublic,
		&t.CreatedAt, &t.UpdatedAt, &t.Likes, &tags,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "db.get_template %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "db.get_template")
	}
	t.Tags = splitTags(tags)

	if t.Questions, err = repo.questions(ctx, id); err != nil {
		return nil, err
	}
	if t.AllowedUsers, err = repo.allowedUsers(ctx, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (repo *TemplateRepository) questions(ctx context.Context, templateID int) ([]model.Question, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT id, type, title, question_text, description, required, show_in_table, config
		FROM question
		WHERE template_id = ?
		ORDER BY position`,
		templateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_template.questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var config string
		err = rows.Scan(&q.ID, &q.Type, &q.Title, &q.QuestionText, &q.Description, &q.Required, &q.ShowInTable, &config)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_template.questions.scan")
		}

		c := questionConfig{}
		if err = json.Unmarshal([]byte(config), &c); err != nil {
			return nil, errors.Wrapf(err, "db.get_template.questions.parse_config %s", q.ID)
		}
		q.Options, q.Rows, q.Columns = c.Options, c.Rows, c.Columns
		q.Min, q.Max = c.Min, c.Max
		q.Accept, q.Multiple = c.Accept, c.Multiple

		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "db.get_template.questions.next")
}

func (repo *TemplateRepository) allowedUsers(ctx context.Context, templateID int) ([]model.UserRef, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email
		FROM template_access a
		INNER JOIN user u ON (u.id = a.user_id)
		WHERE a.template_id = ?
		ORDER BY u.username`,
		templateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_template.access")
	}
	defer rows.Close()

	var users []model.UserRef
	for rows.Next() {
		u := model.UserRef{}
		if err = rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, errors.Wrap(err, "db.get_template.access.scan")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "db.get_template.access.next")
}

// List returns the templates matching f without their questions, most
// recently updated first.
func (repo *TemplateRepository) List(ctx context.Context, f ListFilter) ([]model.Template, error) {
	var where []string
	var args []any

	if !f.Admin {
		where = append(where, `(
			t.is_public
			OR t.owner = ?
			OR EXISTS (
				SELECT 1 FROM template_access a
				INNER JOIN user u ON (u.id = a.user_id)
				WHERE a.template_id = t.id AND u.username = ?
			))`)
		args = append(args, f.Viewer, f.Viewer)
	}
	if f.Owner != "" {
		where = append(where, "t.owner = ?")
		args = append(args, f.Owner)
	}
	if f.Query != "" {
		where = append(where, `(t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(f.Query), likePattern(f.Query))
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM template_tag tt
			INNER JOIN tag g ON (g.id = tt.tag_id)
			WHERE tt.template_id = t.id AND g.name = ?)`)
		args = append(args, f.Tag)
	}

	query := `
		SELECT
			t.id, t.version, t.owner, t.title, t.description, t.topic, t.is_public,
			t.created_at, t.updated_at,
			(SELECT count(*) FROM template_like l WHERE l.template_id = t.id),
			COALESCE((
				SELECT group_concat(g.name, char(31))
				FROM template_tag tt
				INNER JOIN tag g ON (g.id = tt.tag_id)
				WHERE tt.template_id = t.id
			), '')
		FROM template t`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, "\nAND ")
	}
	query += "\nORDER BY t.updated_at DESC, t.id DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_templates")
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t := model.Template{}
		var tags string
		err = rows.Scan(
			&t.ID, &t.Version, &t.Owner, &t.Title, &t.Description, &t.Topic, &t.IsPublic,
			&t.CreatedAt, &t.UpdatedAt, &t.Likes, &tags,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_templates.scan")
		}
		t.Tags = splitTags(tags)
		templates = append(templates, t)
	}
	return templates, errors.Wrap(rows.Err(), "db.get_templates.next")
}

// Update replaces the template t.ID when t.Version is still the stored
// version, and returns the new version. A stale version is ErrConflict.
func (repo *TemplateRepository) Update(ctx context.Context, t model.Template) (version int, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE template
		SET
			title = ?,
			description = ?,
			topic = ?,
			is_public = ?,
			updated_at = ?,
			version = version+1
		WHERE id = ?
			AND version = ?
		RETURNING version`,
		t.Title, t.Description, t.Topic, t.IsPublic, time.Now().UTC(),
		t.ID, t.Version,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// optimistic lock
		var exists bool
		err = tx.QueryRowContext(ctx, "SELECT 1 FROM template WHERE id = ?", t.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrapf(ErrNotFound, "db.update_template %d", t.ID)
		}
		if err != nil {
			return 0, errors.Wrap(err, "db.update_template.verify")
		}
		return 0, errors.Wrapf(ErrConflict, "db.update_template %d version %d", t.ID, t.Version)
	}
	if err != nil {
		return 0, errors.Wrap(err, "db.update_template")
	}

	for _, table := range []string{"question", "template_tag", "template_access"} {
		_, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE template_id = ?", t.ID)
		if err != nil {
			return 0, errors.Wrap(err, "db.update_template.delete_"+table)
		}
	}
	if err = writeChildren(ctx, tx, t.ID, t); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "db.update_template.commit")
	}
	return version, nil
}

func (repo *TemplateRepository) Delete(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM template WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "db.delete_template")
	}
	return checkAffected(res, "db.delete_template")
}

// writeChildren stores the questions, tags and access list of template id.
func writeChildren(ctx context.Context, tx *sql.Tx, id int, t model.Template) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (template_id, id, position, type, title, question_text, description, required, show_in_table, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "db.insert_template.questions.prepare")
	}
	defer stmt.Close()

	for i, q := range t.Questions {
		config, err := json.Marshal(questionConfig{
			Options:  q.Options,
			Rows:     q.Rows,
			Columns:  q.Columns,
			Min:      q.Min,
			Max:      q.Max,
			Accept:   q.Accept,
			Multiple: q.Multiple,
		})
		if err != nil {
			return errors.Wrap(err, "db.insert_template.questions.config")
		}
		_, err = stmt.ExecContext(ctx, id, q.ID, i, q.Type, q.Title, q.QuestionText, q.Description, q.Required, q.ShowInTable, string(config))
		if err != nil {
			return errors.Wrapf(err, "db.insert_template.questions.insert %s", q.ID)
		}
	}

	for _, name := range t.Tags {
		tagID, err := ensureTag(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO template_tag (template_id, tag_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`,
			id, tagID,
		)
		if err != nil {
			return errors.Wrap(err, "db.insert_template.tags")
		}
	}

	if t.IsPublic {
		return nil
	}
	for _, u := range t.AllowedUsers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO template_access (template_id, user_id)
			SELECT ?, id FROM user WHERE username = ?
			ON CONFLICT DO NOTHING`,
			id, u.Username,
		)
		if err != nil {
			return errors.Wrapf(err, "db.insert_template.access %s", u.Username)
		}
	}
	return nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	tags := strings.Split(s, tagSep)
	sort.Strings(tags)
	return tags
}
