package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mbolis/forms-app/model"
	"github.com/pkg/errors"
)

type CommentRepository struct {
	db *sql.DB
}

func (repo *CommentRepository) List(ctx context.Context, templateID int) ([]model.Comment, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT id, template_id, username, text, created_at
		FROM comment
		WHERE template_id = ?
		ORDER BY created_at, id`,
		templateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_comments")
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c := model.Comment{}
		if err = rows.Scan(&c.ID, &c.TemplateID, &c.Username, &c.Text, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "db.get_comments.scan")
		}
		comments = append(comments, c)
	}
	return comments, errors.Wrap(rows.Err(), "db.get_comments.next")
}

func (repo *CommentRepository) Create(ctx context.Context, templateID int, username, text string) (model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, errors.New("db.insert_comment: empty comment")
	}

	c := model.Comment{TemplateID: templateID, Username: username, Text: text, CreatedAt: time.Now().UTC()}
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO comment (template_id, username, text, created_at)
		SELECT id, ?, ?, ? FROM template WHERE id = ?
		RETURNING id`,
		username, text, c.CreatedAt, templateID,
	).Scan(&c.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, errors.Wrapf(ErrNotFound, "db.insert_comment template %d", templateID)
	}
	if err != nil {
		return model.Comment{}, errors.Wrap(err, "db.insert_comment")
	}
	return c, nil
}

type LikeRepository struct {
	db *sql.DB
}

// Toggle likes the template for username, or takes the like back when
// there was one. It returns the new state and like count.
func (repo *LikeRepository) Toggle(ctx context.Context, templateID int, username string) (liked bool, count int, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM template_like WHERE template_id = ? AND username = ?", templateID, username)
	if err != nil {
		return false, 0, errors.Wrap(err, "db.toggle_like.delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, errors.Wrap(err, "db.toggle_like.verify")
	}
	if n == 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO template_like (template_id, username)
			SELECT id, ? FROM template WHERE id = ?`,
			username, templateID,
		)
		if err != nil {
			return false, 0, errors.Wrap(err, "db.toggle_like.insert")
		}
		if err = checkAffected(res, "db.toggle_like.insert"); err != nil {
			return false, 0, err
		}
		liked = true
	}

	if count, err = countLikes(ctx, tx, templateID); err != nil {
		return false, 0, err
	}
	return liked, count, errors.Wrap(tx.Commit(), "db.toggle_like.commit")
}

func (repo *LikeRepository) Count(ctx context.Context, templateID int) (int, error) {
	return countLikes(ctx, repo.db, templateID)
}

func countLikes(ctx context.Context, q querier, templateID int) (n int, err error) {
	err = q.QueryRowContext(ctx, "SELECT count(*) FROM template_like WHERE template_id = ?", templateID).Scan(&n)
	return n, errors.Wrap(err, "db.count_likes")
}
