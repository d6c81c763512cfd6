package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

type TagRepository struct {
	db *sql.DB
}

// Search returns up to limit tag names containing q, alphabetically.
func (repo *TagRepository) Search(ctx context.Context, q string, limit int) ([]string, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT name FROM tag
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY name COLLATE NOCASE
		LIMIT ?`,
		likePattern(q), limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.search_tags")
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "db.search_tags.scan")
		}
		tags = append(tags, name)
	}
	return tags, errors.Wrap(rows.Err(), "db.search_tags.next")
}

// Create returns the stored name of tag name, creating it if needed. Names
// are case-insensitive; the first spelling wins.
func (repo *TagRepository) Create(ctx context.Context, name string) (string, error) {
	id, err := ensureTag(ctx, repo.db, name)
	if err != nil {
		return "", err
	}
	var stored string
	err = repo.db.QueryRowContext(ctx, "SELECT name FROM tag WHERE id = ?", id).Scan(&stored)
	return stored, errors.Wrap(err, "db.get_tag")
}

func ensureTag(ctx context.Context, q querier, name string) (id int, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("db.insert_tag: empty tag name")
	}
	_, err = q.ExecContext(ctx, "INSERT INTO tag (name) VALUES (?) ON CONFLICT DO NOTHING", name)
	if err != nil {
		return 0, errors.Wrap(err, "db.insert_tag")
	}
	err = q.QueryRowContext(ctx, "SELECT id FROM tag WHERE name = ?", name).Scan(&id)
	return id, errors.Wrap(err, "db.insert_tag.get_id")
}
