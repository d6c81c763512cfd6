// Package repository persists templates, submissions and users in SQLite.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// querier is the part of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repositories struct {
	Templates   *TemplateRepository
	Submissions *SubmissionRepository
	Tags        *TagRepository
	Users       *UserRepository
	Tokens      *TokenRepository
	Comments    *CommentRepository
	Likes       *LikeRepository
}

func New(db *sql.DB) Repositories {
	return Repositories{
		Templates:   &TemplateRepository{db},
		Submissions: &SubmissionRepository{db},
		Tags:        &TagRepository{db},
		Users:       &UserRepository{db},
		Tokens:      &TokenRepository{db},
		Comments:    &CommentRepository{db},
		Likes:       &LikeRepository{db},
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// likePattern escapes q for a LIKE ... ESCAPE '\' clause.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func checkAffected(res sql.Result, code string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, code+".verify")
	}
	if n < 1 {
		return errors.Wrap(ErrNotFound, code)
	}
	return nil
}
