package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// TokenRepository keeps the issued refresh tokens. A refresh token is
// consumed on use.
type TokenRepository struct {
	db *sql.DB
}

func (repo *TokenRepository) Store(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username, tokenID, refreshTokenID, expiration.UTC(),
	)
	return errors.Wrap(err, "db.insert_token")
}

// Consume deletes the token and fails with ErrNotFound when it was unknown
// or expired.
func (repo *TokenRepository) Consume(ctx context.Context, username, tokenID, refreshTokenID string) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	var expiration time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT expiration FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`,
		username, tokenID, refreshTokenID,
	).Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, "db.consume_token")
	}
	if err != nil {
		return errors.Wrap(err, "db.consume_token")
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`,
		username, tokenID, refreshTokenID,
	)
	if err != nil {
		return errors.Wrap(err, "db.consume_token.delete")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "db.consume_token.commit")
	}

	if expiration.Before(time.Now()) {
		return errors.Wrap(ErrNotFound, "db.consume_token.expired")
	}
	return nil
}

func (repo *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM token WHERE expiration < ?", time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "db.purge_tokens")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "db.purge_tokens.verify")
}
