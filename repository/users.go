package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/mbolis/forms-app/model"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("user is blocked")
)

type UserRepository struct {
	db *sql.DB
}

func (repo *UserRepository) Create(ctx context.Context, username, email, password string, roles ...string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "user.hash_password")
	}

	u := model.User{
		Username:  username,
		Email:     email,
		Roles:     normalizeRoles(roles),
		CreatedAt: time.Now().UTC(),
	}
	err = repo.db.QueryRowContext(ctx, `
		INSERT INTO user (username, email, password_hash, roles, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		username, email, hash, strings.Join(u.Roles, ","), u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return model.User{}, errors.Wrapf(ErrConflict, "db.insert_user %s", username)
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "db.insert_user")
	}
	return u, nil
}

func (repo *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, _, err := repo.get(ctx, username)
	return u, err
}

func (repo *UserRepository) get(ctx context.Context, username string) (u model.User, hash []byte, err error) {
	var roles string
	err = repo.db.QueryRowContext(ctx, `
		SELECT id, username, email, roles, blocked, created_at, password_hash
		FROM user
		WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &roles, &u.Blocked, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, nil, errors.Wrapf(ErrNotFound, "db.get_user %s", username)
	}
	if err != nil {
		return u, nil, errors.Wrap(err, "db.get_user")
	}
	u.Roles = splitRoles(roles)
	return u, hash, nil
}

// Authenticate checks a password login. Unknown users and wrong passwords
// are both ErrInvalidCredentials.
func (repo *UserRepository) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, hash, err := repo.get(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err = bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	if u.Blocked {
		return model.User{}, ErrBlocked
	}
	return u, nil
}

// Search looks up active users by username or email, for the access list
// picker.
func (repo *UserRepository) Search(ctx context.Context, q string, limit int) ([]model.UserRef, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT id, username, email
		FROM user
		WHERE NOT blocked
			AND (username LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')
		ORDER BY username
		LIMIT ?`,
		likePattern(q), likePattern(q), limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.search_users")
	}
	defer rows.Close()

	users := []model.UserRef{}
	for rows.Next() {
		u := model.UserRef{}
		if err = rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, errors.Wrap(err, "db.search_users.scan")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "db.search_users.next")
}

func (repo *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT id, username, email, roles, blocked, created_at
		FROM user
		ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_users")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u := model.User{}
		var roles string
		if err = rows.Scan(&u.ID, &u.Username, &u.Email, &roles, &u.Blocked, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "db.get_users.scan")
		}
		u.Roles = splitRoles(roles)
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "db.get_users.next")
}

// SetRole grants or revokes role.
func (repo *UserRepository) SetRole(ctx context.Context, username, role string, granted bool) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	var roles string
	err = tx.QueryRowContext(ctx, "SELECT roles FROM user WHERE username = ?", username).Scan(&roles)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, "db.set_role %s", username)
	}
	if err != nil {
		return errors.Wrap(err, "db.set_role.get")
	}

	var updated []string
	for _, r := range splitRoles(roles) {
		if r != role {
			updated = append(updated, r)
		}
	}
	if granted {
		updated = append(updated, role)
	}

	_, err = tx.ExecContext(ctx, "UPDATE user SET roles = ? WHERE username = ?", strings.Join(normalizeRoles(updated), ","), username)
	if err != nil {
		return errors.Wrap(err, "db.set_role")
	}
	return errors.Wrap(tx.Commit(), "db.set_role.commit")
}

// SetBlocked blocks or unblocks a user. Blocking also revokes the user's
// refresh tokens.
func (repo *UserRepository) SetBlocked(ctx context.Context, username string, blocked bool) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE user SET blocked = ? WHERE username = ?", blocked, username)
	if err != nil {
		return errors.Wrap(err, "db.set_blocked")
	}
	if err = checkAffected(res, "db.set_blocked"); err != nil {
		return err
	}
	if blocked {
		if _, err = tx.ExecContext(ctx, "DELETE FROM token WHERE username = ?", username); err != nil {
			return errors.Wrap(err, "db.set_blocked.tokens")
		}
	}
	return errors.Wrap(tx.Commit(), "db.set_blocked.commit")
}

func (repo *UserRepository) Delete(ctx context.Context, username string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM user WHERE username = ?", username)
	if err != nil {
		return errors.Wrap(err, "db.delete_user")
	}
	return checkAffected(res, "db.delete_user")
}

func (repo *UserRepository) Count(ctx context.Context) (n int, err error) {
	err = repo.db.QueryRowContext(ctx, "SELECT count(*) FROM user").Scan(&n)
	return n, errors.Wrap(err, "db.count_users")
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return normalizeRoles(roles)
}

func normalizeRoles(roles []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, r := range roles {
		if r != "" && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}
