package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// CreateUser implements ports.UserStore
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, password string) (int64, error) {
	res, err := r.exec(ctx, sqlb.Insert("users").
		Columns("username", "password").
		Values(username, password))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read user id: %w", err)
	}

	logger(ctx).InfoContext(ctx, "User saved to SQLite", log.FieldUserID, id, log.FieldUsername, username)
	return id, nil
}

// FindUserByUsername implements ports.UserStore
func (r *SQLiteRepository) FindUserByUsername(ctx context.Context, username string) (core.User, bool, error) {
	var u core.User
	err := r.queryRow(ctx, sqlb.Select("id", "username", "password").
		From("users").
		Where(sq.Eq{"username": username}),
		&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, false, nil
	}
	if err != nil {
		return core.User{}, false, fmt.Errorf("find user %q: %w", username, err)
	}
	return u, true, nil
}

// UserExists implements ports.UserStore
func (r *SQLiteRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.queryRow(ctx, sqlb.Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"id": id}),
		&n)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return n > 0, nil
}
