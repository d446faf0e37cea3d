// Package sqlite persists users and friend request rows in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"usermanagement_server/internal/dao/sqlite/migrations"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/errorx"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists rows in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and applies the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func wrapErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func scanUser(row *sql.Row) (*model.UserInfo, error) {
	var (
		u        model.UserInfo
		lastSeen int64
	)
	if err := row.Scan(&u.UserId, &u.Name, &lastSeen, &u.Status); err != nil {
		return nil, err
	}
	u.LastSeen = fromMillis(lastSeen)
	return &u, nil
}

func (s *Store) GetUserById(ctx context.Context, userId int64) (*model.UserInfo, error) {
	u, err := scanUser(s.sqlDB.QueryRowContext(ctx,
		"SELECT user_id, name, last_seen, status FROM users WHERE user_id = ?", userId))
	if err != nil {
		return nil, wrapErr(err, "get user %d", userId)
	}
	return u, nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*model.UserInfo, error) {
	u, err := scanUser(s.sqlDB.QueryRowContext(ctx,
		"SELECT user_id, name, last_seen, status FROM users WHERE name = ?", name))
	if err != nil {
		return nil, wrapErr(err, "get user %s", name)
	}
	return u, nil
}

func (s *Store) HasUserByName(ctx context.Context, name string) (bool, error) {
	var found int
	err := s.sqlDB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrapErr(err, "check user name %s", name)
	}
	return true, nil
}

func (s *Store) SaveUser(ctx context.Context, user *model.UserInfo) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (user_id, name, last_seen, status) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    name = excluded.name,
    last_seen = excluded.last_seen,
    status = excluded.status`,
		user.UserId, user.Name, toMillis(user.LastSeen), user.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return errorx.Wrapf(err, errorx.CodeDBError, "name %s already in use", user.Name)
		}
		return wrapErr(err, "save user %d", user.UserId)
	}
	return nil
}

func (s *Store) RemoveUser(ctx context.Context, userId int64) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userId); err != nil {
		return wrapErr(err, "remove user %d", userId)
	}
	return nil
}

func (s *Store) GetFriendRequestsForUser(ctx context.Context, userId int64) ([]model.FriendRequest, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT request_id, sender_id, receiver_id, status FROM friend_requests
WHERE sender_id = ? OR receiver_id = ?`, userId, userId)
	if err != nil {
		return nil, wrapErr(err, "get friend requests for %d", userId)
	}
	defer rows.Close()

	var out []model.FriendRequest
	for rows.Next() {
		var r model.FriendRequest
		if err := rows.Scan(&r.RequestId, &r.SenderId, &r.ReceiverId, &r.Status); err != nil {
			return nil, wrapErr(err, "scan friend request")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "iterate friend requests for %d", userId)
	}
	return out, nil
}

// inTx runs fn in one transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) SaveFriendRequests(ctx context.Context, requests []model.FriendRequest) error {
	if len(requests) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO friend_requests (request_id, sender_id, receiver_id, status) VALUES (?, ?, ?, ?)
ON CONFLICT(request_id) DO UPDATE SET
    sender_id = excluded.sender_id,
    receiver_id = excluded.receiver_id,
    status = excluded.status`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range requests {
			if _, err := stmt.ExecContext(ctx, r.RequestId, r.SenderId, r.ReceiverId, r.Status); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr(err, "save %d friend requests", len(requests))
}

func (s *Store) RemoveFriendRequestsById(ctx context.Context, requestIds []string) error {
	if len(requestIds) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range requestIds {
			if _, err := tx.ExecContext(ctx, "DELETE FROM friend_requests WHERE request_id = ?", id); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr(err, "remove %d friend requests", len(requestIds))
}

func (s *Store) RemoveAllUserFriendRequests(ctx context.Context, userId int64) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE sender_id = ? OR receiver_id = ?", userId, userId)
	return wrapErr(err, "remove friend requests of %d", userId)
}
