package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type SQLiteUserRepo struct {
	db *sql.DB
}

func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (u *SQLiteUserRepo) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email, image, theme) VALUES (?, ?, ?, ?, ?)`
	result, err := u.db.ExecContext(ctx, query, user.Uid, user.Name, user.Email, user.Image, user.Theme)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (u *SQLiteUserRepo) GetUser(ctx context.Context, id int) (User, error) {
	return u.getOne(ctx, `SELECT id, uid, name, email, image, theme FROM users WHERE id = ?`, id)
}

func (u *SQLiteUserRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return u.getOne(ctx, `SELECT id, uid, name, email, image, theme FROM users WHERE email = ?`, email)
}

func (u *SQLiteUserRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := u.db.QueryRowContext(ctx, query, arg).Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.Image, &user.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debugf("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *SQLiteUserRepo) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	result, err := u.db.ExecContext(ctx, `UPDATE users SET name = ?, image = ?, theme = ? WHERE id = ?`,
		user.Name, user.Image, user.Theme, userId)
	if err != nil {
		return User{}, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if rows == 0 {
		return User{}, fmt.Errorf("%w: id %d", ErrUserNotFound, userId)
	}
	user.Id = userId
	return user, nil
}
