package postgres

import (
	"context"
	"errors"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, username, email, hashed_password, salt, role, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.UserID, &user.Username, &user.Email, &user.HashedPassword, &user.Salt, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, username, email, hashed_password, salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		user.UserID, user.Username, user.Email, user.HashedPassword, user.Salt, user.Role, user.CreatedAt, user.UpdatedAt)
	created, err := scanUser(row)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return models.User{}, store.ErrDuplicateUser
		}
		return models.User{}, err
	}
	return created, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $2, email = $3, hashed_password = $4, salt = $5, role = $6, updated_at = $7
		WHERE user_id = $1
		RETURNING `+userColumns,
		user.UserID, user.Username, user.Email, user.HashedPassword, user.Salt, user.Role, user.UpdatedAt)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return models.User{}, store.ErrDuplicateUser
		}
		return models.User{}, err
	}
	return updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return store.ErrUserHasTickets
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
