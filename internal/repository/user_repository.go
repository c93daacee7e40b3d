package repository

import (
	"AuthTokens_Service/internal"
	"AuthTokens_Service/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

const (
	insertUserQuery = `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`

	selectUserColumns = `SELECT id, email, password_hash, COALESCE(renewal_token_hash, '') AS renewal_token_hash, created_at FROM users`

	selectUserByEmailQuery = selectUserColumns + ` WHERE email = $1`
	selectUserByIDQuery    = selectUserColumns + ` WHERE id = $1`
)

// UserRepository is the postgres credential store.
type UserRepository struct {
	*internal.Database
}

func NewUserRepository(database *internal.Database) *UserRepository {
	return &UserRepository{database}
}

func (repository *UserRepository) Create(ctx context.Context, email string, passwordHash string) (*model.User, error) {
	const op = "repository.UserRepository.Create"

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
	}

	err := repository.DB.QueryRowxContext(ctx, insertUserQuery, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, fmt.Errorf("%s: %w", op, model.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (repository *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const op = "repository.UserRepository.FindByEmail"

	var user model.User
	if err := repository.DB.GetContext(ctx, &user, selectUserByEmailQuery, normalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (repository *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	const op = "repository.UserRepository.FindByID"

	var user model.User
	if err := repository.DB.GetContext(ctx, &user, selectUserByIDQuery, id); err != nil {
		// a non-uuid id cannot name any row
		if errors.Is(err, sql.ErrNoRows) || hasCode(err, pgerrcode.InvalidTextRepresentation) {
			return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
