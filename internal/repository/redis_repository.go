package repository

import (
	"AuthTokens_Service/internal/model"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"time"
)

const (
	fieldID             = "id"
	fieldEmail          = "email"
	fieldPasswordHash   = "password_hash"
	fieldRenewalBinding = "renewal_token_hash"
	fieldCreatedAt      = "created_at"

	maxBindingRetries = 8
)

// RedisRepository keeps one hash per user under <prefix>user:<id> and an
// email index under <prefix>email:<email> holding the user id.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (repository *RedisRepository) userKey(id string) string {
	return repository.prefix + "user:" + id
}

func (repository *RedisRepository) emailKey(email string) string {
	return repository.prefix + "email:" + email
}

func (repository *RedisRepository) Create(ctx context.Context, email string, passwordHash string) (*model.User, error) {
	const op = "repository.RedisRepository.Create"

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	claimed, err := repository.client.SetNX(ctx, repository.emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: claim email: %w", op, err)
	}
	if !claimed {
		return nil, fmt.Errorf("%s: %w", op, model.ErrAlreadyExists)
	}

	err = repository.client.HSet(ctx, repository.userKey(user.ID), map[string]interface{}{
		fieldID:             user.ID,
		fieldEmail:          user.Email,
		fieldPasswordHash:   user.PasswordHash,
		fieldRenewalBinding: "",
		fieldCreatedAt:      user.CreatedAt.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		// release the email so the user can retry
		_ = repository.client.Del(ctx, repository.emailKey(user.Email)).Err()
		return nil, fmt.Errorf("%s: write user: %w", op, err)
	}

	return user, nil
}

func (repository *RedisRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const op = "repository.RedisRepository.FindByEmail"

	id, err := repository.client.Get(ctx, repository.emailKey(normalizeEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (repository *RedisRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	const op = "repository.RedisRepository.FindByID"

	fields, err := repository.client.HGetAll(ctx, repository.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("%s: created_at: %w", op, err)
	}

	return &model.User{
		ID:             fields[fieldID],
		Email:          fields[fieldEmail],
		PasswordHash:   fields[fieldPasswordHash],
		RenewalBinding: fields[fieldRenewalBinding],
		CreatedAt:      createdAt,
	}, nil
}

// SetRenewalBinding writes the binding field under WATCH so that a missing
// user is reported instead of creating a partial hash.
func (repository *RedisRepository) SetRenewalBinding(ctx context.Context, userID string, binding string) error {
	const op = "repository.RedisRepository.SetRenewalBinding"

	key := repository.userKey(userID)

	for i := 0; i < maxBindingRetries; i++ {
		err := repository.client.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if exists == 0 {
				return model.ErrUserNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fieldRenewalBinding, binding)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	}

	return fmt.Errorf("%s: too much contention on %s", op, key)
}
