package repository

import (
	"AuthTokens_Service/internal/model"
	"context"
	"fmt"
	"github.com/google/uuid"
	"sync"
	"time"
)

// MemoryRepository is an in-process credential store. Users are copied on
// the way in and out so callers never share state with the map.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (repository *MemoryRepository) Create(_ context.Context, email string, passwordHash string) (*model.User, error) {
	const op = "repository.MemoryRepository.Create"

	email = normalizeEmail(email)

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.byEmail[email]; exists {
		return nil, fmt.Errorf("%s: %w", op, model.ErrAlreadyExists)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	repository.users[user.ID] = user
	repository.byEmail[email] = user.ID

	return &user, nil
}

func (repository *MemoryRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	const op = "repository.MemoryRepository.FindByEmail"

	repository.mu.RLock()
	defer repository.mu.RUnlock()

	id, ok := repository.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
	}

	user := repository.users[id]
	return &user, nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	const op = "repository.MemoryRepository.FindByID"

	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
	}

	return &user, nil
}

func (repository *MemoryRepository) SetRenewalBinding(_ context.Context, userID string, binding string) error {
	const op = "repository.MemoryRepository.SetRenewalBinding"

	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[userID]
	if !ok {
		return fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
	}

	user.RenewalBinding = binding
	repository.users[userID] = user

	return nil
}
