package repository

import (
	"AuthTokens_Service/internal/model"
	"context"
	"fmt"
	"github.com/jackc/pgerrcode"
)

// An empty binding is stored as NULL.
const updateRenewalBindingQuery = `UPDATE users SET renewal_token_hash = NULLIF($2, '') WHERE id = $1`

// SetRenewalBinding overwrites the user's renewal binding in one statement.
func (repository *UserRepository) SetRenewalBinding(ctx context.Context, userID string, binding string) error {
	const op = "repository.UserRepository.SetRenewalBinding"

	result, err := repository.DB.ExecContext(ctx, updateRenewalBindingQuery, userID, binding)
	if err != nil {
		if hasCode(err, pgerrcode.InvalidTextRepresentation) {
			return fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
	}

	return nil
}
