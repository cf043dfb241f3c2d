package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/HammerMeetNail/gamelog/internal/models"
	"github.com/HammerMeetNail/gamelog/internal/result"
)

// LibraryRepository manages a user's tracked games.
type LibraryRepository struct {
	api UserGamesAPI
	// upsertMu serializes upserts so two concurrent calls for one
	// (user, game) pair cannot both take the create branch.
	upsertMu sync.Mutex
}

func NewLibraryRepository(api UserGamesAPI) *LibraryRepository {
	return &LibraryRepository{api: api}
}

func (r *LibraryRepository) ListByUser(ctx context.Context, userID int64) result.Result[[]models.UserGame] {
	return result.Capture(func() ([]models.UserGame, error) {
		rows, err := r.api.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list games of user %d: %w", userID, err)
		}
		return nonNil(rows), nil
	})
}

// Upsert updates the user's row for params.GameID when one exists and
// creates it otherwise. There is never more than one row per pair.
func (r *LibraryRepository) Upsert(ctx context.Context, params models.UpsertUserGameParams, bearer string) result.Result[models.UserGame] {
	params.Status = strings.TrimSpace(params.Status)
	if err := validateInput(params); err != nil {
		return result.Fail[models.UserGame](err)
	}

	r.upsertMu.Lock()
	defer r.upsertMu.Unlock()

	return result.Capture(func() (models.UserGame, error) {
		rows, err := r.api.ListByUser(ctx, params.UserID)
		if err != nil {
			return models.UserGame{}, fmt.Errorf("look up existing game row: %w", err)
		}
		for _, row := range rows {
			if row.GameID != params.GameID {
				continue
			}
			updated, err := r.api.Update(ctx, row.ID, params, bearer)
			if err != nil {
				return models.UserGame{}, fmt.Errorf("update game row %d: %w", row.ID, err)
			}
			return updated, nil
		}
		created, err := r.api.Create(ctx, params, bearer)
		if err != nil {
			return models.UserGame{}, fmt.Errorf("create game row: %w", err)
		}
		return created, nil
	})
}

func (r *LibraryRepository) Remove(ctx context.Context, id int64, bearer string) result.Result[result.Void] {
	return result.Capture(func() (result.Void, error) {
		if err := r.api.Delete(ctx, id, bearer); err != nil {
			return result.Void{}, fmt.Errorf("remove game row %d: %w", id, err)
		}
		return result.Void{}, nil
	})
}
