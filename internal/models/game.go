package models

import "strings"

const CompletedStatus = "COMPLETADO"

type GameDetail struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	CoverURL string   `json:"cover_url,omitempty"`
	Released string   `json:"released,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

type UserGame struct {
	ID     int64    `json:"id"`
	UserID int64    `json:"user_id"`
	GameID int64    `json:"game_id"`
	Status string   `json:"status"`
	Score  *float64 `json:"score,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

func (g UserGame) IsCompleted() bool {
	return strings.EqualFold(strings.TrimSpace(g.Status), CompletedStatus)
}

// HasReview reports whether the row carries non-blank notes.
func (g UserGame) HasReview() bool {
	return g.Notes != nil && strings.TrimSpace(*g.Notes) != ""
}

type UpsertUserGameParams struct {
	UserID int64    `json:"user_id" validate:"gt=0"`
	GameID int64    `json:"game_id" validate:"gt=0"`
	Status string   `json:"status" validate:"required,max=32"`
	Score  *float64 `json:"score,omitempty" validate:"omitempty,gte=0,lte=10"`
	Notes  *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// GameReview is a review entry as listed for a game across all users.
type GameReview struct {
	ID     int64    `json:"id"`
	GameID int64    `json:"game_id"`
	Author Friend   `json:"author"`
	Score  *float64 `json:"score,omitempty"`
	Notes  string   `json:"notes"`
}
