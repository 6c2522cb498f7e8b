package storage

import (
	"context"

	"github.com/mkravets/bingosync/internal/models"
)

//go:generate moq -out gamestate_mock.go . GameStateStorage

// GameState represents the cached per-game sync state.
// Используется для теплого старта: перезапущенный клиент сначала
// поднимает кеш, потом делает полный ресинк с сервера.
type GameState struct {
	GameID        string             `json:"game_id"`
	Phase         string             `json:"phase"`
	CalledNumbers []int              `json:"called_numbers"`
	TakenCards    []models.CardClaim `json:"taken_cards"`
	CurrentNumber int                `json:"current_number"`
	LastSequence  int64              `json:"last_sequence"`
	UpdatedAt     int64              `json:"updated_at"` // unix millis
}

// GameStateStorage defines interface for caching game sync state on client
type GameStateStorage interface {
	// SaveGameState stores or updates cached state for a game
	SaveGameState(ctx context.Context, state *GameState) error

	// GetGameState retrieves cached state by game id
	// Returns ErrGameStateNotFound if nothing is cached
	GetGameState(ctx context.Context, gameID string) (*GameState, error)

	// DeleteGameState removes cached state for a game
	DeleteGameState(ctx context.Context, gameID string) error
}
