package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/mkravets/bingosync/internal/client/storage"
)

// SaveGameState stores or updates cached state for a game
func (s *Storage) SaveGameState(ctx context.Context, state *storage.GameState) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if state.GameID == "" {
		return fmt.Errorf("game id is empty")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketGameState)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		// Ключ — идентификатор игры
		if err := bucket.Put([]byte(state.GameID), data); err != nil {
			return fmt.Errorf("failed to save game state: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetGameState retrieves cached state by game id
func (s *Storage) GetGameState(ctx context.Context, gameID string) (*storage.GameState, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var state *storage.GameState

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketGameState)
		if bucket == nil {
			return storage.ErrGameStateNotFound
		}

		data := bucket.Get([]byte(gameID))
		if data == nil {
			return storage.ErrGameStateNotFound
		}

		state = &storage.GameState{}
		if err := json.Unmarshal(data, state); err != nil {
			return fmt.Errorf("failed to unmarshal game state: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return state, nil
}

// DeleteGameState removes cached state for a game
func (s *Storage) DeleteGameState(ctx context.Context, gameID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketGameState)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(gameID))
	})

	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}
