package cli

import (
	"context"
	"fmt"

	"github.com/mkravets/bingosync/internal/client/storage"
	"github.com/mkravets/bingosync/internal/models"
)

// runRelease чистит локально закешированную заявку пользователя.
// REST-команды освобождения у бекенда нет: сервер снимает карточку
// сам по таймауту или при выборе другой.
func (c *Cli) runRelease(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bingosync release <game-id>")
	}
	gameID := args[0]

	session, err := c.authService.Current(ctx)
	if err != nil {
		return fmt.Errorf("not authenticated, run 'bingosync login' first")
	}

	st, err := c.boltStorage.GetGameState(ctx, gameID)
	if err != nil {
		if err == storage.ErrGameStateNotFound {
			c.io.Println("No cached state for this game.")
			return nil
		}
		return fmt.Errorf("failed to load cached state: %w", err)
	}

	kept := make([]models.CardClaim, 0, len(st.TakenCards))
	released := 0
	for _, claim := range st.TakenCards {
		if claim.OwnerID == session.UserID {
			released++
			continue
		}
		kept = append(kept, claim)
	}

	if released == 0 {
		c.io.Println("No cached claim of yours in this game.")
		return nil
	}

	st.TakenCards = kept
	if err := c.boltStorage.SaveGameState(ctx, st); err != nil {
		return fmt.Errorf("failed to save cached state: %w", err)
	}

	c.io.Printf("✓ Cleared %d cached claim(s).\n", released)
	return nil
}
