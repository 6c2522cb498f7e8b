package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mkravets/bingosync/internal/client/reconcile"
	"github.com/mkravets/bingosync/internal/models"
)

func (c *Cli) runSelect(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: bingosync select <game-id> <card-number>")
	}
	gameID := args[0]

	cardNumber, err := strconv.Atoi(args[1])
	if err != nil || cardNumber < 1 || cardNumber > reconcile.DefaultUniverseSize {
		return fmt.Errorf("card number must be 1..%d", reconcile.DefaultUniverseSize)
	}

	session, err := c.authService.Current(ctx)
	if err != nil {
		return fmt.Errorf("not authenticated, run 'bingosync login' first")
	}

	eng := c.buildEngine(session)
	if err := eng.Start(ctx, gameID, session.UserID); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}
	defer eng.Stop()

	// Ждем первый опрос: фаза должна выйти из Loading
	deadline := time.Now().Add(10 * time.Second)
	for eng.State().Phase == models.PhaseLoading {
		if time.Now().After(deadline) {
			return fmt.Errorf("game state did not load in time")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	if err := eng.SelectCard(ctx, cardNumber); err != nil {
		return fmt.Errorf("cannot select card %d: %w", cardNumber, err)
	}
	c.io.Printf("Card %d marked, waiting for server confirmation...\n", cardNumber)

	// Даем запросу завершиться, показывая уведомления об откате
	wait := time.After(3 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-eng.Notifications():
			c.io.Printf("[%s] %s\n", n.Level, n.Message)
		case <-wait:
			status, err := c.apiClient.SelectionStatus(ctx, gameID)
			if err != nil {
				return fmt.Errorf("failed to check selection status: %w", err)
			}
			if status.Confirmed && status.CardNumber == cardNumber {
				c.io.Printf("✓ Card %d is yours.\n", cardNumber)
			} else {
				c.io.Printf("Card %d was not confirmed by the server.\n", cardNumber)
			}
			return nil
		}
	}
}
