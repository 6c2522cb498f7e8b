package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runGames(ctx context.Context) error {
	if _, err := c.authService.Current(ctx); err != nil {
		return fmt.Errorf("not authenticated, run 'bingosync login' first")
	}

	active, err := c.apiClient.ActiveGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch active games: %w", err)
	}

	waiting, err := c.apiClient.WaitingGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch waiting games: %w", err)
	}

	c.io.Println("=== Active Games ===")
	if len(active.Games) == 0 {
		c.io.Println("(none)")
	}
	for _, g := range active.Games {
		c.io.Printf("%s  status=%s players=%d called=%d current=%d prize=%d\n",
			g.ID, g.Status, g.PlayerCount, len(g.CalledNumbers), g.CurrentNumber, g.PrizePool)
	}

	c.io.Println()
	c.io.Println("=== Waiting Games ===")
	if len(waiting.Games) == 0 {
		c.io.Println("(none)")
	}
	for _, g := range waiting.Games {
		c.io.Printf("%s  status=%s players=%d entry_fee=%d\n",
			g.ID, g.Status, g.PlayerCount, g.EntryFee)
	}

	return nil
}
