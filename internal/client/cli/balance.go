package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runBalance(ctx context.Context) error {
	if _, err := c.authService.Current(ctx); err != nil {
		return fmt.Errorf("not authenticated, run 'bingosync login' first")
	}

	balance, err := c.apiClient.Balance(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}

	// Суммы приходят с сервера как есть, клиент ничего не пересчитывает
	c.io.Printf("Balance: %d %s\n", balance.Balance, balance.Currency)
	return nil
}
