package cli

import (
	"context"
	"fmt"

	"github.com/mkravets/bingosync/internal/client/storage"
)

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		if err == storage.ErrSessionNotFound {
			c.io.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logged out, session cleared.")
	return nil
}
