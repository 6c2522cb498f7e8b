package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	// initData берем из аргумента или запрашиваем интерактивно
	var initData string
	if len(args) > 0 {
		initData = args[0]
	} else {
		var err error
		initData, err = c.io.ReadInput("Telegram init data: ")
		if err != nil {
			return fmt.Errorf("failed to read init data: %w", err)
		}
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	session, err := c.authService.Login(ctx, initData)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("User: %s (%s)\n", session.Username, session.UserID)
	c.io.Printf("Token expires: %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))

	return nil
}
