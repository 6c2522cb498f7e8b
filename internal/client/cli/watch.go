package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mkravets/bingosync/internal/client/engine"
	"github.com/mkravets/bingosync/internal/client/storage"
	"github.com/mkravets/bingosync/internal/client/transport"
)

// buildEngine собирает push-канал и движок синхронизации для сессии
func (c *Cli) buildEngine(session *storage.Session) *engine.Engine {
	var eng *engine.Engine

	channel := transport.NewChannel(transport.Options{
		URL:               c.cfg.WSURL,
		Token:             session.Token,
		HeartbeatInterval: c.cfg.HeartbeatInterval,
		BackoffBase:       c.cfg.BackoffBase,
		BackoffCap:        c.cfg.BackoffCap,
		MaxAttempts:       c.cfg.MaxReconnectAttempts,
		// eng присваивается до Start, heartbeat стартует после Open
		Sequence: func() int64 {
			if eng == nil {
				return 0
			}
			return eng.LastSequence()
		},
	})

	eng = engine.New(channel, c.apiClient, c.boltStorage, engine.Options{
		PollInterval:  c.cfg.PollInterval,
		PhaseDebounce: c.cfg.PhaseDebounce,
		PushFreshness: c.cfg.PushFreshness,
		ProcessingTTL: c.cfg.ProcessingTTL,
		ResyncStale:   c.cfg.ResyncStaleAfter,
		Navigate: func(gameID string) {
			fmt.Printf("\n>>> Game %s is live!\n\n", gameID)
		},
	})
	return eng
}

func (c *Cli) runWatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bingosync watch <game-id>")
	}
	gameID := args[0]

	session, err := c.authService.Current(ctx)
	if err != nil {
		return fmt.Errorf("not authenticated, run 'bingosync login' first")
	}

	eng := c.buildEngine(session)
	if err := eng.Start(ctx, gameID, session.UserID); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}
	defer eng.Stop()

	c.io.Printf("Watching game %s (Ctrl+C to stop)\n", gameID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last engine.Snapshot
	for {
		select {
		case <-ctx.Done():
			c.io.Println()
			c.io.Println("Stopped.")
			return nil
		case n := <-eng.Notifications():
			c.io.Printf("[%s] %s\n", n.Level, n.Message)
		case <-ticker.C:
			snap := eng.State()
			if snapChanged(last, snap) {
				c.io.Printf("phase=%s conn=%s called=%d current=%d taken=%d seq=%d\n",
					snap.Phase, snap.Connection, len(snap.CalledNumbers),
					snap.CurrentNumber, len(snap.TakenCards), snap.LastSequence)
				last = snap
			}
			if snap.Connection == transport.StateFailed {
				c.io.Println("⚠️  Connection failed, retrying...")
				eng.Reconnect(ctx)
			}
		}
	}
}

// snapChanged сравнивает наблюдаемые в выводе поля среза
func snapChanged(a, b engine.Snapshot) bool {
	return a.Phase != b.Phase ||
		a.Connection != b.Connection ||
		len(a.CalledNumbers) != len(b.CalledNumbers) ||
		a.CurrentNumber != b.CurrentNumber ||
		len(a.TakenCards) != len(b.TakenCards) ||
		a.LastSequence != b.LastSequence
}
