package cli

import (
	"fmt"

	"github.com/mkravets/bingosync/internal/client/api"
	"github.com/mkravets/bingosync/internal/client/auth"
	"github.com/mkravets/bingosync/internal/client/iocli"
	"github.com/mkravets/bingosync/internal/client/storage/boltdb"
	"github.com/mkravets/bingosync/internal/config"
)

// Cli связывает команды клиента с сервисами
type Cli struct {
	io          iocli.IO
	cfg         config.Config
	apiClient   *api.Client
	authService *auth.Service
	boltStorage *boltdb.Storage
}

func New(io iocli.IO, cfg config.Config, apiClient *api.Client, authService *auth.Service, boltStorage *boltdb.Storage) *Cli {
	return &Cli{
		io:          io,
		cfg:         cfg,
		apiClient:   apiClient,
		authService: authService,
		boltStorage: boltStorage,
	}
}

func PrintUsage() {
	fmt.Println("BingoSync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bingosync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --ws URL         Push channel URL (default: ws://localhost:8080)")
	fmt.Println("  --db PATH        Path to local database (default: bingosync-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login [INIT_DATA]       Login with Telegram Mini App init data")
	fmt.Println("  logout                  Logout and clear saved session")
	fmt.Println("  status                  Show authentication status")
	fmt.Println("  games                   List active and waiting games")
	fmt.Println("  watch <game-id>         Follow a game in real time")
	fmt.Println("  select <game-id> <n>    Select card number n in a game")
	fmt.Println("  release <game-id>       Clear your locally cached card claim")
	fmt.Println("  balance                 Show wallet balance")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  bingosync login 'query_id=...&user=...'")
	fmt.Println("  bingosync games")
	fmt.Println("  bingosync select 7f1c2a 17")
	fmt.Println("  bingosync --server https://bingo.example.com watch 7f1c2a")
}
