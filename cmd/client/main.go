package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkravets/bingosync/internal/client/api"
	"github.com/mkravets/bingosync/internal/client/auth"
	"github.com/mkravets/bingosync/internal/client/cli"
	"github.com/mkravets/bingosync/internal/client/iocli"
	"github.com/mkravets/bingosync/internal/client/storage/boltdb"
	"github.com/mkravets/bingosync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg := config.Load()

	// Глобальные флаги; окружение задает дефолты, флаги их перекрывают
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", cfg.BaseURL, "Server URL")
	wsURL := flag.String("ws", cfg.WSURL, "Push channel URL")
	dbPath := flag.String("db", cfg.DBPath, "Path to local database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	cfg.BaseURL = *serverURL
	cfg.WSURL = *wsURL
	cfg.DBPath = *dbPath

	command := args[0]

	// watch и select живут до Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(cfg.BaseURL)
	authService := auth.NewService(apiClient, boltStorage)

	c := cli.New(iocli.NewStdio(), cfg, apiClient, authService, boltStorage)
	c.Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("BingoSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
