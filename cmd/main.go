package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thanujadevi/EMPOWERHER/internal/app"
	"github.com/Thanujadevi/EMPOWERHER/internal/config"
	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	a, err := app.New(ctx, cfg, logger, app.Platform{})
	if err != nil {
		logger.Fatal("failed to initialize app", "error", err)
	}

	state := a.Session.Restore(ctx)
	if state.LoggedIn() {
		logger.Info("session restored", "user_id", state.User.ID, "is_authority", state.IsAuthority)
	} else {
		logger.Info("no stored session")
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	if err := a.Close(); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
