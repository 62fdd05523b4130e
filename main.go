package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"listings-pipeline/commands"
	"listings-pipeline/config"
	"listings-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	// The Lambda runtime sets this; there is no command line to parse.
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		commands.StartLambda(context.Background(), cfg, logger)
		return
	}

	logger.Debug("Config: pages=%d fetch=%s store=%s archive=%s tables=%s",
		cfg.Pages, cfg.FetchMode, cfg.StoreMode, cfg.ArchiveBucket, cfg.TableBucket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx, cfg, logger)
}
