package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/logger"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Re-embed the talent profiles and rewrite the corpus snapshot",
	Run: func(_ *cobra.Command, _ []string) {
		index()
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func index() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("rebuilding the talent corpus", zap.String("profiles", config.profilesFile()))

	stack, err := buildApp(ctx, config, logger, true)
	if err != nil {
		logger.Fatal("rebuilding the corpus", zap.Error(err))
	}

	saveCache(stack.cache, logger)

	logger.Info("corpus rebuilt",
		zap.Int("candidates", stack.corpus.Len()),
		zap.Int("cached embeddings", stack.cache.Len()),
		zap.String("snapshot", config.snapshotFile()),
	)
}
