package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/chat"
	"github.com/recruitkit/talent-scout/internal/logger"
)

const promptExit = "exit"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the talent assistant from the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		runChat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat() {
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

	stack, err := buildApp(ctx, config, logger, false)
	if err != nil {
		logger.Fatal("assembling the application", zap.Error(err))
	}

	session := chat.NewSession()

	fmt.Printf("Describe the role you are hiring for. Type %q to quit.\n", promptExit)

	prompt := promptui.Prompt{Label: "you"}

	for {
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				break
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, promptExit) || strings.EqualFold(input, "quit") {
			break
		}

		result := stack.orchestrator.Handle(ctx, session, input)

		fmt.Printf("\n%s\n", result.Reply)
		for _, candidate := range result.Candidates {
			fmt.Printf("  %d. %s (%s) %.1f%% match\n",
				candidate.Rank, candidate.Name, candidate.Location, candidate.Score*100)
		}
		fmt.Println()
	}

	saveCache(stack.cache, logger)

	logger.Info("chat finished", zap.Int("turns", session.Len()))
}
