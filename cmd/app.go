package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai/gemini"
	"github.com/recruitkit/talent-scout/internal/chat"
	"github.com/recruitkit/talent-scout/internal/embedcache"
	"github.com/recruitkit/talent-scout/internal/intent"
	"github.com/recruitkit/talent-scout/internal/respond"
	"github.com/recruitkit/talent-scout/internal/search"
	"github.com/recruitkit/talent-scout/internal/secrets"
	"github.com/recruitkit/talent-scout/internal/talent"
)

const (
	defaultProfilesFile  = "talent_profiles.csv"
	defaultSnapshotFile  = "data/corpus_snapshot.json.gz"
	defaultCacheFile     = "data/embeddings_cache.json.gz"
	defaultListenAddress = ":5000"
	defaultChatTopK      = 5
)

// appStack bundles the assembled application for the commands that need it.
type appStack struct {
	cache        *embedcache.Cache
	corpus       *talent.Corpus
	search       *search.Service
	orchestrator *chat.Orchestrator
}

// buildApp wires the provider, the embedding cache and the corpus into a
// ready search service and chat orchestrator. With rebuild set the corpus is
// re-embedded from the profiles file instead of restored from the snapshot.
func buildApp(ctx context.Context, config *Config, logger *zap.Logger, rebuild bool) (*appStack, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	embedder, generator, err := newAIClient(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai client: %w", err)
	}

	cache := embedcache.New(embedder, config.cacheFile(), logger)
	if err := cache.Load(); err != nil {
		return nil, fmt.Errorf("loading embedding cache: %w", err)
	}

	store := talent.NewStore(config.profilesFile(), config.snapshotFile(), cache, logger)

	var corpus *talent.Corpus
	if rebuild {
		corpus, err = store.Build(ctx)
	} else {
		corpus, err = store.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading talent corpus: %w", err)
	}

	logger.Info("talent corpus ready",
		zap.Int("candidates", corpus.Len()),
		zap.Int("dimension", corpus.Dimension()),
	)

	searchService := search.New(cache, corpus, logger)

	orchestrator := chat.NewOrchestrator(chat.Deps{
		Search:      searchService,
		Analyzer:    intent.NewAnalyzer(generator, logger),
		Synthesizer: respond.NewSynthesizer(generator, logger),
		Logger:      logger,
	}, config.chatTopK())

	return &appStack{
		cache:        cache,
		corpus:       corpus,
		search:       searchService,
		orchestrator: orchestrator,
	}, nil
}

func newAIClient(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Client, *gemini.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	geminiCfg := cfg.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:     apiKey,
		Model:      geminiCfg.Model,
		EmbedModel: geminiCfg.EmbeddingModel,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	// One client serves both capabilities.
	return client, client, nil
}

// saveCache persists the embedding cache; a failure here is worth a warning
// but never aborts the command.
func saveCache(cache *embedcache.Cache, logger *zap.Logger) {
	if err := cache.Save(); err != nil {
		logger.Warn("saving embedding cache", zap.Error(err))
	}
}

func (c *Config) profilesFile() string {
	if c.Data == nil || c.Data.ProfilesFile == "" {
		return defaultProfilesFile
	}
	return c.Data.ProfilesFile
}

func (c *Config) snapshotFile() string {
	if c.Data == nil || c.Data.SnapshotFile == "" {
		return defaultSnapshotFile
	}
	return c.Data.SnapshotFile
}

func (c *Config) cacheFile() string {
	if c.Data == nil || c.Data.EmbeddingCacheFile == "" {
		return defaultCacheFile
	}
	return c.Data.EmbeddingCacheFile
}

func (c *Config) listenAddress() string {
	if c.Server == nil || c.Server.Address == "" {
		return defaultListenAddress
	}
	return c.Server.Address
}

func (c *Config) chatTopK() int {
	if c.Chat == nil || c.Chat.TopK < 1 {
		return defaultChatTopK
	}
	return c.Chat.TopK
}
