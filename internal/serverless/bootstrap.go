package serverless

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
	"github.com/AnshRaj112/soloura-backend/internal/config"
	"github.com/AnshRaj112/soloura-backend/internal/handlers"
	"github.com/AnshRaj112/soloura-backend/internal/logging"
)

// Runtime is what a Lambda cold start builds once and reuses across invocations.
type Runtime struct {
	Config   *config.Config
	Logger   *zap.Logger
	Analysis *handlers.AnalysisHandler
}

// Bootstrap loads configuration from the environment and wires the AI adapters to the
// Gemini completer.
func Bootstrap(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.IsProduction(), false)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	var completer ai.Completer = ai.Unavailable{}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; AI analysis is disabled")
	} else {
		gc, err := ai.NewGenAICompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("create completer: %w", err)
		}
		completer = gc
	}
	adapters := ai.NewAdapters(completer, nil, logger)
	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Analysis: handlers.NewAnalysisHandler(adapters, logger),
	}, nil
}
