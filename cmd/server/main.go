package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/assistant"
	"github.com/hrdesk/leave-assistant/internal/chat"
	"github.com/hrdesk/leave-assistant/internal/config"
	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/httpapi"
	"github.com/hrdesk/leave-assistant/internal/ledger"
	"github.com/hrdesk/leave-assistant/internal/policy"
	"github.com/hrdesk/leave-assistant/pkg/utils"
)

func main() {
	// Load .env before config so env overrides are visible to viper.
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting leave assistant",
		zap.Int("port", cfg.Server.Port),
		zap.String("chat_mode", cfg.Chat.Mode))

	store, err := ledger.Open(cfg.Storage.WorkbookPath, ledger.RetryPolicy{
		MaxAttempts: cfg.Storage.MaxRetries,
		Backoff:     cfg.Storage.RetryBackoff,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open leave workbook", zap.Error(err))
	}

	pol := policy.LoadFromPDF(cfg.Policy.RulesPDF, logger)

	calendar := dates.NewCalendar(cfg.Policy.PublicHolidays)
	resolver := dates.NewResolver(calendar, logger)
	validator := policy.NewValidator(pol, calendar)

	var answerer assistant.Answerer = assistant.StaticAnswerer{}
	if cfg.Assistant.APIKey != "" {
		answerer = assistant.NewOpenAIAnswerer(
			cfg.Assistant.APIKey,
			cfg.Assistant.Model,
			cfg.Assistant.Temperature,
			logger,
		)
	} else {
		logger.Warn("No OpenAI API key configured, general questions get canned replies")
	}

	var bot chat.Bot
	switch cfg.Chat.Mode {
	case "classic":
		bot = chat.NewClassicBot(store, resolver, validator, pol, answerer, logger)
	default:
		bot = chat.NewSessionBot(store, chat.NewSessionStore(), resolver, validator, pol, answerer, logger)
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, bot, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
