package app

import (
	"log/slog"
	"os"

	"ChiefOfStaff/internal/config"
	"ChiefOfStaff/internal/infrastructure/arxiv"
	"ChiefOfStaff/internal/infrastructure/catalog"
	"ChiefOfStaff/internal/infrastructure/forum"
	"ChiefOfStaff/internal/infrastructure/genai"
	"ChiefOfStaff/internal/infrastructure/gmail"
	"ChiefOfStaff/internal/infrastructure/grants"
	"ChiefOfStaff/internal/infrastructure/messagedb"
	"ChiefOfStaff/internal/infrastructure/slack"
	"ChiefOfStaff/internal/infrastructure/telegram"
	"ChiefOfStaff/internal/logging"
	"ChiefOfStaff/internal/ports"
	"ChiefOfStaff/internal/report"
	"ChiefOfStaff/internal/resolver"
	"ChiefOfStaff/internal/retry"
	"ChiefOfStaff/internal/scoring"
	"ChiefOfStaff/internal/source"
	"ChiefOfStaff/internal/usecase"
)

// Application wires configuration into the briefing pipeline and the lookup
// commands.
type Application struct {
	Cfg      config.Config
	Logger   *slog.Logger
	Briefing *usecase.Briefing
	Emitter  *report.Emitter
	Resolver *resolver.Resolver
	Catalog  *catalog.Client
}

// New builds a fully wired application instance. Sources are registered in
// the config order, which fixes the corpus merge order for the run.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	genaiClient := genai.NewClient(cfg.GenAI, cfg.Scoring.Rubric)
	scorer := scoring.NewScorer(genaiClient, baseLogger.With("component", "scorer"))
	filter := scoring.NewRankFilter(cfg.Scoring.Floor, cfg.Scoring.Ceiling)

	registry := source.NewRegistry()
	for _, name := range cfg.Sources.Enabled {
		switch name {
		case "slack":
			registry.Register(slack.NewSource(cfg.Slack.Workspaces, baseLogger.With("component", "source.slack")))
		case "telegram":
			registry.Register(telegram.NewSource(cfg.Telegram.BotToken, baseLogger.With("component", "source.telegram")))
		case "gmail":
			registry.Register(gmail.NewSource(cfg.Gmail.AccessToken, baseLogger.With("component", "source.gmail")))
		case "imessage":
			registry.Register(messagedb.NewSource(cfg.IMessage.DBPath, baseLogger.With("component", "source.imessage")))
		case "forum":
			registry.Register(forum.NewSource(cfg.Forum.URL, cfg.Forum.Keywords, baseLogger.With("component", "source.forum")))
		case "arxiv":
			docs := arxiv.NewSource(cfg.Arxiv.Categories, nil, baseLogger.With("component", "source.arxiv"))
			registry.Register(scoring.NewScoredSource(docs, scorer, filter, "arXiv", baseLogger.With("component", "source.arxiv")))
		case "grants":
			docs := grants.NewSource(cfg.Grants.FeedURL, baseLogger.With("component", "source.grants"))
			registry.Register(scoring.NewScoredSource(docs, scorer, filter, "Grants", baseLogger.With("component", "source.grants")))
		default:
			baseLogger.Warn("unknown source in config", "source", name)
		}
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	briefing := usecase.NewBriefing(usecase.Deps{
		Registry:     registry,
		Summarizer:   genaiClient,
		Retry:        retry.NewPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BackoffSeconds, baseLogger.With("component", "retry")),
		OutputDir:    cfg.Output.Dir,
		Instructions: cfg.GenAI.SystemPrompt,
		Logger:       baseLogger.With("component", "briefing"),
	})

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Category)

	return &Application{
		Cfg:      cfg,
		Logger:   baseLogger,
		Briefing: briefing,
		Emitter:  report.NewEmitter(cfg.Output.Dir, os.Stdout, notifier, baseLogger.With("component", "emitter")),
		Resolver: resolver.New(catalogClient, baseLogger.With("component", "resolver")),
		Catalog:  catalogClient,
	}
}
