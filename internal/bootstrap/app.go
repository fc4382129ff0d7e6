package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"audit-backend/internal/audits"
	"audit-backend/internal/leads"
	"audit-backend/internal/llm"
	"audit-backend/internal/llm/gemini"
	"audit-backend/internal/services/health"
	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/server"
	"audit-backend/internal/shared/telemetry"
	"audit-backend/internal/sitesnap"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	Completer     llm.Completer
	Snapshotter   audits.PageSnapshotter
	AuditsService *audits.Service
	LeadsService  *leads.Service
	AuditHandler  *audits.Handler
	LeadHandler   *leads.Handler
	Health        *health.Service
}

// Build wires config into services, handlers and the router. A missing Gemini
// key is not fatal: the server starts and every audit fails with a
// configuration error.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return BuildWith(cfg, completer), nil
}

// BuildWith wires the app around an existing completer.
func BuildWith(cfg config.Config, completer llm.Completer) *App {
	app := &App{
		Config:      cfg,
		Completer:   completer,
		Snapshotter: buildSnapshotter(cfg),
	}
	app.AuditsService = audits.NewService(app.Completer, app.Snapshotter)
	app.LeadsService = leads.NewService()
	app.AuditHandler = audits.NewHandler(app.AuditsService)
	app.LeadHandler = leads.NewHandler(app.LeadsService)
	app.Health = health.NewService(cfg.HasGeminiKey(), cfg.GeminiModel, cfg.SnapshotEnabled)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		Health:       app.Health,
		AuditHandler: app.AuditHandler,
		LeadHandler:  app.LeadHandler,
	})
	return app
}

// NewAnalyzer builds an in-process analyzer for the CLI.
func NewAnalyzer(ctx context.Context, cfg config.Config) (*audits.Service, error) {
	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return audits.NewService(completer, buildSnapshotter(cfg)), nil
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	if !cfg.HasGeminiKey() {
		telemetry.Warn("bootstrap.gemini_unconfigured", map[string]any{
			"message": "GEMINI_API_KEY is empty; audits will fail with a configuration error",
		})
		return llm.UnconfiguredClient{}, nil
	}
	opts := []gemini.Option{gemini.WithTimeout(cfg.GeminiTimeout)}
	if cfg.GeminiBaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "bootstrap: gemini client")
	}
	telemetry.Info("bootstrap.gemini_ready", map[string]any{"model": client.Model()})
	return client, nil
}

func buildSnapshotter(cfg config.Config) audits.PageSnapshotter {
	if !cfg.SnapshotEnabled {
		return nil
	}
	return sitesnap.NewFetcher(sitesnap.WithTimeout(cfg.SnapshotTimeout))
}
