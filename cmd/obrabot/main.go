package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/obralink/obrabot/db"
	"github.com/obralink/obrabot/internal/audit"
	"github.com/obralink/obrabot/internal/config"
	dbpkg "github.com/obralink/obrabot/internal/db"
	"github.com/obralink/obrabot/internal/directory"
	"github.com/obralink/obrabot/internal/engine"
	"github.com/obralink/obrabot/internal/handlers"
	"github.com/obralink/obrabot/internal/llm"
	"github.com/obralink/obrabot/internal/logger"
	"github.com/obralink/obrabot/internal/messenger"
	"github.com/obralink/obrabot/internal/minutes"
	"github.com/obralink/obrabot/internal/projects"
	"github.com/obralink/obrabot/internal/server"
	"github.com/obralink/obrabot/internal/tasks"
	"github.com/obralink/obrabot/internal/tenants"
	"github.com/obralink/obrabot/internal/tools"
	"github.com/obralink/obrabot/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := dbpkg.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideChatClient(log *slog.Logger, cfg config.Config) (*llm.ChatClient, error) {
	return llm.NewChatClient(log,
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
	)
}

func provideRegistry(log *slog.Logger, taskService *tasks.Service, projectService *projects.Service, minuteService *minutes.Service) *tools.Registry {
	return tools.NewDefaultRegistry(log, taskService, projectService, minuteService)
}

func provideLoop(log *slog.Logger, client *llm.ChatClient, registry *tools.Registry) *engine.Loop {
	return engine.NewLoop(log, client, registry)
}

func provideDeliverer(log *slog.Logger, cfg config.Config) (*messenger.Deliverer, error) {
	client, err := messenger.NewClient(log, cfg.Messaging.BaseURL)
	if err != nil {
		return nil, err
	}
	return messenger.NewDeliverer(log, client, cfg.Messaging.SendRatePerSecond), nil
}

func providePipeline(log *slog.Logger, loop *engine.Loop, dir *directory.Service, ten *tenants.Service, deliverer *messenger.Deliverer, auditor *audit.Service) *engine.Pipeline {
	return engine.NewPipeline(log, loop, dir, ten, deliverer, auditor)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, pipeline *engine.Pipeline) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, pipeline,
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
	)
}

type serverParams struct {
	fx.In

	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Handlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting ObraBot %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			migrations, err := db.Migrations()
			if err != nil {
				return fmt.Errorf("load migrations: %w", err)
			}
			if err := dbpkg.RunMigrate(log, cfg.Postgres, migrations, "up", nil); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

// annotateHandler registers a handler provider into the server handler group.
func annotateHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,

			directory.NewService,
			tenants.NewService,
			tasks.NewService,
			projects.NewService,
			minutes.NewService,
			audit.NewService,

			provideChatClient,
			provideRegistry,
			provideLoop,
			provideDeliverer,
			providePipeline,

			annotateHandler(provideWebhookHandler),
			annotateHandler(handlers.NewPingHandler),

			provideServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
		fx.Invoke(startServer),
	).Run()
}
