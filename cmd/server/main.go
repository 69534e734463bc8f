package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/config"
	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/handlers"
	"github.com/myokr/okr-api/internal/logger"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/router"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "okr-api",
		Short:         "MyOKR API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Run database migrations and exit",
			RunE: func(_ *cobra.Command, _ []string) error {
				_, log, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer log.Sync()
				return database.Migrate(db, log)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println(version)
			},
		},
	)
	return root
}

// bootstrap loads configuration, the logger and the database connection.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func serve(ctx context.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Migrate(db, log); err != nil {
		return err
	}

	sessionStore, err := middleware.NewSessionStore(cfg)
	if err != nil {
		return err
	}

	var mail mailer.Mailer
	if cfg.BrevoAPIKey != "" {
		mail = mailer.NewBrevoMailer(cfg.BrevoAPIKey, cfg.MailFromAddress, cfg.MailFromName)
	} else {
		log.Warn("BREVO_API_KEY not set, emails will only be logged")
		mail = mailer.NewLogMailer(log)
	}
	dispatcher := mailer.NewDispatcher(mail, cfg.MailConcurrency, cfg.MailTimeout, log)

	store := repository.NewStore(db)
	tokens := token.NewManager(cfg.JWTSecret, cfg.SessionTTL)

	authService := services.NewAuthService(store, dispatcher, tokens, log)
	inviteService := services.NewInviteService(store, dispatcher, cfg.FrontendURL, log)
	aiService := services.NewAIService(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, log)
	if cfg.AIAPIKey == "" {
		log.Warn("AI_API_KEY not set, suggestions are disabled")
	}

	engine := router.New(router.Options{
		DB:            db,
		Log:           log,
		Sessions:      sessionStore,
		Resolver:      authService,
		ExposeMetrics: true,
	}, router.Handlers{
		Auth:         handlers.NewAuthHandler(authService, middleware.SessionOptions(cfg), log),
		Organization: handlers.NewOrganizationHandler(services.NewOrganizationService(store), log),
		Department:   handlers.NewDepartmentHandler(services.NewDepartmentService(store), log),
		Team:         handlers.NewTeamHandler(services.NewTeamService(store, inviteService, log), log),
		Invite:       handlers.NewInviteHandler(inviteService, log),
		OKR:          handlers.NewOKRHandler(services.NewOKRService(store), log),
		AI:           handlers.NewAIHandler(aiService, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(engine, cfg.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
