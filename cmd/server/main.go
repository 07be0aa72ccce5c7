// Command server runs the CMS backend: public content routes, the admin API,
// and the hardened authentication surface in front of it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"atelier/internal/audit"
	authHandler "atelier/internal/auth/handler"
	authService "atelier/internal/auth/service"
	userStore "atelier/internal/auth/store/user"
	"atelier/internal/auth/token"
	contentHandler "atelier/internal/content/handler"
	contentService "atelier/internal/content/service"
	commentStore "atelier/internal/content/store/comment"
	postStore "atelier/internal/content/store/post"
	"atelier/internal/platform/config"
	"atelier/internal/platform/database"
	"atelier/internal/platform/logger"
	platformRedis "atelier/internal/platform/redis"
	adminHandler "atelier/internal/ratelimit/admin"
	"atelier/internal/ratelimit/limiter"
	"atelier/internal/ratelimit/store/attempt"
	"atelier/internal/ratelimit/store/block"
	"atelier/internal/seeder"
	settingsHandler "atelier/internal/settings/handler"
	settingsService "atelier/internal/settings/service"
	settingsStore "atelier/internal/settings/store"
	httptransport "atelier/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the limiter counters and block records. Without it the
	// in-memory stores keep the auth flow working on a single instance.
	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // best-effort cleanup
	}

	var attempts attempt.Store = attempt.NewMemoryStore()
	var blocks block.Store = block.NewMemoryStore()
	if redisClient != nil {
		attempts = attempt.NewRedisStore(redisClient.Client)
		blocks = block.NewRedisStore(redisClient.Client)
	} else {
		log.Warn("redis not configured, using in-memory rate limit stores")
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // best-effort cleanup
	}

	var (
		users    userStore.Store     = userStore.NewMemoryStore()
		posts    postStore.Store     = postStore.NewMemoryStore()
		comments commentStore.Store  = commentStore.NewMemoryStore()
		settings settingsStore.Store = settingsStore.NewMemoryStore()
	)
	if pool != nil {
		users = userStore.NewPostgresStore(pool.DB())
		posts = postStore.NewPostgresStore(pool.DB())
		comments = commentStore.NewPostgresStore(pool.DB())
		settings = settingsStore.NewPostgresStore(pool.DB())
	} else {
		log.Warn("database not configured, using in-memory stores")
	}

	if err := seeder.EnsureAdmin(ctx, users, log); err != nil {
		return err
	}

	audits := audit.NewPublisher(audit.NewMemoryStore(1000),
		audit.WithLogger(log), audit.WithAsyncBuffer(256))
	defer audits.Close()

	lim, err := limiter.New(attempts, blocks, cfg.Limit, limiter.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build limiter: %w", err)
	}

	tokens, err := token.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("build token service: %w", err)
	}

	auth, err := authService.New(users, tokens, lim,
		authService.WithLogger(log), authService.WithAuditPublisher(audits))
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}

	siteSettings, err := settingsService.New(settings, log)
	if err != nil {
		return fmt.Errorf("build settings service: %w", err)
	}

	postsSvc, err := contentService.NewPosts(posts, contentService.PageConfig{
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
	}, log)
	if err != nil {
		return fmt.Errorf("build posts service: %w", err)
	}

	commentsSvc, err := contentService.NewComments(comments, postsSvc, siteSettings,
		attempts, cfg.Comment, contentService.WithCommentsLogger(log))
	if err != nil {
		return fmt.Errorf("build comments service: %w", err)
	}

	healthChecks := map[string]func(context.Context) error{}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.Health
	}
	if pool != nil {
		healthChecks["database"] = pool.Health
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:              authHandler.NewHandler(auth, cfg.Auth, log),
		Content:           contentHandler.NewHandler(postsSvc, commentsSvc, log),
		Settings:          settingsHandler.NewHandler(siteSettings, log),
		Security:          adminHandler.NewHandler(lim, audits, log),
		SessionValidator:  tokens,
		CookieName:        cfg.Auth.CookieName,
		ThrottlePerMinute: cfg.ThrottlePerMinute,
		HealthChecks:      healthChecks,
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if redisClient != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					redisClient.RecordPoolStats()
				}
			}
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
