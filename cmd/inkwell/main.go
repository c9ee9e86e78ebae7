package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/inkwellhq/inkwell/internal/app"
	"github.com/inkwellhq/inkwell/internal/config"
	"github.com/inkwellhq/inkwell/internal/db"
	"github.com/inkwellhq/inkwell/internal/health"
	"github.com/inkwellhq/inkwell/internal/http/handler"
	"github.com/inkwellhq/inkwell/internal/http/router"
	"github.com/inkwellhq/inkwell/internal/observability"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/security"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/tools/common"
	"github.com/inkwellhq/inkwell/internal/tools/smokecheck"
	"github.com/inkwellhq/inkwell/internal/web"
)

func main() {
	var envFile string

	root := &cobra.Command{
		Use:   "inkwell",
		Short: "A small server-rendered blog with cookie session auth",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return common.LoadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file to load")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(smokecheck.NewCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.InitLogging(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return err
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	codec := security.NewTokenCodec(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	cookies := security.CookiePolicy{Secure: cfg.IsProduction()}

	users := repository.NewUserRepository(gdb)
	posts := repository.NewPostRepository(redisClient, "posts")

	authService := service.NewAuthService(users, codec)
	userService := service.NewUserService(users)
	postService := service.NewPostService(posts)
	reader := service.NewSessionReader(codec)
	refresher := service.NewRefreshOrchestrator(cfg.BaseURL)

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	readiness := health.NewProbeRunner(3*time.Second, time.Second)
	readiness.Register(db.Checker(gdb))
	readiness.Register(health.CheckFunc(func(ctx context.Context) health.CheckResult {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return health.CheckResult{Name: "redis", Healthy: false, Error: err.Error()}
		}
		return health.CheckResult{Name: "redis", Healthy: true}
	}))

	h := router.NewRouter(router.Dependencies{
		AuthHandler:     handler.NewAuthHandler(authService, cookies),
		UserHandler:     handler.NewUserHandler(userService),
		PostHandler:     handler.NewPostHandler(postService),
		PageHandler:     handler.NewPageHandler(renderer, reader, userService, postService),
		SessionReader:   reader,
		Refresher:       refresher,
		APIRateLimitRPM: cfg.APIRateLimitRPM,
		Readiness:       readiness,
		EnableOTelHTTP:  cfg.EnableOTelHTTP,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a := app.New(cfg, logger, server, runtime, gdb, redisClient, readiness, func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("close redis", "error", err)
		}
	})
	return a.Run(ctx)
}
