package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/rgcsekaraa/todorama/internal/auth"
	"github.com/rgcsekaraa/todorama/internal/config"
	"github.com/rgcsekaraa/todorama/internal/database"
	"github.com/rgcsekaraa/todorama/internal/handlers"
	"github.com/rgcsekaraa/todorama/internal/middleware"
	"github.com/rgcsekaraa/todorama/internal/models"
	"github.com/rgcsekaraa/todorama/internal/monitoring"
	"github.com/rgcsekaraa/todorama/internal/repositories"
	"github.com/rgcsekaraa/todorama/internal/services"
)

// Application holds all application dependencies and state
type Application struct {
	Config   *config.Config
	DB       *database.Pool
	Redis    *redis.Client
	Verifier *auth.Verifier
	Provider auth.IdentityProvider
	Router   *gin.Engine
	Server   *http.Server

	TodoService services.TodoService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, config.ErrMissingAuthSecret) {
			log.Fatalf("❌ Fatal configuration error: %v", err)
		}
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Todorama backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool
	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  Redis unavailable: %v (falling back to per-instance rate limiting)", err)
		} else {
			app.Redis = redisClient
			log.Println("✅ Redis connected")
		}
	}

	verifier, err := auth.NewVerifier(cfg.Auth.Secret)
	if err != nil {
		return nil, fmt.Errorf("session verifier setup failed: %w", err)
	}
	app.Verifier = verifier

	app.Provider = newIdentityProvider(cfg)
	app.TodoService = services.NewTodoService()
	log.Println("✅ All services initialized")

	monitoring.RegisterHealthCheck("database", app.DB.Health)
	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	return app, nil
}

// newIdentityProvider returns the OAuth boundary adapter. Outside production
// a static provider accepts the "dev" code so the app is usable without a
// real provider; production deployments swap in their adapter here.
func newIdentityProvider(cfg *config.Config) auth.IdentityProvider {
	users := map[string]models.SessionUser{}
	if !cfg.IsProduction() {
		users["dev"] = models.SessionUser{
			ID:    "dev-user",
			Name:  "Dev User",
			Email: "dev@localhost",
		}
	}
	return &auth.StaticProvider{Users: users}
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis, app.Config.RateLimit.RequestsPerMin, time.Minute)
		r.Use(limiter.Middleware())
	} else {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	// Pages
	pageHandler, err := handlers.NewPageHandler()
	if err != nil {
		log.Fatalf("❌ Failed to load page templates: %v", err)
	}
	r.GET("/", pageHandler.Landing)
	r.GET("/dashboard",
		middleware.RequireSessionPage(app.Verifier, app.Config.Auth.CookieName, "/"),
		pageHandler.Dashboard)

	api := r.Group("/api")

	// Session routes (sign-in callback and sign-out are public)
	sessionHandler := handlers.NewSessionHandler(
		app.Verifier, app.Provider,
		app.Config.Auth.CookieName, app.Config.Auth.SessionTTL,
		app.Config.IsProduction())
	api.POST("/auth/callback", sessionHandler.Callback)
	api.POST("/auth/signout", sessionHandler.SignOut)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.RequireSession(app.Verifier, app.Config.Auth.CookieName))
	{
		protected.GET("/me", sessionHandler.Me)

		todoHandler := handlers.NewTodoHandler(app.DB.DB, app.TodoService)
		todoRoutes := protected.Group("/todos")
		{
			todoRoutes.GET("", todoHandler.ListTodos)
			todoRoutes.POST("", todoHandler.CreateTodo)
			todoRoutes.PUT("/:id", todoHandler.UpdateTodo)
			todoRoutes.DELETE("/:id", todoHandler.DeleteTodo)
		}
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
