package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/config"
	"recipebox/internal/database"
	"recipebox/internal/handlers"
	"recipebox/internal/jobs"
	"recipebox/internal/logging"
	"recipebox/internal/middleware"
	"recipebox/internal/services"
	"recipebox/internal/telemetry"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.IsDevelopment())

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	if err := middleware.InitMetrics(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize metrics")
	}

	if err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to run migrations")
	}

	jobsClient, err := jobs.NewClient(cfg.RedisURL)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to create jobs client")
	}
	defer jobsClient.Close()

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("invalid redis url")
	}
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiresIn)
	userService := services.NewUserService()
	tagService := services.NewTagService()
	ingredientService := services.NewIngredientService()
	recipeService := services.NewRecipeService()
	relationService := services.NewRelationService()
	subscriptionService := services.NewSubscriptionService()
	shoppingListService := services.NewShoppingListService()

	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService, subscriptionService)
	tagHandler := handlers.NewTagHandler(tagService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, relationService, shoppingListService, userService, jobsClient)
	healthHandler := handlers.NewHealthHandler(inspector)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(otelecho.Middleware(cfg.OTelServiceName))
	e.Use(middleware.Metrics())

	registerRoutes(e, cfg, authHandler, userHandler, tagHandler, ingredientHandler, recipeHandler, healthHandler)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Fatal().Err(err).Msg("server failed")
		}
	}()

	logging.Logger().Info().Str("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("server shutdown failed")
	}
}

func registerRoutes(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tagHandler *handlers.TagHandler,
	ingredientHandler *handlers.IngredientHandler,
	recipeHandler *handlers.RecipeHandler,
	healthHandler *handlers.HealthHandler,
) {
	requireAuth := middleware.JWTAuth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalJWTAuth(cfg.JWTSecret)

	api := e.Group("/api")

	api.GET("/health", healthHandler.Check)

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout, requireAuth)
	api.GET("/user", authHandler.Me, requireAuth)
	api.PATCH("/user", userHandler.UpdateMe, requireAuth)

	users := api.Group("/users")
	users.GET("/subscriptions", userHandler.ListSubscriptions, requireAuth)
	users.GET("/:id", userHandler.Get, optionalAuth)
	users.POST("/:id/subscribe", userHandler.Subscribe, requireAuth)
	users.DELETE("/:id/subscribe", userHandler.Unsubscribe, requireAuth)

	tags := api.Group("/tags")
	tags.GET("", tagHandler.List)
	tags.GET("/:id", tagHandler.Get)

	ingredients := api.Group("/ingredients")
	ingredients.GET("", ingredientHandler.List)
	ingredients.GET("/:id", ingredientHandler.Get)

	recipes := api.Group("/recipes")
	recipes.GET("", recipeHandler.List, optionalAuth)
	recipes.POST("", recipeHandler.Create, requireAuth)
	recipes.GET("/download_shopping_cart", recipeHandler.DownloadShoppingCart, requireAuth)
	recipes.GET("/:id", recipeHandler.Get, optionalAuth)
	recipes.PATCH("/:id", recipeHandler.Update, requireAuth)
	recipes.DELETE("/:id", recipeHandler.Delete, requireAuth)
	recipes.POST("/:id/favorite", recipeHandler.Favorite, requireAuth)
	recipes.DELETE("/:id/favorite", recipeHandler.Unfavorite, requireAuth)
	recipes.POST("/:id/shopping_cart", recipeHandler.AddToCart, requireAuth)
	recipes.DELETE("/:id/shopping_cart", recipeHandler.RemoveFromCart, requireAuth)
}
