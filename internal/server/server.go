// Package server is the reference implementation of the listing API the
// client consumes. It backs integration tests and local development.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homescout/internal/config"
	"homescout/internal/models"
	"homescout/internal/server/handlers"
	"homescout/internal/server/middleware"
	"homescout/internal/server/repository"
	"homescout/internal/server/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run starts the listing API server and blocks until shutdown.
func Run(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	SetupLogger(cfg.Log.Level)

	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret)
	propertyService := services.NewPropertyService(propertyRepo, favoriteRepo)
	mediaService, err := services.NewMediaService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}
	notifier, err := services.NewNotifier(cfg.APNs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create notifier")
	}

	// Messages for offline users become push notifications, best effort.
	hub := services.NewChatHub(func(msg models.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		receiver, err := userRepo.GetByID(ctx, msg.ReceiverID)
		if err != nil || receiver.PushToken == nil {
			return
		}
		if err := notifier.Notify(*receiver.PushToken, "New message", msg.Body); err != nil {
			log.Warn().Err(err).Str("receiver_id", msg.ReceiverID).Msg("Push notification failed")
		}
	})

	r := Router(authService, propertyService, mediaService, hub, messageRepo)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Router assembles the HTTP routes. Split out of Run so tests can mount the
// API on an httptest server.
func Router(
	authService *services.AuthService,
	propertyService *services.PropertyService,
	mediaService *services.MediaService,
	hub *services.ChatHub,
	messages handlers.MessageStore,
) chi.Router {
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	propertyHandler := handlers.NewPropertyHandler(propertyService, mediaService)
	favoriteHandler := handlers.NewFavoriteHandler(propertyService)
	chatHandler := handlers.NewChatHandler(hub, authService, messages)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/firebase", authHandler.Firebase)
		r.Get("/properties", propertyHandler.Search)
		r.Post("/properties/getByIds", propertyHandler.GetByIDs)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))
			r.Get("/users/me", userHandler.Me)
			r.Post("/users/push-token", userHandler.RegisterPushToken)
			r.Put("/auth/profile", authHandler.UpdateProfile)
			r.Get("/properties/favorites", favoriteHandler.List)
			r.Post("/properties/{property_id}/favorite", favoriteHandler.Add)
			r.Delete("/properties/{property_id}/favorite", favoriteHandler.Remove)
			r.Post("/properties/{property_id}/images/upload", propertyHandler.UploadImage)
			r.Get("/messages/{user_id}", chatHandler.Conversation)
		})

		// chi matches the literal /properties/favorites segment before this
		// wildcard.
		r.Get("/properties/{property_id}", propertyHandler.GetByID)
	})

	// WebSocket route
	r.Get("/ws", chatHandler.HandleWebSocket)

	return r
}

// SetupLogger configures the global zerolog logger.
func SetupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
