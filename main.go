package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelscout/api"
	"reelscout/config"
	"reelscout/handlers"
	"reelscout/internal/database"
	"reelscout/services/accounts"
	"reelscout/services/favorites"
	"reelscout/services/metadata"
	"reelscout/services/ratings"
	"reelscout/services/recommend"
	"reelscout/services/sessions"
	"reelscout/services/watchlist"
	"reelscout/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("[main] failed to create data dir %s: %v", cfg.DataDir, err)
	}
	setupLogging(cfg.LogFile)

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] failed to initialize accounts: %v", err)
	}
	sessionsSvc, err := sessions.NewService(cfg.DataDir, cfg.SessionDuration)
	if err != nil {
		log.Fatalf("[main] failed to initialize sessions: %v", err)
	}

	metadataSvc := metadata.NewService(cfg.TMDBAPIKey, cfg.TMDBLanguage, cfg.MetadataTTL)
	favoritesSvc := favorites.NewService(db.Favorites, metadataSvc)
	ratingsSvc := ratings.NewService(db.Ratings, metadataSvc)
	watchlistSvc := watchlist.NewService(db.Watchlist, metadataSvc)
	recommendSvc := recommend.NewService(metadataSvc, favoritesSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Genre maps are fetched once at startup. A provider outage here is
	// logged and tolerated; enrichment falls back to empty genre lists.
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	metadataSvc.Initialize(initCtx)
	cancel()

	r := utils.NewRouter()
	r.HandleFunc("/api/version", handlers.NewVersionHandler().GetVersion).Methods(http.MethodGet)

	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)
	loginLimiter := api.NewIPRateLimiter(rate.Every(6*time.Second), 10)
	r.HandleFunc("/api/auth/login", api.RateLimit(loginLimiter, authHandler.Login)).Methods(http.MethodPost, http.MethodOptions)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(api.AccountAuthMiddleware(sessionsSvc, accountsSvc))

	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/auth/reset-api-key", authHandler.ResetAPIKey).Methods(http.MethodPost, http.MethodOptions)

	metadataHandler := handlers.NewMetadataHandler(metadataSvc)
	authed.HandleFunc("/metadata/trending/{mediaType}", metadataHandler.Trending).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/metadata/search", metadataHandler.Search).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/metadata/details/{mediaType}/{id}", metadataHandler.Details).Methods(http.MethodGet, http.MethodOptions)

	users := authed.PathPrefix("/users/{userID}").Subrouter()
	users.Use(api.UserOwnershipMiddleware())

	favoritesHandler := handlers.NewFavoritesHandler(favoritesSvc, accountsSvc)
	users.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet, http.MethodOptions)
	users.HandleFunc("/favorites", favoritesHandler.Add).Methods(http.MethodPost)
	users.HandleFunc("/favorites/{favoriteID}", favoritesHandler.Update).Methods(http.MethodPatch, http.MethodOptions)
	users.HandleFunc("/favorites/{favoriteID}", favoritesHandler.Remove).Methods(http.MethodDelete)

	ratingsHandler := handlers.NewRatingsHandler(ratingsSvc, accountsSvc)
	users.HandleFunc("/ratings", ratingsHandler.List).Methods(http.MethodGet, http.MethodOptions)
	users.HandleFunc("/ratings", ratingsHandler.Set).Methods(http.MethodPut)
	users.HandleFunc("/ratings/{ratingID}", ratingsHandler.Remove).Methods(http.MethodDelete, http.MethodOptions)

	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc, accountsSvc)
	users.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet, http.MethodOptions)
	users.HandleFunc("/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	users.HandleFunc("/watchlist/{mediaType}/{id}", watchlistHandler.Remove).Methods(http.MethodDelete, http.MethodOptions)

	recommendationsHandler := handlers.NewRecommendationsHandler(recommendSvc, accountsSvc)
	users.HandleFunc("/recommendations", recommendationsHandler.ForUser).Methods(http.MethodGet, http.MethodOptions)

	accountsHandler := handlers.NewAccountsHandler(accountsSvc)
	// Rename is admin-or-self and must be registered before the admin
	// subrouter so its prefix match does not swallow the route.
	authed.HandleFunc("/accounts/{accountID}/rename", accountsHandler.Rename).Methods(http.MethodPost, http.MethodOptions)
	admin := authed.PathPrefix("/accounts").Subrouter()
	admin.Use(api.AdminOnlyMiddleware())
	admin.HandleFunc("", accountsHandler.List).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("", accountsHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{accountID}", accountsHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

// setupLogging sends logs to stderr and, when configured, a rotating file.
func setupLogging(logFile string) {
	if logFile == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
