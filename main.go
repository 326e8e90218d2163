package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"campusmatch/cache"
	"campusmatch/config"
	"campusmatch/handlers"
	"campusmatch/logger"
	"campusmatch/middleware"
	"campusmatch/seed"
	"campusmatch/services"
	"campusmatch/store"
)

func main() {
	logger.InitFromEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := store.Connect(ctx, cfg)
	if err != nil {
		logger.Error("mongodb connection failed", "err", err)
		os.Exit(1)
	}
	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", "err", err)
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup, caching degraded", "err", err)
	}

	// Stores
	userStore := store.NewUserStore(db)
	crushStore := store.NewCrushStore(db)
	dislikeStore := store.NewDislikeStore(db)
	proposeStore := store.NewProposeStore(db)
	matchStore := store.NewMatchStore(db)
	adminStore := store.NewAdminStore(db)
	tempRegisterStore := store.NewTempRegisterStore(db)

	// Bootstrap data
	if err := seed.EnsureAdmin(ctx, adminStore); err != nil {
		logger.Error("failed to create bootstrap admin", "err", err)
		os.Exit(1)
	}
	if cfg.SeedDemoData {
		if err := seed.DemoUsers(ctx, userStore); err != nil {
			logger.Warn("demo seeding failed", "err", err)
		}
	}

	// Services
	jwtTTL := time.Duration(cfg.JWTExpiresHours) * time.Hour
	quota := services.NewQuotaTracker(userStore, cfg.ResetLocation)
	userService := services.NewUserService(userStore, redisCache, cfg.JWTSecret, jwtTTL)
	crushService := services.NewCrushService(crushStore, matchStore, userStore, quota, redisCache)
	proposeService := services.NewProposeService(proposeStore, matchStore, userStore, quota)
	dislikeService := services.NewDislikeService(dislikeStore, userStore, quota)
	feedService := services.NewFeedService(userStore, dislikeStore)
	matchService := services.NewMatchService(matchStore, userStore)
	adminService := services.NewAdminService(adminStore, userStore, crushStore, proposeStore, matchStore, redisCache, cfg.JWTSecret, jwtTTL)
	registerService := services.NewRegisterService(tempRegisterStore, userService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	crushHandler := handlers.NewCrushHandler(crushService)
	proposeHandler := handlers.NewProposeHandler(proposeService)
	dislikeHandler := handlers.NewDislikeHandler(dislikeService)
	feedHandler := handlers.NewFeedHandler(feedService)
	matchHandler := handlers.NewMatchHandler(matchService)
	adminHandler := handlers.NewAdminHandler(adminService)
	registerHandler := handlers.NewRegisterHandler(registerService)
	healthHandler := handlers.NewHealthHandler(db.Client(), redisCache)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(redisCache, cfg.RateLimitMax, cfg.RateLimitWindow))

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public auth routes
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")

	// Public multi-step registration routes
	registerRouter := api.PathPrefix("/register").Subrouter()
	registerRouter.HandleFunc("/start", registerHandler.Start).Methods("POST", "OPTIONS")
	registerRouter.HandleFunc("/{id}/status", registerHandler.Status).Methods("GET", "OPTIONS")
	registerRouter.HandleFunc("/{id}/data", registerHandler.Data).Methods("GET", "OPTIONS")
	registerRouter.HandleFunc("/{id}/step", registerHandler.SaveStep).Methods("POST", "OPTIONS")
	registerRouter.HandleFunc("/{id}/complete", registerHandler.Complete).Methods("POST", "OPTIONS")

	// Authenticated user routes
	userAPI := api.PathPrefix("").Subrouter()
	userAPI.Use(middleware.JWTMiddleware(cfg.JWTSecret, "user"))

	userAPI.HandleFunc("/users/me", userHandler.GetMe).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PATCH", "OPTIONS")
	userAPI.HandleFunc("/users/me", userHandler.DeleteMe).Methods("DELETE", "OPTIONS")
	userAPI.HandleFunc("/users/me/password", authHandler.UpdatePassword).Methods("PATCH", "OPTIONS")
	userAPI.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET", "OPTIONS")

	userAPI.HandleFunc("/feed", feedHandler.GetFeed).Methods("GET", "OPTIONS")

	userAPI.HandleFunc("/crushes", crushHandler.AddCrush).Methods("POST", "OPTIONS")
	userAPI.HandleFunc("/crushes/my", crushHandler.MyCrushes).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/crushes/my/count", crushHandler.InboundCount).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/crushes/{targetID}", crushHandler.CancelCrush).Methods("DELETE", "OPTIONS")

	userAPI.HandleFunc("/proposes", proposeHandler.CreatePropose).Methods("POST", "OPTIONS")
	userAPI.HandleFunc("/proposes/sent", proposeHandler.SentProposes).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/proposes/received", proposeHandler.ReceivedProposes).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/proposes/{id}", proposeHandler.RespondPropose).Methods("PATCH", "OPTIONS")
	userAPI.HandleFunc("/proposes/{id}", proposeHandler.CancelPropose).Methods("DELETE", "OPTIONS")

	userAPI.HandleFunc("/dislikes", dislikeHandler.AddDislike).Methods("POST", "OPTIONS")
	userAPI.HandleFunc("/dislikes/my", dislikeHandler.RecentDislikes).Methods("GET", "OPTIONS")
	userAPI.HandleFunc("/dislikes/{targetID}", dislikeHandler.RemoveDislike).Methods("DELETE", "OPTIONS")

	userAPI.HandleFunc("/matches/my", matchHandler.MyMatches).Methods("GET", "OPTIONS")

	// Admin routes
	api.HandleFunc("/admins/login", adminHandler.Login).Methods("POST", "OPTIONS")

	adminAPI := api.PathPrefix("/admins").Subrouter()
	adminAPI.Use(middleware.JWTMiddleware(cfg.JWTSecret, "admin"))
	adminAPI.HandleFunc("/pending-users", adminHandler.PendingUsers).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/users", userHandler.ListUsers).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/users/{id}/approve", adminHandler.ApproveUser).Methods("PATCH", "OPTIONS")
	adminAPI.HandleFunc("/users/{id}/reject", adminHandler.RejectUser).Methods("PATCH", "OPTIONS")
	adminAPI.HandleFunc("/stats", adminHandler.Stats).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/crushes", crushHandler.ListCrushes).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/crushes/count", crushHandler.CountCrushes).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/proposes", proposeHandler.ListProposes).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/proposes/count", proposeHandler.CountProposes).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/matches", matchHandler.ListMatches).Methods("GET", "OPTIONS")
	adminAPI.HandleFunc("/matches/count", matchHandler.CountMatches).Methods("GET", "OPTIONS")

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	logger.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
