package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/transformer/internal/asset"
	"github.com/inamate/transformer/internal/auth"
	"github.com/inamate/transformer/internal/config"
	mw "github.com/inamate/transformer/internal/middleware"
	"github.com/inamate/transformer/internal/session"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/typeid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level, err := cfg.Level()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           charmlog.Level(level),
	})))

	opts := config.DefaultOptions()
	if cfg.OptionsFile != "" {
		opts, err = config.LoadOptions(cfg.OptionsFile)
		if err != nil {
			slog.Error("load options", "error", err, "file", cfg.OptionsFile)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snapshots store.Store = store.NewMemory()
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		snapshots = pg
	} else {
		slog.Warn("DATABASE_URL not set, snapshots are kept in memory")
	}
	defer snapshots.Close()

	textures := texture.NewCache(cfg.TextureCacheSize)

	hub := session.NewHub(session.HubConfig{
		Store:    snapshots,
		Options:  opts,
		Textures: textures,
		Logger:   slog.Default(),
	})
	go hub.Run()

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	assetHandler := asset.NewHandler(textures, hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/textures/{id}", assetHandler.Texture).Methods("GET")

	api := r.PathPrefix("/sessions").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("", createSession).Methods("POST")
	api.HandleFunc("/{sessionId}/render.png", assetHandler.Render).Methods("GET")

	r.HandleFunc("/ws/session/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so every open session saves its scene
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func createSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"sessionId": typeid.NewSessionID()})
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, authSvc *auth.Service, origins []string) {
	sessionID := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(sessionID, typeid.PrefixSession); err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	user, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := session.NewClient(hub, conn, user.ID, user.DisplayName, sessionID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
