package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/promptrooms/promptrooms/internal/chat"
	"github.com/promptrooms/promptrooms/internal/config"
	"github.com/promptrooms/promptrooms/internal/database"
	"github.com/promptrooms/promptrooms/internal/stats"
)

type PromptRoomsApp struct {
	log   *log.Logger
	db    database.ChatRepository
	mux   *http.Server
	chat  *chat.Service
	stats stats.StatsProvider
}

func NewPromptRoomsApp(mux *http.ServeMux, logger *log.Logger, cs *chat.Service, db database.ChatRepository, sp stats.StatsProvider, cfg *config.Config) *PromptRoomsApp {
	s := &PromptRoomsApp{
		log:   logger,
		db:    db,
		chat:  cs,
		stats: sp,
	}

	if sp != nil {
		sp.RegisterMetric(stats.RoomsEnsured)
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.Handle("GET /api/session", s.authMiddleware(s.session))
	mux.Handle("PUT /api/account", s.authMiddleware(s.updateAccount))
	mux.Handle("GET /api/rooms", s.authMiddleware(s.listRooms))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.ensureRoom))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))
	mux.Handle("POST /api/messages", s.authMiddleware(s.sendMessage))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.requestIdHandler(h)
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *PromptRoomsApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *PromptRoomsApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
