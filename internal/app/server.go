package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aakhterov/github-repo-analyzer/internal/api/handlers"
	"github.com/aakhterov/github-repo-analyzer/internal/config"
	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config,
	assistantSvc *services.AssistantService,
	ingestSvc *services.IngestService,
	conversationSvc *services.ConversationService,
	runner *services.Runner) *Server {

	assistantHandler := handlers.NewAssistantHandler(assistantSvc)
	repoHandler := handlers.NewRepoHandler(ingestSvc, runner)
	conversationHandler := handlers.NewConversationHandler(conversationSvc, runner)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/assistant/create", assistantHandler.Create)
		api.Post("/repo/process", repoHandler.Process)
		api.Post("/repo/check", repoHandler.Check)
		api.Post("/conversation/message", conversationHandler.Message)
		api.Post("/conversation/result", conversationHandler.Result)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
