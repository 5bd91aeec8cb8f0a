package worker

import (
	"net/http"
	"time"

	"stockbot/src/api/middleware"
	handlers "stockbot/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(handler *handlers.Handler, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.Router.Use(middleware.RequestLogger(logger))
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.Handler.ListSchedules)
		r.Post("/prices", s.Handler.RefreshPrices)
		r.Post("/roles", s.Handler.RecomputeRoles)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
