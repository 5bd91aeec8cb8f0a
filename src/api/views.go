package api

import (
	"net/http"
	"time"

	handlers "stockbot/src/api/handlers"
	"stockbot/src/api/middleware"

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

	s.Router.Route("/api/guilds/{guildID}", func(r chi.Router) {
		r.Get("/leaderboard", s.Handler.GetLeaderboard)

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", s.Handler.GetRoleConfigs)
			r.Put("/", s.Handler.PutRoleConfig)
			r.Delete("/{roleID}", s.Handler.DeleteRoleConfig)
			r.Post("/evaluate/{userID}", s.Handler.EvaluateRoles)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.Handler.GetUser)
			r.Put("/balance", s.Handler.AdjustBalance)
			r.Put("/shares/{assetID}", s.Handler.AdjustShares)
			r.Post("/donate", s.Handler.Donate)

			r.Get("/portfolio", s.Handler.GetPortfolio)
			r.Get("/networth", s.Handler.GetNetWorth)
			r.Get("/holdings", s.Handler.GetHoldings)
			r.Get("/gain/{assetID}", s.Handler.GetGain)
			r.Get("/worth", s.Handler.GetWorthSeries)
			r.Get("/worth/chart", s.Handler.GetWorthChart)
			r.Get("/worth/export", s.Handler.ExportWorth)
			r.Get("/ledger/verify", s.Handler.VerifyLedger)

			r.Get("/trades", s.Handler.GetTrades)
			r.Post("/trades", s.Handler.Trade)
			r.Post("/buyall", s.Handler.BuyAll)
			r.Post("/liquidate", s.Handler.Liquidate)
		})
	})

	s.Router.Route("/api/assets", func(r chi.Router) {
		r.Get("/", s.Handler.SearchAssets)
		r.Get("/{assetID}", s.Handler.GetAsset)
		r.Get("/{assetID}/price", s.Handler.GetAssetPrice)
		r.Get("/{assetID}/chart", s.Handler.GetAssetChart)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
