// Package server wires the gatherd API routes onto a gin engine.
package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/photon-storage/go-common/log"

	"github.com/tia-gather/gatherd/api/service"
)

// Server defines an instance of a server that handles the requests of
// the gathering frontend.
type Server struct {
	port   int
	engine *gin.Engine
}

// New returns a new instance of the server.
func New(port int, service *service.Service) *Server {
	server := &Server{
		port:   port,
		engine: gin.Default(),
	}

	server.engine.Use(corsMiddleware())
	server.registerRouter(service)
	return server
}

func (s *Server) registerRouter(svc *service.Service) {
	g := s.engine.Group("api")

	g.GET("ping", s.handle(svc.Ping))
	g.GET("config", s.handle(svc.Config))
	g.GET("stats", s.handle(svc.Stats))
	g.GET("pricing", s.handle(svc.Pricing))
	g.GET("pricing/blobs", s.handle(svc.BlobPricing))

	g.GET("gatherings", s.handle(svc.Gatherings))
	g.POST("gatherings", s.handle(svc.CreateGathering))
	g.GET("gatherings/:gathering_id", s.handle(svc.Gathering))
	g.POST("gatherings/:gathering_id/contribute", s.handle(svc.Contribute))
	g.GET(
		"gatherings/:gathering_id/contributions",
		s.handle(svc.Contributions),
	)
	g.GET("recent-contributions", s.handle(svc.RecentContributions))

	g.GET("user/:address/gatherings", s.handle(svc.UserGatherings))
	g.GET("user/:address/contributions", s.handle(svc.UserContributions))

	g.GET("celestia/balance/:address", s.handle(svc.CelestiaBalance))
	g.GET("celestia/account/:address", s.handle(svc.CelestiaAccount))
	g.POST("celestia/broadcast", s.handle(svc.CelestiaBroadcast))

	g.POST("blobs/upload", s.handle(svc.UploadBlob))
	g.GET("blobs/:blob_id", s.handle(svc.Blob))
}

// corsMiddleware lets the wallet-connected frontend call the API from
// another origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Run the server
func (s *Server) Run() {
	if err := s.engine.Run(fmt.Sprintf(":%d", s.port)); err != nil {
		log.Error("run the server failed", "error", err)
		os.Exit(1)
	}
}
