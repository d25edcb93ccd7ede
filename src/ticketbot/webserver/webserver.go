// Package webserver exposes a small operational HTTP surface: liveness
// and per-guild ticket statistics.
package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
)

type Server struct {
	store    *data.Store
	sessions *lifecycle.SessionStore
	srv      *http.Server
}

func New(addr string, store *data.Store, sessions *lifecycle.SessionStore) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:    store,
		sessions: sessions,
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	router.GET("/healthz", s.healthz)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/guilds/:id/stats", s.guildStats)
		v1.GET("/guilds/:id/ratings", s.guildRatings)
	}
	return s
}

func (s *Server) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"setup_sessions": s.sessions.Len(),
	})
}

func (s *Server) guildStats(c *gin.Context) {
	stats, err := s.store.TicketStats(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"open":       stats.Open,
		"closed":     stats.Closed,
		"categories": stats.Categories,
	})
}

func (s *Server) guildRatings(c *gin.Context) {
	since := time.Now().UTC().AddDate(0, 0, -30)
	stats, err := s.store.RatingStatsSince(c.Param("id"), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ratings unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window_days": 30,
		"average":     stats.Average,
		"count":       stats.Count,
	})
}
