// Package server exposes crawl status and a trigger over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/status"
)

// Crawler runs one full crawl.
type Crawler interface {
	Run(ctx context.Context) ([]models.RunSummary, error)
}

type Server struct {
	tracker *status.Tracker
	crawler Crawler
	// base is the context crawls run under; cancelling it stops a running crawl.
	base   context.Context
	logger arbor.ILogger

	mu   sync.Mutex
	done chan struct{}
}

func New(base context.Context, tracker *status.Tracker, crawler Crawler, logger arbor.ILogger) *Server {
	return &Server{tracker: tracker, crawler: crawler, base: base, logger: logger}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.health)
	r.GET("/runs/current", s.current)
	r.POST("/runs", s.start)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Job search automation API is running!",
		"status":  "healthy",
	})
}

func (s *Server) current(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) start(c *gin.Context) {
	if !s.tracker.TryStart() {
		c.JSON(http.StatusConflict, gin.H{"error": "a crawl is already running"})
		return
	}

	crawlID := uuid.NewString()
	logger := s.logger.WithCorrelationId(crawlID)
	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		logger.Info().Msg("Crawl started")
		summaries, err := s.crawler.Run(s.base)
		s.tracker.Done(err)
		if err != nil {
			logger.Error().Err(err).Int("runs", len(summaries)).Msg("Crawl ended with error")
			return
		}
		logger.Info().Int("runs", len(summaries)).Msg("Crawl finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{"crawl_id": crawlID, "status": "started"})
}

// Wait blocks until the most recently started crawl returns.
func (s *Server) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}
