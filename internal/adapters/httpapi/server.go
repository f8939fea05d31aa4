// Package httpapi exposes the assistant over HTTP: trigger processing for a
// message, inspect processed records, recent events and counts.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/assistant"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end.
type Server struct {
	processor *assistant.Processor
	store     ports.Store
	srv       *http.Server
	logger    *zap.Logger
}

// NewServer creates the HTTP front end listening on addr.
func NewServer(processor *assistant.Processor, store ports.Store, addr string, logger *zap.Logger) *Server {
	s := &Server{processor: processor, store: store, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api")
	{
		api.POST("/process/:id", s.handleProcess)
		api.GET("/processed", s.handleProcessed)
		api.GET("/events", s.handleEvents)
		api.GET("/counts", s.handleCounts)
	}

	s.srv = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start implements ports.Frontend.
func (s *Server) Start() error {
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop implements ports.Frontend.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleProcess runs the pipeline for one message. An optional event_ref
// query parameter pins the reschedule target explicitly.
func (s *Server) handleProcess(c *gin.Context) {
	messageID := c.Param("id")
	eventRef := c.Query("event_ref")

	outcome, err := s.processor.ProcessMessageWithEvent(c.Request.Context(), messageID, eventRef)
	if err != nil {
		if errors.Is(err, assistant.ErrAlreadyProcessed) {
			c.JSON(http.StatusConflict, gin.H{"error": "message already processed"})
			return
		}
		s.logger.Error("processing failed", zap.String("message_id", messageID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id": messageID,
		"outcome":    string(outcome.Kind),
		"summary":    outcome.Summary(),
	})
}

func (s *Server) handleProcessed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := s.store.ListProcessed(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"message_id":      rec.MessageID,
			"conversation_id": rec.ConversationID,
			"sender":          rec.Sender,
			"subject":         rec.Subject,
			"category":        rec.Category,
			"outcome":         string(rec.Outcome),
			"summary":         rec.Summary,
			"processed_at":    rec.ProcessedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"processed": out})
}

func (s *Server) handleEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	events, err := s.store.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(events))
	for _, ev := range events {
		out = append(out, gin.H{
			"event_ref":       ev.Ref,
			"conversation_id": ev.ConversationID,
			"message_id":      ev.MessageID,
			"start_time":      ev.Window.Start.Format(time.RFC3339),
			"end_time":        ev.Window.End.Format(time.RFC3339),
			"updated_at":      ev.UpdatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (s *Server) handleCounts(c *gin.Context) {
	counts, err := s.store.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
