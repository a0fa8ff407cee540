// wamock stands in for the messaging client during local development. It
// answers the deep-links the opener launches and keeps what it received.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ReceivedMessage is one link the mock was asked to open.
type ReceivedMessage struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Inbox keeps the most recent messages in arrival order.
type Inbox struct {
	mu       sync.RWMutex
	messages []ReceivedMessage
	limit    int
}

func NewInbox(limit int) *Inbox {
	return &Inbox{limit: limit}
}

func (i *Inbox) Add(m ReceivedMessage) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, m)
	if i.limit > 0 && len(i.messages) > i.limit {
		i.messages = i.messages[len(i.messages)-i.limit:]
	}
}

func (i *Inbox) List(phone string) []ReceivedMessage {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]ReceivedMessage, 0, len(i.messages))
	for _, m := range i.messages {
		if phone == "" || m.Phone == phone {
			out = append(out, m)
		}
	}
	return out
}

func (i *Inbox) Reset() {
	i.mu.Lock()
	i.messages = nil
	i.mu.Unlock()
}

type Handler struct {
	inbox *Inbox
}

func NewHandler(inbox *Inbox) *Handler {
	return &Handler{inbox: inbox}
}

// Open handles /<phone>?text=<text>, the shape of a wa.me link.
func (h *Handler) Open(c *gin.Context) {
	phone := c.Param("phone")
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	msg := ReceivedMessage{
		ID:         uuid.NewString(),
		Phone:      phone,
		Text:       text,
		ReceivedAt: time.Now(),
	}
	h.inbox.Add(msg)

	log.Info().
		Str("id", msg.ID).
		Str("phone", phone).
		Int("length", len(text)).
		Msg("link opened")

	c.JSON(http.StatusOK, msg)
}

func (h *Handler) ListInbox(c *gin.Context) {
	messages := h.inbox.List(c.Query("phone"))
	c.JSON(http.StatusOK, gin.H{"items": messages, "total": len(messages)})
}

func (h *Handler) ResetInbox(c *gin.Context) {
	h.inbox.Reset()
	c.Status(http.StatusNoContent)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	router.GET("/health", handler.HealthCheck)
	router.GET("/inbox", handler.ListInbox)
	router.DELETE("/inbox", handler.ResetInbox)
	router.GET("/:phone", handler.Open)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := getEnv("WAMOCK_LISTEN_ADDR", ":8090")
	gin.SetMode(gin.ReleaseMode)

	router := SetupRouter(NewHandler(NewInbox(500)))

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("messaging mock started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
