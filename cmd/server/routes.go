// Package main provides the leadbot server entry point.
package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hazemdh/leadbot-go/internal/chatbot"
	"github.com/hazemdh/leadbot-go/internal/config"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/metrics"
	"github.com/hazemdh/leadbot-go/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fixed user-facing bodies for the chat endpoint.
const (
	invalidMessageBody = "Message invalide."
	maintenanceBody    = "Le chatbot est en maintenance. Veuillez réessayer plus tard."
)

// chatRequest is the inbound chat endpoint payload.
type chatRequest struct {
	Message string `json:"message"`
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, cfg *config.Config, engine *chatbot.Engine, db *storage.DB, m *metrics.Metrics, registry *prometheus.Registry, log *logger.Logger) {
	// Root endpoint - redirect to GitHub
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/hazemdh/leadbot-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if !engine.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"engine": string(engine.State()),
			})
			return
		}

		exchanges, err := db.CountExchanges(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"engine":    string(engine.State()),
			"algorithm": cfg.ChatbotAlgorithm,
			"exchanges": exchanges,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Chat endpoint
	router.POST("/chatbot_response", chatHandler(cfg, engine, db, m, log))

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// chatHandler serves POST /chatbot_response. It accepts {"message": string}
// and answers {"response": string}. Internal failures never leak; the caller
// only ever sees the fixed bodies plus 400 or 503.
func chatHandler(cfg *config.Config, engine *chatbot.Engine, db *storage.DB, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			m.RecordChatRequest("invalid", time.Since(start).Seconds())
			c.JSON(http.StatusBadRequest, gin.H{"response": invalidMessageBody})
			return
		}

		intent, response, err := engine.Respond(req.Message)
		if err != nil {
			// Internal detail stays in the logs; the caller only sees the
			// wrapped user message.
			wrap := apperrors.NewWrapper("server", "chatbot_response")
			if apperrors.IsModelLoad(err) {
				wrapped := wrap.Wrap(err, maintenanceBody)
				log.WithError(wrapped).WithRequestID(requestID(c)).Warn("Chat engine unavailable")
				m.RecordChatRequest("unavailable", time.Since(start).Seconds())
				c.JSON(http.StatusServiceUnavailable, gin.H{"response": apperrors.GetUserMessage(wrapped)})
				return
			}
			wrapped := wrap.Wrap(err, invalidMessageBody)
			m.RecordChatRequest("invalid", time.Since(start).Seconds())
			c.JSON(http.StatusBadRequest, gin.H{"response": apperrors.GetUserMessage(wrapped)})
			return
		}

		m.RecordChatRequest("success", time.Since(start).Seconds())
		if intent != "" {
			m.RecordIntentPrediction(intent)
		}

		// Exchange logging never blocks the reply
		if err := db.InsertExchange(c.Request.Context(), storage.Exchange{
			RequestID: requestID(c),
			Message:   req.Message,
			Intent:    intent,
			Response:  response,
			Algorithm: cfg.ChatbotAlgorithm,
		}); err != nil {
			log.WithError(err).WithRequestID(requestID(c)).Warn("Failed to log chat exchange")
		}

		c.JSON(http.StatusOK, gin.H{"response": response})
	}
}
