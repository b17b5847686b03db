package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/session"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region router

// NewRouter builds the HTTP API around a session manager.
func NewRouter(mgr *session.Manager) *gin.Engine {
	router := gin.Default()

	router.GET("/health", healthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", handleAnalyze(mgr))
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:sessionId/pattern", handlePattern(mgr))
			sessions.GET("/:sessionId/probabilities", handleProbabilities(mgr))
			sessions.DELETE("/:sessionId", handleReset(mgr))
		}
	}
	return router
}

// #endregion router

// #region health

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mca-engine"})
}

// #endregion health

// #region analyze

type analyzeRequest struct {
	SessionID         string         `json:"sessionId" binding:"required"`
	UserID            string         `json:"userId"`
	ConversationTurns []signals.Turn `json:"conversationTurns" binding:"required,min=1"`
	CurrentTurnIndex  *int           `json:"currentTurnIndex"`
}

// handleAnalyze advances the session's pipeline by one turn.
func handleAnalyze(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and a non-empty conversationTurns are required"})
			return
		}

		pipeline, err := mgr.GetOrCreate(c.Request.Context(), req.SessionID, session.Options{UserID: req.UserID})
		if err != nil {
			log.Printf("[API] create session %s: %v", req.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		currentIdx := -1
		if req.CurrentTurnIndex != nil {
			currentIdx = *req.CurrentTurnIndex
		}

		result, err := pipeline.Analyze(c.Request.Context(), req.ConversationTurns, currentIdx)
		if err != nil {
			if errors.Is(err, session.ErrNoUserTurn) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "no turn with user text"})
				return
			}
			log.Printf("[API] analyze session %s: %v", req.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// #endregion analyze

// #region reads

// handlePattern returns the current belief and evidence without advancing state.
func handlePattern(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipeline, err := mgr.Get(c.Param("sessionId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusOK, pipeline.Current())
	}
}

// handleProbabilities returns the raw per-archetype probabilities.
func handleProbabilities(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipeline, err := mgr.Get(c.Param("sessionId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		current := pipeline.Current()
		probs := make(map[belief.Pattern]float64, len(belief.Patterns))
		for _, p := range belief.Patterns {
			probs[p] = current.Distribution[p]
		}
		c.JSON(http.StatusOK, gin.H{"probabilities": probs})
	}
}

// handleReset discards a session's estimator state.
func handleReset(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Reset(c.Param("sessionId")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reset"})
	}
}

// #endregion reads
