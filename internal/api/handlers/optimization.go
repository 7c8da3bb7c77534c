package handlers

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/export"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/optimizer"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/websocket"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/cache"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/config"
)

// OptimizationHandler handles match selection endpoints
type OptimizationHandler struct {
	solver solver.Solver
	cache  *cache.ResultCacheService
	wsHub  *websocket.Hub
	config *config.Config
	logger *logrus.Logger
}

// NewOptimizationHandler creates a new optimization handler
func NewOptimizationHandler(
	slv solver.Solver,
	cache *cache.ResultCacheService,
	wsHub *websocket.Hub,
	config *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		solver: slv,
		cache:  cache,
		wsHub:  wsHub,
		config: config,
		logger: logger,
	}
}

// SelectMatches handles match selection requests
func (h *OptimizationHandler) SelectMatches(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	store, err := pattern.NewStore(req.Pattern)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid pattern document",
			Code:  "INVALID_PATTERN",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	params := req.Params.Resolve(store.MatchCount())
	if err := params.Validate(store.MatchCount()); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid parameters",
			Code:  "INVALID_PARAMS",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	optimizationID := req.OptimizationID
	if optimizationID == "" {
		optimizationID = uuid.New().String()
	}
	log := h.logger.WithField("optimization_id", optimizationID)

	// Check cache first
	cacheKey := h.generateCacheKey(req)
	if cached, err := h.cache.GetResult(c.Request.Context(), cacheKey); err == nil && cached != nil {
		log.WithField("cache_key", cacheKey).Info("Returning cached optimization report")
		c.JSON(http.StatusOK, OptimizeResponse{OptimizationID: optimizationID, Report: cached})
		return
	}

	// Forward solve progress to WebSocket subscribers
	progressChan := make(chan optimizer.Progress, 100)
	defer close(progressChan)
	go h.forwardProgress(optimizationID, progressChan)

	opt := optimizer.New(store, h.solver, h.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.SolveTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := opt.OptimizeWithProgress(ctx, params, progressChan)
	if err != nil {
		log.WithError(err).Error("Optimization failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Optimization failed",
			Code:  "OPTIMIZATION_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
		return
	}

	report := export.BuildReport(result, store)
	response := OptimizeResponse{OptimizationID: optimizationID, Report: report}

	if err := h.cache.SetResult(c.Request.Context(), cacheKey, report, h.config.CacheExpiration); err != nil {
		log.WithError(err).Warn("Failed to cache optimization report")
	}

	log.WithFields(logrus.Fields{
		"selected":       result.TotalMatches,
		"status":         result.Status.String(),
		"execution_time": time.Since(startTime),
	}).Info("Optimization request completed")

	c.JSON(http.StatusOK, response)
}

// ValidateRequest validates a selection request without running the solver
func (h *OptimizationHandler) ValidateRequest(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	store, err := pattern.NewStore(req.Pattern)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid pattern document",
			Code:  "INVALID_PATTERN",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	params := req.Params.Resolve(store.MatchCount())
	if err := params.Validate(store.MatchCount()); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid parameters",
			Code:  "INVALID_PARAMS",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Selection request is valid",
		Data: map[string]interface{}{
			"match_count":    store.MatchCount(),
			"team_count":     store.TeamCount(),
			"target_matches": params.TargetMatches,
		},
	})
}

// GetCacheStatus returns cache statistics
func (h *OptimizationHandler) GetCacheStatus(c *gin.Context) {
	status := h.cache.GetStatus(c.Request.Context())
	c.JSON(http.StatusOK, status)
}

// Helper methods

func (h *OptimizationHandler) generateCacheKey(req OptimizeRequest) string {
	hash := md5.New()
	hash.Write([]byte(fmt.Sprintf("%+v", req.Pattern)))
	hash.Write([]byte(fmt.Sprintf("%+v", req.Params)))
	return fmt.Sprintf("%x", hash.Sum(nil))
}

func (h *OptimizationHandler) forwardProgress(optimizationID string, progressChan <-chan optimizer.Progress) {
	for progress := range progressChan {
		h.wsHub.BroadcastToOptimization(optimizationID, progress)
	}
}
