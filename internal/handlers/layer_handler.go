package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/infrastructure/validation"
	"github.com/htm-cortex/layer/internal/ports"
)

// LayerHandler handles HTTP requests for cortical layer operations:
// configuration, metrics, break, health, status, and validation.
type LayerHandler struct {
	layerService      ports.LayerService
	validationService ports.ValidationService
	wireValidator     *validation.Validator
}

// NewLayerHandler creates a new cortical layer HTTP handler.
func NewLayerHandler(layerService ports.LayerService, validationService ports.ValidationService) *LayerHandler {
	return &LayerHandler{
		layerService:      layerService,
		validationService: validationService,
		wireValidator:     validation.New(),
	}
}

// StepLayer handles POST /api/v1/layer/step requests.
func (h *LayerHandler) StepLayer(c *gin.Context) {
	var input htm.LayerStepInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if fieldErrors := h.wireValidator.Validate(&input); fieldErrors != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Request validation failed",
			"details": fieldErrors,
		})
		return
	}

	if err := h.validationService.ValidateLayerStepInput(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Request validation failed",
			"details": err.Error(),
		})
		return
	}

	result, err := h.layerService.StepLayer(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Layer step failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLayerConfig handles GET /api/v1/layer/config requests.
func (h *LayerHandler) GetLayerConfig(c *gin.Context) {
	config, err := h.layerService.GetConfiguration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get configuration",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, config)
}

// UpdateLayerConfig handles PUT /api/v1/layer/config requests.
func (h *LayerHandler) UpdateLayerConfig(c *gin.Context) {
	var config htm.LayerConfig

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if fieldErrors := h.wireValidator.Validate(&config); fieldErrors != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Configuration validation failed",
			"details": fieldErrors,
		})
		return
	}

	if err := h.validationService.ValidateLayerConfig(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Configuration validation failed",
			"details": err.Error(),
		})
		return
	}

	if err := h.layerService.UpdateConfiguration(c.Request.Context(), &config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Configuration update failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Configuration updated successfully",
	})
}

// ValidateConfigRequest handles POST /api/v1/layer/config/validate requests.
func (h *LayerHandler) ValidateConfigRequest(c *gin.Context) {
	var config htm.LayerConfig

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.layerService.ValidateConfiguration(c.Request.Context(), &config); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":   false,
			"error":   "Configuration validation failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"message": "Configuration is valid",
	})
}

// GetLayerMetrics handles GET /api/v1/layer/metrics requests.
func (h *LayerHandler) GetLayerMetrics(c *gin.Context) {
	metrics, err := h.layerService.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get metrics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// ResetLayerMetrics handles POST /api/v1/layer/metrics/reset requests.
func (h *LayerHandler) ResetLayerMetrics(c *gin.Context) {
	if err := h.layerService.ResetMetrics(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reset metrics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Metrics reset successfully",
	})
}

// BreakLayer handles POST /api/v1/layer/break requests.
func (h *LayerHandler) BreakLayer(c *gin.Context) {
	var request htm.BreakRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.layerService.Break(c.Request.Context(), &request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Break request failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Layer state reset successfully",
	})
}

// GetLayerHealth handles GET /api/v1/layer/health requests.
func (h *LayerHandler) GetLayerHealth(c *gin.Context) {
	if err := h.layerService.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	info := h.layerService.GetInstanceInfo(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"info":   info,
	})
}

// GetLayerStatus handles GET /api/v1/layer/status requests.
func (h *LayerHandler) GetLayerStatus(c *gin.Context) {
	info := h.layerService.GetInstanceInfo(c.Request.Context())

	config, err := h.layerService.GetConfiguration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get layer configuration",
			"details": err.Error(),
		})
		return
	}

	metrics, err := h.layerService.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get layer metrics",
			"details": err.Error(),
		})
		return
	}

	isHealthy := true
	var healthError string
	if err := h.layerService.HealthCheck(c.Request.Context()); err != nil {
		isHealthy = false
		healthError = err.Error()
	}

	status := gin.H{
		"status":        "operational",
		"healthy":       isHealthy,
		"instance":      info,
		"configuration": config,
		"metrics":       metrics,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}

	if !isHealthy {
		status["health_error"] = healthError
		status["status"] = "degraded"
	}

	c.JSON(http.StatusOK, status)
}

// GetHTMProperties handles GET /api/v1/layer/validation/htm-properties
// requests, reporting compliance of the live configuration with HTM's
// biological constraints on activation sparsity and learning.
func (h *LayerHandler) GetHTMProperties(c *gin.Context) {
	config, err := h.layerService.GetConfiguration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get layer configuration",
			"details": err.Error(),
		})
		return
	}

	metrics, err := h.layerService.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get layer metrics",
			"details": err.Error(),
		})
		return
	}

	properties := gin.H{
		"htm_compliance": gin.H{
			"biological_constraints": gin.H{
				"activation_level":      config.ActivationLevel,
				"activation_level_max":  config.ActivationLevelMax,
				"target_activation_pct": []float64{2.0, 10.0},
				"activation_compliant":  config.ActivationLevel >= 0.02 && config.ActivationLevelMax <= 0.10,
				"proximal_stimulus_threshold": config.Proximal.StimulusThreshold,
				"distal_stimulus_threshold":   config.Distal.StimulusThreshold,
			},
			"learning_properties": gin.H{
				"proximal_perm_inc": config.Proximal.PermInc,
				"proximal_perm_dec": config.Proximal.PermDec,
				"distal_perm_inc":   config.Distal.PermInc,
				"distal_perm_dec":   config.Distal.PermDec,
				"punish_enabled":    config.Distal.Punish,
				"learning_compliant": config.Proximal.PermInc > 0 && config.Distal.PermInc > 0,
			},
			"topology_properties": gin.H{
				"column_dimensions":  config.ColumnDimensions,
				"input_dimensions":   config.InputDimensions,
				"depth":              config.Depth,
				"topology_compliant": len(config.ColumnDimensions) > 0 && len(config.InputDimensions) > 0 && config.Depth > 0,
			},
		},
		"runtime_metrics": gin.H{
			"total_steps":               metrics.TotalSteps,
			"average_processing_time":   metrics.AverageProcessingTimeMs,
			"average_bursting_ratio":    metrics.AverageBurstingRatio,
			"average_stability_score":   metrics.AverageStabilityScore,
			"boost_recomputations":      metrics.BoostRecomputations,
		},
		"validation_status": gin.H{
			"overall_compliant": h.validateOverallHTMCompliance(config, metrics),
			"warnings":          h.generateHTMWarnings(config, metrics),
			"recommendations":   h.generateHTMRecommendations(config, metrics),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, properties)
}

// validateOverallHTMCompliance checks if the layer meets HTM
// biological principles.
func (h *LayerHandler) validateOverallHTMCompliance(config *htm.LayerConfig, metrics *htm.LayerMetrics) bool {
	activationCompliant := config.ActivationLevel >= 0.02 && config.ActivationLevelMax <= 0.10
	learningCompliant := config.Proximal.PermInc > 0 && config.Distal.PermInc > 0
	topologyCompliant := len(config.ColumnDimensions) > 0 && len(config.InputDimensions) > 0 && config.Depth > 0

	return activationCompliant && learningCompliant && topologyCompliant
}

// generateHTMWarnings generates warnings for HTM compliance issues.
func (h *LayerHandler) generateHTMWarnings(config *htm.LayerConfig, metrics *htm.LayerMetrics) []string {
	warnings := []string{}

	if config.ActivationLevel < 0.02 {
		warnings = append(warnings, "Activation level below HTM recommended minimum of 2%")
	}
	if config.ActivationLevelMax > 0.10 {
		warnings = append(warnings, "Activation level max above HTM recommended maximum of 10%")
	}
	if config.Proximal.PermInc <= 0 {
		warnings = append(warnings, "Proximal permanence increment is zero or negative")
	}
	if metrics.AverageBurstingRatio > 0.5 {
		warnings = append(warnings, "Average bursting ratio exceeds 50%, prediction is weak")
	}
	if len(metrics.ErrorCounts) > 0 {
		warnings = append(warnings, "Processing errors detected - check layer stability")
	}

	return warnings
}

// generateHTMRecommendations generates recommendations for HTM
// optimisation.
func (h *LayerHandler) generateHTMRecommendations(config *htm.LayerConfig, metrics *htm.LayerMetrics) []string {
	recommendations := []string{}

	if config.ActivationLevel < 0.02 {
		recommendations = append(recommendations, "Increase activation_level toward 2-10% for better HTM compliance")
	}
	if config.ActivationLevelMax > 0.10 {
		recommendations = append(recommendations, "Decrease activation_level_max toward 2-10% for optimal HTM behaviour")
	}
	if metrics.AverageStabilityScore < 0.3 && metrics.TotalSteps > 10 {
		recommendations = append(recommendations, "Consider enabling boosting or lowering activation_level_max to improve output stability")
	}

	return recommendations
}
