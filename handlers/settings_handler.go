package handlers

import (
	"net/http"

	"arccs-backend/models"
	"arccs-backend/repository"

	"github.com/gin-gonic/gin"
)

// SettingsHandler handles HTTP requests for the runtime configuration
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsRepo.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

type updateSettingsBody struct {
	Model              *string  `json:"model"`
	QualityThreshold   *float64 `json:"quality_threshold"`
	MaxRegulations     *int     `json:"max_regulations_to_check"`
	DedupBatchSize     *int     `json:"dedup_batch_size"`
	AutoSaveReports    *bool    `json:"auto_save_reports"`
	ClassifierFailMode *string  `json:"classifier_fail_mode"`
}

// UpdateSettings handles PUT /api/settings. Only the fields present in the
// body change; the rest keep their saved values.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var body updateSettingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	settings, err := h.settingsRepo.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	if body.Model != nil {
		settings.Model = *body.Model
	}
	if body.QualityThreshold != nil {
		if *body.QualityThreshold < 0 || *body.QualityThreshold > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_THRESHOLD",
					"message": "quality_threshold must be between 0 and 100",
				},
			})
			return
		}
		settings.QualityThreshold = *body.QualityThreshold
	}
	if body.MaxRegulations != nil {
		if *body.MaxRegulations < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "max_regulations_to_check must be at least 1",
				},
			})
			return
		}
		settings.MaxRegulations = *body.MaxRegulations
	}
	if body.DedupBatchSize != nil {
		if *body.DedupBatchSize < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_BATCH_SIZE",
					"message": "dedup_batch_size must be at least 1",
				},
			})
			return
		}
		settings.DedupBatchSize = *body.DedupBatchSize
	}
	if body.AutoSaveReports != nil {
		settings.AutoSaveReports = *body.AutoSaveReports
	}
	if body.ClassifierFailMode != nil {
		mode := models.FailMode(*body.ClassifierFailMode)
		if mode != models.FailOpen && mode != models.FailClosed {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FAIL_MODE",
					"message": "classifier_fail_mode must be 'fail_open' or 'fail_closed'",
				},
			})
			return
		}
		settings.ClassifierFailMode = mode
	}

	if err := h.settingsRepo.Save(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}
