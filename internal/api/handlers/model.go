package handlers

import (
	"net/http"

	"liquidity-crisis/internal/api/models"
	"liquidity-crisis/internal/config"
	"liquidity-crisis/internal/predict"

	"github.com/gin-gonic/gin"
)

// ModelHandler describes the prediction model serving the pipeline
type ModelHandler struct {
	model *predict.Handle
	cfg   *config.Config
}

// NewModelHandler creates a new model handler
func NewModelHandler(h *predict.Handle, cfg *config.Config) *ModelHandler {
	return &ModelHandler{model: h, cfg: cfg}
}

// GetModel handles GET /api/v1/model
func (h *ModelHandler) GetModel(c *gin.Context) {
	provider, err := h.model.Get()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, models.ModelInfo{
		Name:     provider.Name(),
		Features: provider.Features(),
		Quantile: h.cfg.Detector.Quantile,
		Columns: models.Columns{
			Group:  h.cfg.Columns.Group,
			Time:   h.cfg.Columns.Time,
			Target: h.cfg.Columns.Target,
		},
	})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
