package handlers

import (
	"errors"
	"net/http"

	"liquidity-crisis/internal/api/models"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/features"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/predict"

	"github.com/gin-gonic/gin"
)

// errUploadMissing is returned when neither a multipart file nor a CSV body was sent.
var errUploadMissing = errors.New(`upload a CSV dataset as multipart field "file" or as a text/csv body`)

func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondPipelineError maps dataset and pipeline failures to HTTP errors.
func respondPipelineError(c *gin.Context, err error) {
	var (
		schemaErr   *pipeline.SchemaError
		emptyErr    *pipeline.EmptyGroupError
		mismatchErr *predict.FeatureMismatchError
		valueErr    *features.ValueError
		modelErr    *pipeline.ModelError
		tooLarge    *http.MaxBytesError
		uploadErr   *uploadError
	)
	switch {
	case errors.As(err, &tooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", err.Error(), map[string]interface{}{
			"limit_bytes": tooLarge.Limit,
		})
	case errors.Is(err, errUploadMissing):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, data.ErrEmptyDataset), errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, "INVALID_DATASET", err.Error(), nil)
	case errors.As(err, &schemaErr):
		respondError(c, http.StatusBadRequest, "SCHEMA_ERROR", err.Error(), map[string]interface{}{
			"column": schemaErr.Column,
		})
	case errors.As(err, &emptyErr):
		respondError(c, http.StatusUnprocessableEntity, "EMPTY_GROUP", err.Error(), map[string]interface{}{
			"crypto": emptyErr.Group,
		})
	case errors.As(err, &mismatchErr):
		respondError(c, http.StatusUnprocessableEntity, "FEATURE_MISMATCH", err.Error(), map[string]interface{}{
			"expected":   mismatchErr.Expected,
			"actual":     mismatchErr.Actual,
			"missing":    mismatchErr.Missing,
			"unexpected": mismatchErr.Unexpected,
		})
	case errors.As(err, &valueErr):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_FEATURE_VALUE", err.Error(), map[string]interface{}{
			"row":    valueErr.Row + 1,
			"crypto": valueErr.Group,
			"column": valueErr.Column,
		})
	case errors.As(err, &modelErr):
		respondError(c, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}

// uploadError marks a dataset that could not be read or parsed.
type uploadError struct {
	err error
}

func (e *uploadError) Error() string { return "invalid dataset: " + e.err.Error() }

func (e *uploadError) Unwrap() error { return e.err }
