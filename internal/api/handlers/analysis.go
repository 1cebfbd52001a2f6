package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"liquidity-crisis/internal/api/models"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/model"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// headRows is how many rows of the selected group are echoed back.
const headRows = 5

// AnalysisHandler handles dataset upload and crisis analysis requests
type AnalysisHandler struct {
	engine         *pipeline.Engine
	cache          *data.ResultCache[*pipeline.Result]
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(engine *pipeline.Engine, cache *data.ResultCache[*pipeline.Result], maxUploadBytes int64, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		engine:         engine,
		cache:          cache,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "analysis_handler")),
	}
}

// ListGroups handles POST /api/v1/groups
func (h *AnalysisHandler) ListGroups(c *gin.Context) {
	h.limitBody(c)
	ds, err := h.readUpload(c)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	groups, err := h.engine.Groups(ds)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.GroupsResponse{
		Column: h.engine.Columns.Group,
		Groups: groups,
		Count:  len(groups),
	})
}

// RunAnalysis handles POST /api/v1/analyses
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	h.limitBody(c)

	var req models.AnalysisRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondPipelineError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	ds, err := h.readUpload(c)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	result, err := h.engine.Run(ds, strings.TrimSpace(req.Crypto))
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	id := h.cache.Put(result)

	resp := buildAnalysisResponse(id, result, req.IncludeRows)
	resp.Cryptos = result.Groups
	c.JSON(http.StatusOK, resp)
}

// GetAnalysis handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildAnalysisResponse(c.Param("id"), result, c.Query("include_rows") == "true"))
}

// ExportAnalysis handles GET /api/v1/analyses/:id/export
func (h *AnalysisHandler) ExportAnalysis(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		name        string
		contentType string
	)
	switch req.Format {
	case "xlsx":
		err = pipeline.WriteXLSX(&buf, result)
		name = pipeline.ExportXLSXName
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = pipeline.WriteCSV(&buf, result)
		name = pipeline.ExportCSVName
		contentType = "text/csv"
	}
	if err != nil {
		h.logger.Error("Export failed", slog.String("id", c.Param("id")), slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "EXPORT_ERROR", err.Error(), nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// RenderChart handles GET /api/v1/analyses/:id/chart.png
func (h *AnalysisHandler) RenderChart(c *gin.Context) {
	var req models.ChartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	opts := report.DefaultChartOptions()
	if req.Width > 0 {
		opts.Width = req.Width
	}
	if req.Height > 0 {
		opts.Height = req.Height
	}

	var buf bytes.Buffer
	if err := report.RenderChart(&buf, result, opts); err != nil {
		h.logger.Error("Chart rendering failed", slog.String("id", c.Param("id")), slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "CHART_ERROR", err.Error(), nil)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Overview handles POST /api/v1/overview
func (h *AnalysisHandler) Overview(c *gin.Context) {
	h.limitBody(c)
	ds, err := h.readUpload(c)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	ranked, err := h.engine.Overview(ds)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	out := make([]models.GroupOverview, len(ranked))
	for i, g := range ranked {
		out[i] = models.GroupOverview{
			Rank:        i + 1,
			Crypto:      g.Group,
			Rows:        g.Count,
			CrisisDays:  g.CrisisCount,
			CrisisShare: g.CrisisShare,
			Threshold:   g.Threshold,
			MinPred:     g.Min,
			MaxPred:     g.Max,
			MeanPred:    g.Mean,
		}
	}
	c.JSON(http.StatusOK, models.OverviewResponse{Groups: out})
}

// Helper methods

func (h *AnalysisHandler) limitBody(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
}

// readUpload accepts either a multipart "file" field or a raw text/csv body.
func (h *AnalysisHandler) readUpload(c *gin.Context) (*model.Dataset, error) {
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		ds, err := data.ParseDatasetCSV(c.Request.Body)
		if err != nil {
			return nil, &uploadError{err: err}
		}
		return ds, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errUploadMissing
	}
	f, err := fh.Open()
	if err != nil {
		return nil, &uploadError{err: err}
	}
	defer f.Close()

	ds, err := data.ParseDatasetCSV(f)
	if err != nil {
		return nil, &uploadError{err: err}
	}
	h.logger.Debug("Dataset uploaded",
		slog.String("filename", fh.Filename),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.Columns)))
	return ds, nil
}

func (h *AnalysisHandler) lookup(c *gin.Context) (*pipeline.Result, bool) {
	id := c.Param("id")
	result, ok := h.cache.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("analysis %q not found or expired", id), nil)
		return nil, false
	}
	return result, true
}

func buildAnalysisResponse(id string, result *pipeline.Result, includeRows bool) models.AnalysisResponse {
	insight := report.NewInsight(result)
	header := result.Header()
	records := result.Records()

	head := records
	if len(head) > headRows {
		head = head[:headRows]
	}

	base := "/api/v1/analyses/" + id
	resp := models.AnalysisResponse{
		ID:      id,
		Status:  "completed",
		Crypto:  result.Group,
		Model:   result.Model,
		Summary: buildSummary(result),
		Insight: models.Insight{Level: insight.Level, Message: insight.Message},
		Head:    models.Table{Columns: header, Rows: head},
		Links: models.AnalysisLinks{
			Self:       base,
			ExportCSV:  base + "/export?format=csv",
			ExportXLSX: base + "/export?format=xlsx",
			Chart:      base + "/chart.png",
		},
	}
	if includeRows {
		resp.Rows = &models.Table{Columns: header, Rows: records}
	}
	return resp
}

func buildSummary(result *pipeline.Result) models.AnalysisSummary {
	s := result.Summary
	return models.AnalysisSummary{
		Rows:           s.Count,
		CrisisDays:     s.CrisisCount,
		CrisisShare:    s.CrisisShare,
		Quantile:       result.Detection.Quantile,
		Threshold:      s.Threshold,
		ThresholdLabel: report.FormatThreshold(s.Threshold),
		MinPredicted:   s.Min,
		MaxPredicted:   s.Max,
		MeanPredicted:  s.Mean,
	}
}
