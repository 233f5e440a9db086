package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"churnflow/internal/domain"
	"churnflow/internal/export"
	"churnflow/internal/logger"
	"churnflow/internal/normalize"
	"churnflow/internal/service"
	"churnflow/internal/stats"
)

// BatchHandler handles batch upload, review and download endpoints.
type BatchHandler struct {
	batchService   service.BatchService
	maxUploadBytes int64
	now            func() time.Time
}

// NewBatchHandler creates a new BatchHandler. A non-positive maxUploadBytes disables the size check.
func NewBatchHandler(batchService service.BatchService, maxUploadBytes int64) *BatchHandler {
	return &BatchHandler{
		batchService:   batchService,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// resultView is the JSON shape of one outcome, flattened like the prediction
// service's own batch response.
type resultView struct {
	Index            int              `json:"index"`
	Churn            *bool            `json:"churn,omitempty"`
	ChurnProbability *float64         `json:"churn_probability,omitempty"`
	Confidence       *float64         `json:"confidence,omitempty"`
	RiskLevel        domain.RiskLevel `json:"risk_level,omitempty"`
	Error            string           `json:"error,omitempty"`
}

type batchView struct {
	BatchID     uuid.UUID              `json:"batch_id"`
	Filename    string                 `json:"filename"`
	Format      domain.FileFormat      `json:"format"`
	SubmittedAt time.Time              `json:"submitted_at"`
	Warnings    []string               `json:"warnings"`
	Stats       domain.BatchStatistics `json:"stats"`
	Results     []resultView           `json:"results"`
}

func toBatchView(run *domain.BatchRun) batchView {
	results := make([]resultView, len(run.Result))
	for i := range run.Result {
		o := &run.Result[i]
		v := resultView{Index: o.Index}
		if o.IsFailure() {
			v.Error = o.ErrorMessage()
		} else {
			p := *o.Success
			v.Churn = &p.Churn
			v.ChurnProbability = &p.ChurnProbability
			v.Confidence = &p.Confidence
			v.RiskLevel = p.RiskLevel
		}
		results[i] = v
	}
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return batchView{
		BatchID:     run.ID,
		Filename:    run.Filename,
		Format:      run.Format,
		SubmittedAt: run.SubmittedAt,
		Warnings:    warnings,
		Stats:       stats.Aggregate(run.Result),
		Results:     results,
	}
}

// Upload handles POST /api/v1/batches
func (h *BatchHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	var reader io.Reader = file
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	run, err := h.batchService.Run(c.Request.Context(), header.Filename, data)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, toBatchView(run))
}

// Get handles GET /api/v1/batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	RespondOK(c, toBatchView(run))
}

// Export handles GET /api/v1/batches/:id/export?format=csv|xlsx
func (h *BatchHandler) Export(c *gin.Context) {
	format, err := export.Lookup(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	run, ok := h.lookupRun(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, run.Result); err != nil {
		logger.FromContext(c.Request.Context()).Error("batchHandler.Export: failed to render export", "batch_id", run.ID, "format", format.Name, "error", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render export")
		return
	}

	prefix := export.DefaultPrefix
	if base := strings.TrimSuffix(run.Filename, filepath.Ext(run.Filename)); base != "" {
		prefix = export.DefaultPrefix + "_" + base
	}
	filename := export.BuildFilename(prefix, format.Extension, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType, buf.Bytes())
}

// Schema handles GET /api/v1/schema
func (h *BatchHandler) Schema(c *gin.Context) {
	RespondOK(c, normalize.Schema())
}

func (h *BatchHandler) lookupRun(c *gin.Context) (*domain.BatchRun, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return nil, false
	}
	run, err := h.batchService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return run, true
}
