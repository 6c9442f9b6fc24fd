package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/service"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	files     batch.Repository
	decisions *service.DecisionService
	bulk      *service.BulkService
	stats     *service.StatsService
	search    *service.SearchService
	intake    *service.IntakeService
	collector *metrics.Collector
}

func NewReviewHandler(
	files batch.Repository,
	decisions *service.DecisionService,
	bulk *service.BulkService,
	stats *service.StatsService,
	search *service.SearchService,
	intake *service.IntakeService,
	collector *metrics.Collector,
) *ReviewHandler {
	return &ReviewHandler{
		files:     files,
		decisions: decisions,
		bulk:      bulk,
		stats:     stats,
		search:    search,
		intake:    intake,
		collector: collector,
	}
}

type registerBatchRequest struct {
	SourceLabel string               `json:"source_label"`
	Files       []service.ParsedFile `json:"files" binding:"required"`
}

// RegisterBatch ingests a parsed batch and returns the intake summary.
func (h *ReviewHandler) RegisterBatch(c *gin.Context) {
	var req registerBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := claimsFrom(c)
	createdBy := ""
	if claims != nil {
		createdBy = claims.Email
	}

	result, err := h.intake.RegisterBatch(c.Request.Context(), &service.RegisterBatchCommand{
		SourceLabel: req.SourceLabel,
		CreatedBy:   createdBy,
		Files:       req.Files,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.FilesIngestedTotal.Add(float64(result.TotalFiles))
	for _, cls := range result.Classified {
		h.collector.FilesClassifiedTotal.WithLabelValues(string(cls.Category), string(cls.Priority)).Inc()
	}
	respondCreated(c, result)
}

// ListPending returns the review queue, optionally filtered.
func (h *ReviewHandler) ListPending(c *gin.Context) {
	q := &batch.ListQuery{Limit: parseQueryInt(c, "limit", 100)}

	if raw := c.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid session_id: must be a valid UUID")
			return
		}
		q.SessionID = &id
	}
	if raw := c.Query("priority"); raw != "" {
		p := batch.ReviewPriority(raw)
		if !p.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid priority: "+raw)
			return
		}
		q.Priority = &p
	}
	if raw := c.Query("category"); raw != "" {
		cat := batch.ReviewCategory(raw)
		if !cat.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid category: "+raw)
			return
		}
		q.Category = &cat
	}

	files, err := h.files.ListPending(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, files)
}

// GetCase returns the full detail of one review case.
func (h *ReviewHandler) GetCase(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	f, err := h.files.GetFile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, f)
}

type decisionRequest struct {
	Decision          string                        `json:"decision" binding:"required"`
	SelectedPatientID *uuid.UUID                    `json:"selected_patient_id,omitempty"`
	NewPatientData    *patient.CreatePatientCommand `json:"new_patient_data,omitempty"`
	AdminNotes        string                        `json:"admin_notes,omitempty"`
}

// SubmitDecision applies one admin decision to one file. The response
// carries the structured per-file result even on a warning.
func (h *ReviewHandler) SubmitDecision(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	if !bindJSON(c, &req) {
		return
	}

	kind, err := batch.ParseKind(req.Decision)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	claims := claimsFrom(c)
	reviewedBy := ""
	if claims != nil {
		reviewedBy = claims.Email
	}

	result, err := h.decisions.Apply(c.Request.Context(), id, &batch.Decision{
		Kind:              kind,
		SelectedPatientID: req.SelectedPatientID,
		NewPatient:        req.NewPatientData,
		AdminNotes:        req.AdminNotes,
		ReviewedBy:        reviewedBy,
	})
	if err != nil {
		h.collector.DecisionsTotal.WithLabelValues(string(kind), "failure").Inc()
		respondServiceError(c, err)
		return
	}

	h.collector.DecisionsTotal.WithLabelValues(string(kind), "success").Inc()
	if result.DocumentID != nil {
		h.collector.DocumentsCreated.Inc()
	}
	if result.Warning != "" {
		h.collector.VectorizeFailures.Inc()
	}
	respondOK(c, result)
}

type bulkApproveRequest struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// BulkApprove auto-approves a session's qualifying files.
func (h *ReviewHandler) BulkApprove(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req bulkApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := claimsFrom(c)
	reviewedBy := ""
	if claims != nil {
		reviewedBy = claims.Email
	}

	result, err := h.bulk.ApproveSession(c.Request.Context(), id, req.ConfidenceThreshold, reviewedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.BulkApprovalsTotal.Inc()
	respondOK(c, result)
}

// GetStats returns review statistics, session-scoped or global.
func (h *ReviewHandler) GetStats(c *gin.Context) {
	var sessionID *uuid.UUID
	if raw := c.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid session_id: must be a valid UUID")
			return
		}
		sessionID = &id
	}

	stats, err := h.stats.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

// GetOptions lists the fixed enumerations the dashboard renders.
func (h *ReviewHandler) GetOptions(c *gin.Context) {
	respondOK(c, gin.H{
		"decisions":  batch.DecisionKinds(),
		"priorities": batch.Priorities(),
		"categories": batch.Categories(),
	})
}

// SearchPatients ranks registry patients against a query for manual match.
func (h *ReviewHandler) SearchPatients(c *gin.Context) {
	query := c.Query("q")
	limit := parseQueryInt(c, "limit", 10)

	matches, err := h.search.SearchPatients(c.Request.Context(), query, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, matches)
}
