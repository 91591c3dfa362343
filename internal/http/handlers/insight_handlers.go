package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/metrics"
)

// InsightHandlers exposes the generative insight operations. A failed model
// call still answers 200 with the fallback payload; only bad input is a 400.
type InsightHandlers struct {
	svc domain.InsightService
}

// NewInsightHandlers creates new insight handlers
func NewInsightHandlers(svc domain.InsightService) *InsightHandlers {
	return &InsightHandlers{svc: svc}
}

func respondInsight(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data, "success": true})
}

// bind decodes the request body, counting malformed bodies per kind
func bind[T any](c *gin.Context, kind string) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.InsightRequests.WithLabelValues(kind, metrics.OutcomeInvalid).Inc()
		if bodyTooLarge(err) {
			respondTooLarge(c)
			return req, false
		}
		invalidBody(c)
		return req, false
	}
	return req, true
}

// AnalyzeImage interprets a base64 medical image. An unknown imageType or an
// empty image is a 400.
func (h *InsightHandlers) AnalyzeImage(c *gin.Context) {
	req, ok := bind[domain.ImageAnalysisRequest](c, domain.InsightImageAnalysis)
	if !ok {
		return
	}
	res, err := h.svc.AnalyzeMedicalImage(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidImageType):
			respondError(c, http.StatusBadRequest, "imageType must be one of xray, mri, ct, ultrasound, dermatology")
		case errors.Is(err, domain.ErrEmptyImage):
			respondError(c, http.StatusBadRequest, "imageData is required")
		default:
			respondError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	respondInsight(c, res)
}

// ClinicalReasoning returns a differential diagnosis for the presented case
func (h *InsightHandlers) ClinicalReasoning(c *gin.Context) {
	req, ok := bind[domain.ClinicalReasoningRequest](c, domain.InsightClinicalReasoning)
	if !ok {
		return
	}
	respondInsight(c, h.svc.PerformClinicalReasoning(c.Request.Context(), req))
}

// ResearchInsights summarizes current evidence for a condition
func (h *InsightHandlers) ResearchInsights(c *gin.Context) {
	req, ok := bind[domain.ResearchInsightsRequest](c, domain.InsightResearch)
	if !ok {
		return
	}
	respondInsight(c, h.svc.GenerateResearchInsights(c.Request.Context(), req))
}

// PredictiveAnalytics estimates risk for a patient profile
func (h *InsightHandlers) PredictiveAnalytics(c *gin.Context) {
	req, ok := bind[domain.PredictiveAnalyticsRequest](c, domain.InsightPredictiveAnalytics)
	if !ok {
		return
	}
	respondInsight(c, h.svc.GeneratePredictiveAnalytics(c.Request.Context(), req))
}

// TreatmentOptimization reviews a treatment plan against the patient context
func (h *InsightHandlers) TreatmentOptimization(c *gin.Context) {
	req, ok := bind[domain.TreatmentOptimizationRequest](c, domain.InsightTreatmentOptimization)
	if !ok {
		return
	}
	respondInsight(c, h.svc.OptimizeTreatmentPlan(c.Request.Context(), req))
}

// DecisionSupport answers a clinical question at the given urgency. An
// unknown urgency level is a 400.
func (h *InsightHandlers) DecisionSupport(c *gin.Context) {
	req, ok := bind[domain.DecisionSupportRequest](c, domain.InsightDecisionSupport)
	if !ok {
		return
	}
	res, err := h.svc.ProvideClinicalDecisionSupport(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondInsight(c, res)
}

// PopulationHealth reports trends for a population segment
func (h *InsightHandlers) PopulationHealth(c *gin.Context) {
	req, ok := bind[domain.PopulationHealthRequest](c, domain.InsightPopulationHealth)
	if !ok {
		return
	}
	respondInsight(c, h.svc.GeneratePopulationHealthInsights(c.Request.Context(), req))
}
