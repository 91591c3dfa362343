package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
	"github.com/you/emrsvc/internal/mocks"
)

func TestInsightHandlers_FallbackStaysOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewInsightHandlers(mocks.NewMockInsightService())

	tests := []struct {
		name    string
		path    string
		handler gin.HandlerFunc
		body    interface{}
	}{
		{"clinical reasoning", "/api/insights/clinical-reasoning", h.ClinicalReasoning, domain.ClinicalReasoningRequest{Symptoms: []string{"fever"}}},
		{"research", "/api/insights/research", h.ResearchInsights, domain.ResearchInsightsRequest{Condition: "asthma"}},
		{"predictive", "/api/insights/predictive-analytics", h.PredictiveAnalytics, domain.PredictiveAnalyticsRequest{}},
		{"treatment", "/api/insights/treatment-optimization", h.TreatmentOptimization, domain.TreatmentOptimizationRequest{Condition: "copd"}},
		{"decision", "/api/insights/decision-support", h.DecisionSupport, domain.DecisionSupportRequest{Urgency: "low"}},
		{"population", "/api/insights/population-health", h.PopulationHealth, domain.PopulationHealthRequest{}},
		{"image", "/api/insights/image-analysis", h.AnalyzeImage, map[string]string{"imageData": "aGVsbG8=", "imageType": "xray"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, tt.path, tt.body)
			w := serve(http.MethodPost, tt.path, req, tt.handler)

			assert.Equal(t, http.StatusOK, w.Code)
			assertBody(t, w, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"fallback": true},
			})
		})
	}
}

func TestInsightHandlers_ImageValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := mocks.NewMockInsightService()
	var got domain.ImageAnalysisRequest
	svc.AnalyzeMedicalImageFunc = func(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ImageAnalysis, error) {
		got = req
		if req.ImageType != "xray" {
			return nil, domain.ErrInvalidImageType
		}
		return &domain.ImageAnalysis{Findings: "clear"}, nil
	}
	h := NewInsightHandlers(svc)

	req := newJSONRequest(t, http.MethodPost, "/api/insights/image-analysis", map[string]string{"imageData": "aGVsbG8=", "imageType": "xray"})
	w := serve(http.MethodPost, "/api/insights/image-analysis", req, h.AnalyzeImage)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("hello"), got.ImageData)

	req = newJSONRequest(t, http.MethodPost, "/api/insights/image-analysis", map[string]string{"imageData": "aGVsbG8=", "imageType": "pet"})
	w = serve(http.MethodPost, "/api/insights/image-analysis", req, h.AnalyzeImage)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertBody(t, w, map[string]interface{}{"success": false})

	req = newJSONRequest(t, http.MethodPost, "/api/insights/image-analysis", map[string]string{"imageData": "%%%not base64", "imageType": "xray"})
	w = serve(http.MethodPost, "/api/insights/image-analysis", req, h.AnalyzeImage)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertBody(t, w, map[string]interface{}{"message": "Invalid request body"})
}

func TestInsightHandlers_DecisionSupportUrgency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := mocks.NewMockInsightService()
	svc.ProvideClinicalDecisionSupportFunc = func(ctx context.Context, req domain.DecisionSupportRequest) (*domain.DecisionSupport, error) {
		return nil, domain.ErrInvalidUrgency
	}
	h := NewInsightHandlers(svc)

	req := newJSONRequest(t, http.MethodPost, "/api/insights/decision-support", domain.DecisionSupportRequest{Urgency: "whenever"})
	w := serve(http.MethodPost, "/api/insights/decision-support", req, h.DecisionSupport)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertBody(t, w, map[string]interface{}{"message": domain.ErrInvalidUrgency.Error()})
}

func TestInsightHandlers_BodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewInsightHandlers(mocks.NewMockInsightService())

	payload := `{"imageType":"xray","imageData":"` + strings.Repeat("A", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/insights/image-analysis", io.NopCloser(strings.NewReader(payload)))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")

	w := serve(http.MethodPost, "/api/insights/image-analysis", req, middleware.BodyLimit(1<<20), h.AnalyzeImage)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assertBody(t, w, map[string]interface{}{"message": "File too large", "success": false})
}
