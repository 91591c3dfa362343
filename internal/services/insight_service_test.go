package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/metrics"
	"github.com/you/emrsvc/internal/mocks"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newInsightService(gen domain.TextGenerator) (domain.InsightService, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return NewInsightService(gen, zap.New(core)), logs
}

func TestInsightService_AnalyzeMedicalImage(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "1. Findings: small nodule\n2. Normal lung fields\n3. Urgency: routine\nConfidence: 75%", nil
	}
	svc, _ := newInsightService(gen)

	result, err := svc.AnalyzeMedicalImage(context.Background(), domain.ImageAnalysisRequest{
		ImageData: pngHeader,
		ImageType: "XRay",
	})
	require.NoError(t, err)

	assert.Equal(t, "1. Findings: small nodule", result.Findings)
	assert.Equal(t, "2. Normal lung fields", result.NormalStructures)
	assert.Equal(t, "3. Urgency: routine\nConfidence: 75%", result.Urgency)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
	assert.False(t, result.Fallback)
	assert.NotEmpty(t, result.RawResponse)

	require.Len(t, gen.Requests, 1)
	req := gen.Requests[0]
	assert.Contains(t, req.Prompt, "analyze this xray image")
	assert.Contains(t, req.Prompt, "lung fields, cardiac silhouette")
	require.NotNil(t, req.Image)
	assert.Equal(t, "image/png", req.Image.MimeType)
	assert.Nil(t, req.Temperature, "image analysis keeps the model defaults")
}

func TestInsightService_AnalyzeMedicalImage_Validation(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	svc, _ := newInsightService(gen)

	_, err := svc.AnalyzeMedicalImage(context.Background(), domain.ImageAnalysisRequest{ImageData: pngHeader, ImageType: "pet"})
	assert.ErrorIs(t, err, domain.ErrInvalidImageType)

	_, err = svc.AnalyzeMedicalImage(context.Background(), domain.ImageAnalysisRequest{ImageType: "mri"})
	assert.ErrorIs(t, err, domain.ErrEmptyImage)

	assert.Empty(t, gen.Requests)
}

func TestInsightService_UnknownImageBytesDefaultToJPEG(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "ok", nil
	}
	svc, _ := newInsightService(gen)

	_, err := svc.AnalyzeMedicalImage(context.Background(), domain.ImageAnalysisRequest{ImageData: []byte("not an image"), ImageType: "ct"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", gen.Requests[0].Image.MimeType)
}

func TestInsightService_GenerationConfigs(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "text", nil
	}
	svc, _ := newInsightService(gen)
	ctx := context.Background()

	svc.PerformClinicalReasoning(ctx, domain.ClinicalReasoningRequest{Symptoms: []string{"fever"}})
	svc.GenerateResearchInsights(ctx, domain.ResearchInsightsRequest{Condition: "asthma"})
	svc.GeneratePredictiveAnalytics(ctx, domain.PredictiveAnalyticsRequest{})
	svc.OptimizeTreatmentPlan(ctx, domain.TreatmentOptimizationRequest{Condition: "asthma"})
	_, err := svc.ProvideClinicalDecisionSupport(ctx, domain.DecisionSupportRequest{Urgency: "high"})
	require.NoError(t, err)
	svc.GeneratePopulationHealthInsights(ctx, domain.PopulationHealthRequest{})

	expected := []struct {
		temperature float32
		topP        float32
		maxTokens   int32
	}{
		{0.3, 0.9, 3000},
		{0.4, 0.9, 2500},
		{0.2, 0.8, 2000},
		{0.3, 0.9, 2500},
		{0.2, 0.8, 2000},
		{0.4, 0.9, 2500},
	}
	require.Len(t, gen.Requests, len(expected))
	for i, e := range expected {
		req := gen.Requests[i]
		require.NotNil(t, req.Temperature)
		require.NotNil(t, req.TopP)
		assert.Equal(t, e.temperature, *req.Temperature, "request %d", i)
		assert.Equal(t, e.topP, *req.TopP, "request %d", i)
		assert.Equal(t, e.maxTokens, req.MaxOutputTokens, "request %d", i)
		assert.Nil(t, req.Image)
	}
}

func TestInsightService_PromptContents(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "text", nil
	}
	svc, _ := newInsightService(gen)
	ctx := context.Background()

	svc.PerformClinicalReasoning(ctx, domain.ClinicalReasoningRequest{
		Symptoms:    []string{"chest pain", "dyspnea"},
		Vitals:      map[string]any{"hr": 110},
		Medications: []string{"aspirin"},
		History:     "hypertension",
	})
	svc.OptimizeTreatmentPlan(ctx, domain.TreatmentOptimizationRequest{Condition: "diabetes"})

	reasoning := gen.Requests[0].Prompt
	assert.Contains(t, reasoning, "- Symptoms: chest pain, dyspnea")
	assert.Contains(t, reasoning, `- Vital Signs: {"hr":110}`)
	assert.Contains(t, reasoning, "- Lab Results: {}")
	assert.Contains(t, reasoning, "- Imaging: None")
	assert.Contains(t, reasoning, "- Medical History: hypertension")

	treatment := gen.Requests[1].Prompt
	assert.Contains(t, treatment, "Condition: diabetes")
	assert.Contains(t, treatment, "Genetic Factors: Unknown")
}

func TestInsightService_ParsesSections(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "1. Reasoning: stepwise\n2. Differential: ACS vs PE\n3. Risk: high\n4. Treatment: anticoagulate\n5. Monitoring: telemetry\n6. Safety: bleeding risk\nconfidence 60%", nil
	}
	svc, _ := newInsightService(gen)

	result := svc.PerformClinicalReasoning(context.Background(), domain.ClinicalReasoningRequest{})

	assert.Equal(t, "1. Reasoning: stepwise", result.ReasoningProcess)
	assert.Equal(t, "2. Differential: ACS vs PE", result.DifferentialDiagnosis)
	assert.Equal(t, "3. Risk: high", result.RiskStratification)
	assert.Equal(t, "4. Treatment: anticoagulate", result.TreatmentRecommendations)
	assert.Equal(t, "5. Monitoring: telemetry", result.Monitoring)
	assert.Equal(t, "6. Safety: bleeding risk\nconfidence 60%", result.SafetyConsiderations)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.False(t, result.Fallback)
}

func TestInsightService_FallbackOnFailure(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		return "", errors.New("googleapi: Error 429: Resource has been exhausted")
	}
	svc, logs := newInsightService(gen)
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.InsightRequests.WithLabelValues(domain.InsightResearch, metrics.OutcomeFallback))

	image, err := svc.AnalyzeMedicalImage(ctx, domain.ImageAnalysisRequest{ImageData: pngHeader, ImageType: "dermatology"})
	require.NoError(t, err)
	assert.True(t, image.Fallback)
	assert.Zero(t, image.Confidence)
	assert.Equal(t, "Manual assessment required", image.Urgency)
	assert.Equal(t, "Fallback response - Gemini API quota exceeded", image.RawResponse)

	reasoning := svc.PerformClinicalReasoning(ctx, domain.ClinicalReasoningRequest{})
	assert.True(t, reasoning.Fallback)
	assert.Zero(t, reasoning.Confidence)
	assert.Equal(t, "Fallback response - Gemini API quota exceeded. Please check your API key and billing status.", reasoning.RawResponse)

	research := svc.GenerateResearchInsights(ctx, domain.ResearchInsightsRequest{})
	assert.True(t, research.Fallback)
	assert.Equal(t, "Check ClinicalTrials.gov for ongoing studies and trial opportunities.", research.ClinicalTrials)

	predictive := svc.GeneratePredictiveAnalytics(ctx, domain.PredictiveAnalyticsRequest{})
	assert.True(t, predictive.Fallback)
	assert.NotEmpty(t, predictive.RiskPredictions)

	treatment := svc.OptimizeTreatmentPlan(ctx, domain.TreatmentOptimizationRequest{})
	assert.True(t, treatment.Fallback)
	assert.NotEmpty(t, treatment.PatientCenteredCare)

	decision, err := svc.ProvideClinicalDecisionSupport(ctx, domain.DecisionSupportRequest{Urgency: "critical"})
	require.NoError(t, err)
	assert.True(t, decision.Fallback)
	assert.NotEmpty(t, decision.SharedDecisionMaking)

	population := svc.GeneratePopulationHealthInsights(ctx, domain.PopulationHealthRequest{})
	assert.True(t, population.Fallback)
	assert.NotEmpty(t, population.OutcomeModeling)

	assert.Equal(t, 7, logs.FilterMessage("generation failed, serving fallback").Len())
	after := testutil.ToFloat64(metrics.InsightRequests.WithLabelValues(domain.InsightResearch, metrics.OutcomeFallback))
	assert.Equal(t, before+1, after)
}

func TestInsightService_UnconfiguredGeneratorFallsBack(t *testing.T) {
	svc, _ := newInsightService(mocks.NewMockTextGenerator())

	result := svc.GeneratePopulationHealthInsights(context.Background(), domain.PopulationHealthRequest{})
	assert.True(t, result.Fallback)
}

func TestInsightService_DecisionSupportUrgency(t *testing.T) {
	gen := mocks.NewMockTextGenerator()
	svc, _ := newInsightService(gen)

	_, err := svc.ProvideClinicalDecisionSupport(context.Background(), domain.DecisionSupportRequest{Urgency: "whenever"})
	assert.ErrorIs(t, err, domain.ErrInvalidUrgency)
	assert.Empty(t, gen.Requests)
}
