package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/metrics"
	"go.uber.org/zap"
)

// generationConfig is the sampling setup of one insight kind
type generationConfig struct {
	temperature float32
	topP        float32
	maxTokens   int32
}

var generationConfigs = map[string]generationConfig{
	domain.InsightClinicalReasoning:     {0.3, 0.9, 3000},
	domain.InsightResearch:              {0.4, 0.9, 2500},
	domain.InsightPredictiveAnalytics:   {0.2, 0.8, 2000},
	domain.InsightTreatmentOptimization: {0.3, 0.9, 2500},
	domain.InsightDecisionSupport:       {0.2, 0.8, 2000},
	domain.InsightPopulationHealth:      {0.4, 0.9, 2500},
}

// InsightServiceImpl implements domain.InsightService
type InsightServiceImpl struct {
	generator domain.TextGenerator
	logger    *zap.Logger
}

// NewInsightService creates a new insight service
func NewInsightService(generator domain.TextGenerator, logger *zap.Logger) domain.InsightService {
	return &InsightServiceImpl{
		generator: generator,
		logger:    logger.Named("insights"),
	}
}

// generate runs one prompt; ok is false when the caller must fall back
func (s *InsightServiceImpl) generate(ctx context.Context, kind string, req domain.GenerationRequest) (string, bool) {
	if cfg, found := generationConfigs[kind]; found {
		req.Temperature = &cfg.temperature
		req.TopP = &cfg.topP
		req.MaxOutputTokens = cfg.maxTokens
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("generation failed, serving fallback", zap.String("kind", kind), zap.Error(err))
		metrics.InsightRequests.WithLabelValues(kind, metrics.OutcomeFallback).Inc()
		return "", false
	}
	metrics.InsightRequests.WithLabelValues(kind, metrics.OutcomeOK).Inc()
	return text, true
}

// AnalyzeMedicalImage implements domain.InsightService
func (s *InsightServiceImpl) AnalyzeMedicalImage(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ImageAnalysis, error) {
	imageType := strings.ToLower(strings.TrimSpace(req.ImageType))
	if _, ok := imageTypeInstructions[imageType]; !ok {
		metrics.InsightRequests.WithLabelValues(domain.InsightImageAnalysis, metrics.OutcomeInvalid).Inc()
		return nil, domain.ErrInvalidImageType
	}
	if len(req.ImageData) == 0 {
		metrics.InsightRequests.WithLabelValues(domain.InsightImageAnalysis, metrics.OutcomeInvalid).Inc()
		return nil, domain.ErrEmptyImage
	}

	text, ok := s.generate(ctx, domain.InsightImageAnalysis, domain.GenerationRequest{
		Prompt: imageAnalysisPrompt(imageType),
		Image: &domain.InlineImage{
			Data:     req.ImageData,
			MimeType: imageMimeType(req.ImageData),
		},
	})
	if !ok {
		return fallbackImageAnalysis(), nil
	}

	return &domain.ImageAnalysis{
		Findings:              extractSection(text, "findings"),
		NormalStructures:      extractSection(text, "normal"),
		AbnormalFindings:      extractSection(text, "abnormal"),
		DifferentialDiagnosis: extractSection(text, "differential"),
		Recommendations:       extractSection(text, "recommend"),
		Urgency:               extractSection(text, "urgency"),
		Confidence:            extractConfidence(text),
		RawResponse:           text,
	}, nil
}

// imageMimeType sniffs the image format; anything unrecognised is sent as JPEG
func imageMimeType(data []byte) string {
	mt := http.DetectContentType(data)
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}

// PerformClinicalReasoning implements domain.InsightService
func (s *InsightServiceImpl) PerformClinicalReasoning(ctx context.Context, req domain.ClinicalReasoningRequest) *domain.ClinicalReasoning {
	text, ok := s.generate(ctx, domain.InsightClinicalReasoning, domain.GenerationRequest{
		Prompt: clinicalReasoningPrompt(req),
	})
	if !ok {
		return fallbackClinicalReasoning()
	}

	return &domain.ClinicalReasoning{
		ReasoningProcess:         extractSection(text, "reasoning"),
		DifferentialDiagnosis:    extractSection(text, "differential"),
		RiskStratification:       extractSection(text, "risk"),
		TreatmentRecommendations: extractSection(text, "treatment"),
		Monitoring:               extractSection(text, "monitoring"),
		SafetyConsiderations:     extractSection(text, "safety"),
		Confidence:               extractConfidence(text),
		RawResponse:              text,
	}
}

// GenerateResearchInsights implements domain.InsightService
func (s *InsightServiceImpl) GenerateResearchInsights(ctx context.Context, req domain.ResearchInsightsRequest) *domain.ResearchInsights {
	text, ok := s.generate(ctx, domain.InsightResearch, domain.GenerationRequest{
		Prompt: researchInsightsPrompt(req),
	})
	if !ok {
		return fallbackResearchInsights()
	}

	return &domain.ResearchInsights{
		LatestResearch:     extractSection(text, "research"),
		EmergingTreatments: extractSection(text, "emerging"),
		ClinicalTrials:     extractSection(text, "trials"),
		PrecisionMedicine:  extractSection(text, "precision"),
		FutureDirections:   extractSection(text, "future"),
		EvidenceQuality:    extractSection(text, "evidence"),
		RawResponse:        text,
	}
}

// GeneratePredictiveAnalytics implements domain.InsightService
func (s *InsightServiceImpl) GeneratePredictiveAnalytics(ctx context.Context, req domain.PredictiveAnalyticsRequest) *domain.PredictiveAnalytics {
	text, ok := s.generate(ctx, domain.InsightPredictiveAnalytics, domain.GenerationRequest{
		Prompt: predictiveAnalyticsPrompt(req),
	})
	if !ok {
		return fallbackPredictiveAnalytics()
	}

	return &domain.PredictiveAnalytics{
		RiskPredictions:          extractSection(text, "risk"),
		DiseaseProgression:       extractSection(text, "progression"),
		PreventiveInterventions:  extractSection(text, "preventive"),
		ScreeningRecommendations: extractSection(text, "screening"),
		LifestyleImpact:          extractSection(text, "lifestyle"),
		ConfidenceIntervals:      extractSection(text, "confidence"),
		RawResponse:              text,
	}
}

// OptimizeTreatmentPlan implements domain.InsightService
func (s *InsightServiceImpl) OptimizeTreatmentPlan(ctx context.Context, req domain.TreatmentOptimizationRequest) *domain.TreatmentOptimization {
	text, ok := s.generate(ctx, domain.InsightTreatmentOptimization, domain.GenerationRequest{
		Prompt: treatmentOptimizationPrompt(req),
	})
	if !ok {
		return fallbackTreatmentOptimization()
	}

	return &domain.TreatmentOptimization{
		OptimizationStrategies: extractSection(text, "optimization"),
		SideEffectMitigation:   extractSection(text, "side effect"),
		AlternativeTreatments:  extractSection(text, "alternative"),
		PersonalizationFactors: extractSection(text, "personalization"),
		MonitoringAdjustments:  extractSection(text, "monitoring"),
		PatientCenteredCare:    extractSection(text, "patient-centered"),
		RawResponse:            text,
	}
}

// ProvideClinicalDecisionSupport implements domain.InsightService
func (s *InsightServiceImpl) ProvideClinicalDecisionSupport(ctx context.Context, req domain.DecisionSupportRequest) (*domain.DecisionSupport, error) {
	req.Urgency = strings.ToLower(strings.TrimSpace(req.Urgency))
	if !urgencyLevels[req.Urgency] {
		metrics.InsightRequests.WithLabelValues(domain.InsightDecisionSupport, metrics.OutcomeInvalid).Inc()
		return nil, domain.ErrInvalidUrgency
	}

	text, ok := s.generate(ctx, domain.InsightDecisionSupport, domain.GenerationRequest{
		Prompt: decisionSupportPrompt(req),
	})
	if !ok {
		return fallbackDecisionSupport(), nil
	}

	return &domain.DecisionSupport{
		DecisionAnalysis:          extractSection(text, "decision"),
		RiskBenefitAssessment:     extractSection(text, "risk-benefit"),
		RecommendedPathway:        extractSection(text, "recommended"),
		UncertaintyQuantification: extractSection(text, "uncertainty"),
		ContingencyPlanning:       extractSection(text, "contingency"),
		SharedDecisionMaking:      extractSection(text, "shared"),
		RawResponse:               text,
	}, nil
}

// GeneratePopulationHealthInsights implements domain.InsightService
func (s *InsightServiceImpl) GeneratePopulationHealthInsights(ctx context.Context, req domain.PopulationHealthRequest) *domain.PopulationHealth {
	text, ok := s.generate(ctx, domain.InsightPopulationHealth, domain.GenerationRequest{
		Prompt: populationHealthPrompt(req),
	})
	if !ok {
		return fallbackPopulationHealth()
	}

	return &domain.PopulationHealth{
		RiskAssessment:            extractSection(text, "risk"),
		HealthDisparities:         extractSection(text, "disparity"),
		InterventionEffectiveness: extractSection(text, "intervention"),
		ResourceAllocation:        extractSection(text, "resource"),
		PublicHealthStrategy:      extractSection(text, "strategy"),
		OutcomeModeling:           extractSection(text, "outcome"),
		RawResponse:               text,
	}
}
