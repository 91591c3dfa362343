package mocks

import (
	"context"

	"github.com/you/emrsvc/domain"
)

// MockInsightService implements domain.InsightService interface for testing.
// Unset funcs return an empty fallback-shaped result.
type MockInsightService struct {
	AnalyzeMedicalImageFunc              func(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ImageAnalysis, error)
	PerformClinicalReasoningFunc         func(ctx context.Context, req domain.ClinicalReasoningRequest) *domain.ClinicalReasoning
	GenerateResearchInsightsFunc         func(ctx context.Context, req domain.ResearchInsightsRequest) *domain.ResearchInsights
	GeneratePredictiveAnalyticsFunc      func(ctx context.Context, req domain.PredictiveAnalyticsRequest) *domain.PredictiveAnalytics
	OptimizeTreatmentPlanFunc            func(ctx context.Context, req domain.TreatmentOptimizationRequest) *domain.TreatmentOptimization
	ProvideClinicalDecisionSupportFunc   func(ctx context.Context, req domain.DecisionSupportRequest) (*domain.DecisionSupport, error)
	GeneratePopulationHealthInsightsFunc func(ctx context.Context, req domain.PopulationHealthRequest) *domain.PopulationHealth
}

// NewMockInsightService creates a new MockInsightService
func NewMockInsightService() *MockInsightService {
	return &MockInsightService{}
}

func (m *MockInsightService) AnalyzeMedicalImage(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ImageAnalysis, error) {
	if m.AnalyzeMedicalImageFunc != nil {
		return m.AnalyzeMedicalImageFunc(ctx, req)
	}
	return &domain.ImageAnalysis{Fallback: true}, nil
}

func (m *MockInsightService) PerformClinicalReasoning(ctx context.Context, req domain.ClinicalReasoningRequest) *domain.ClinicalReasoning {
	if m.PerformClinicalReasoningFunc != nil {
		return m.PerformClinicalReasoningFunc(ctx, req)
	}
	return &domain.ClinicalReasoning{Fallback: true}
}

func (m *MockInsightService) GenerateResearchInsights(ctx context.Context, req domain.ResearchInsightsRequest) *domain.ResearchInsights {
	if m.GenerateResearchInsightsFunc != nil {
		return m.GenerateResearchInsightsFunc(ctx, req)
	}
	return &domain.ResearchInsights{Fallback: true}
}

func (m *MockInsightService) GeneratePredictiveAnalytics(ctx context.Context, req domain.PredictiveAnalyticsRequest) *domain.PredictiveAnalytics {
	if m.GeneratePredictiveAnalyticsFunc != nil {
		return m.GeneratePredictiveAnalyticsFunc(ctx, req)
	}
	return &domain.PredictiveAnalytics{Fallback: true}
}

func (m *MockInsightService) OptimizeTreatmentPlan(ctx context.Context, req domain.TreatmentOptimizationRequest) *domain.TreatmentOptimization {
	if m.OptimizeTreatmentPlanFunc != nil {
		return m.OptimizeTreatmentPlanFunc(ctx, req)
	}
	return &domain.TreatmentOptimization{Fallback: true}
}

func (m *MockInsightService) ProvideClinicalDecisionSupport(ctx context.Context, req domain.DecisionSupportRequest) (*domain.DecisionSupport, error) {
	if m.ProvideClinicalDecisionSupportFunc != nil {
		return m.ProvideClinicalDecisionSupportFunc(ctx, req)
	}
	return &domain.DecisionSupport{Fallback: true}, nil
}

func (m *MockInsightService) GeneratePopulationHealthInsights(ctx context.Context, req domain.PopulationHealthRequest) *domain.PopulationHealth {
	if m.GeneratePopulationHealthInsightsFunc != nil {
		return m.GeneratePopulationHealthInsightsFunc(ctx, req)
	}
	return &domain.PopulationHealth{Fallback: true}
}

// Compile-time interface compliance verification
var _ domain.InsightService = (*MockInsightService)(nil)
