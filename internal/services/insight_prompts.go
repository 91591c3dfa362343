package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/you/emrsvc/domain"
)

// Image types accepted by AnalyzeMedicalImage, with the focus line added to the prompt
var imageTypeInstructions = map[string]string{
	"xray":        "Focus on bone structures, lung fields, cardiac silhouette, and any abnormal findings",
	"mri":         "Analyze soft tissue contrast, anatomical structures, and pathological changes",
	"ct":          "Examine cross-sectional anatomy, density variations, and contrast enhancement patterns",
	"ultrasound":  "Evaluate echogenicity, anatomical landmarks, and dynamic findings",
	"dermatology": "Assess skin lesions, morphology, color patterns, and concerning features",
}

// Urgency levels accepted by ProvideClinicalDecisionSupport
var urgencyLevels = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

func list(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

// object renders v as compact JSON; nil maps render as {}
func object[V any](v map[string]V) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func imageAnalysisPrompt(imageType string) string {
	return fmt.Sprintf(`As an expert radiologist AI, analyze this %s image and provide:

1. Detailed findings description
2. Normal vs abnormal structures identification
3. Differential diagnosis considerations
4. Recommended follow-up imaging if needed
5. Clinical correlation suggestions
6. Urgency level assessment

%s

Provide confidence levels for each finding and highlight any critical findings that require immediate attention.
Use standard medical terminology and follow ACR reporting guidelines.`, imageType, imageTypeInstructions[imageType])
}

func clinicalReasoningPrompt(req domain.ClinicalReasoningRequest) string {
	return fmt.Sprintf(`Perform advanced clinical reasoning for this complex patient case:

Patient Data:
- Symptoms: %s
- Vital Signs: %s
- Lab Results: %s
- Imaging: %s
- Medications: %s
- Medical History: %s

Provide comprehensive analysis including:
1. Systematic clinical reasoning process
2. Differential diagnosis with probability weighting
3. Critical thinking about diagnostic uncertainty
4. Risk stratification and prognosis
5. Evidence-based treatment recommendations
6. Monitoring and follow-up strategies
7. Patient safety considerations

Use Bayesian reasoning and consider diagnostic test characteristics.`,
		list(req.Symptoms, ""),
		object(req.Vitals),
		object(req.LabResults),
		list(req.ImagingResults, "None"),
		list(req.Medications, ""),
		req.History,
	)
}

func researchInsightsPrompt(req domain.ResearchInsightsRequest) string {
	return fmt.Sprintf(`As an advanced medical research AI, provide comprehensive research insights for:

Condition: %s
Current Treatments: %s

Please provide:
1. Latest research developments and clinical trials
2. Emerging treatment modalities
3. Novel therapeutic targets
4. Precision medicine approaches
5. Biomarker discoveries
6. Future treatment directions
7. Clinical trial opportunities for patients

Base your analysis on the most recent medical literature and research databases.
Include confidence levels and evidence quality assessments.`,
		req.Condition,
		list(req.CurrentTreatments, ""),
	)
}

func predictiveAnalyticsPrompt(req domain.PredictiveAnalyticsRequest) string {
	return fmt.Sprintf(`Generate predictive health analytics for this patient:

Demographics: %s
Medical History: %s
Family History: %s
Lifestyle Factors: %s
Current Conditions: %s
Medications: %s
Lab Trends: %s

Provide:
1. Risk predictions for major health events (1, 5, 10 year)
2. Disease progression modeling
3. Preventive intervention recommendations
4. Personalized screening schedules
5. Lifestyle modification impact projections
6. Medication adherence predictions
7. Healthcare utilization forecasts

Include confidence intervals and model limitations.`,
		object(req.Demographics),
		list(req.MedicalHistory, ""),
		list(req.FamilyHistory, ""),
		object(req.Lifestyle),
		list(req.CurrentConditions, ""),
		list(req.Medications, "None"),
		object(req.LabTrends),
	)
}

func treatmentOptimizationPrompt(req domain.TreatmentOptimizationRequest) string {
	return fmt.Sprintf(`Optimize treatment plan for this patient profile:

Condition: %s
Current Treatments: %s
Treatment Response: %s
Side Effects: %s
Comorbidities: %s
Patient Preferences: %s
Genetic Factors: %s

Provide:
1. Treatment efficacy optimization strategies
2. Side effect mitigation approaches
3. Personalized dosing recommendations
4. Alternative treatment options
5. Combination therapy considerations
6. Monitoring parameter adjustments
7. Patient-centered care modifications

Consider pharmacogenomics and precision medicine principles.`,
		req.Condition,
		list(req.CurrentTreatments, ""),
		req.ResponseToTreatment,
		list(req.SideEffects, ""),
		list(req.Comorbidities, ""),
		list(req.Preferences, ""),
		list(req.GeneticFactors, "Unknown"),
	)
}

func decisionSupportPrompt(req domain.DecisionSupportRequest) string {
	return fmt.Sprintf(`Provide clinical decision support for this scenario:

Clinical Question: %s
Patient Context: %s
Available Options: %s
Constraints: %s
Urgency Level: %s

Provide:
1. Structured decision analysis
2. Risk-benefit assessment for each option
3. Evidence quality evaluation
4. Uncertainty quantification
5. Recommended decision pathway
6. Contingency planning
7. Shared decision-making considerations

Use decision science principles and clinical guidelines.`,
		req.ClinicalQuestion,
		object(req.PatientContext),
		list(req.AvailableOptions, ""),
		list(req.Constraints, ""),
		req.Urgency,
	)
}

func populationHealthPrompt(req domain.PopulationHealthRequest) string {
	return fmt.Sprintf(`Analyze population health data and provide insights:

Demographics: %s
Prevalent Conditions: %s
Health Trends: %s
Social Determinants: %s
Intervention History: %s

Provide:
1. Population health risk assessment
2. Health disparity analysis
3. Intervention effectiveness evaluation
4. Resource allocation recommendations
5. Public health strategy suggestions
6. Outcome prediction modeling
7. Health equity considerations

Focus on actionable insights for population health management.`,
		object(req.Demographics),
		list(req.PrevalentConditions, ""),
		object(req.HealthTrends),
		object(req.SocialDeterminants),
		list(req.InterventionHistory, ""),
	)
}
