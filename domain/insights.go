package domain

// Insight kinds, used for metrics and logging
const (
	InsightImageAnalysis         = "image_analysis"
	InsightClinicalReasoning     = "clinical_reasoning"
	InsightResearch              = "research_insights"
	InsightPredictiveAnalytics   = "predictive_analytics"
	InsightTreatmentOptimization = "treatment_optimization"
	InsightDecisionSupport       = "decision_support"
	InsightPopulationHealth      = "population_health"
)

// InlineImage is binary image content sent along with a prompt
type InlineImage struct {
	Data     []byte
	MimeType string
}

// GenerationRequest is one prompt-in/text-out call to the model.
// Nil sampling parameters leave the model defaults in place.
type GenerationRequest struct {
	Prompt          string
	Image           *InlineImage
	Temperature     *float32
	TopP            *float32
	MaxOutputTokens int32
}

// ImageAnalysisRequest asks for a read of a medical image. ImageData is base64 on the wire.
type ImageAnalysisRequest struct {
	ImageData []byte `json:"imageData"`
	ImageType string `json:"imageType"`
}

type ClinicalReasoningRequest struct {
	Symptoms       []string       `json:"symptoms"`
	Vitals         map[string]any `json:"vitals"`
	LabResults     map[string]any `json:"labResults,omitempty"`
	ImagingResults []string       `json:"imagingResults,omitempty"`
	Medications    []string       `json:"medications"`
	History        string         `json:"history"`
}

type ResearchInsightsRequest struct {
	Condition         string   `json:"condition"`
	CurrentTreatments []string `json:"currentTreatments"`
}

type PredictiveAnalyticsRequest struct {
	Demographics      map[string]any       `json:"demographics"`
	MedicalHistory    []string             `json:"medicalHistory"`
	FamilyHistory     []string             `json:"familyHistory"`
	Lifestyle         map[string]any       `json:"lifestyle"`
	CurrentConditions []string             `json:"currentConditions"`
	Medications       []string             `json:"medications"`
	LabTrends         map[string][]float64 `json:"labTrends"`
}

type TreatmentOptimizationRequest struct {
	Condition           string   `json:"condition"`
	CurrentTreatments   []string `json:"currentTreatments"`
	ResponseToTreatment string   `json:"responseToTreatment"`
	SideEffects         []string `json:"sideEffects"`
	Comorbidities       []string `json:"comorbidities"`
	Preferences         []string `json:"preferences"`
	GeneticFactors      []string `json:"geneticFactors,omitempty"`
}

type DecisionSupportRequest struct {
	ClinicalQuestion string         `json:"clinicalQuestion"`
	PatientContext   map[string]any `json:"patientContext"`
	AvailableOptions []string       `json:"availableOptions"`
	Constraints      []string       `json:"constraints"`
	Urgency          string         `json:"urgency"`
}

type PopulationHealthRequest struct {
	Demographics        map[string]any       `json:"demographics"`
	PrevalentConditions []string             `json:"prevalentConditions"`
	HealthTrends        map[string][]float64 `json:"healthTrends"`
	SocialDeterminants  map[string]any       `json:"socialDeterminants"`
	InterventionHistory []string             `json:"interventionHistory"`
}

type ImageAnalysis struct {
	Findings              string  `json:"findings"`
	NormalStructures      string  `json:"normalStructures"`
	AbnormalFindings      string  `json:"abnormalFindings"`
	DifferentialDiagnosis string  `json:"differentialDiagnosis"`
	Recommendations       string  `json:"recommendations"`
	Urgency               string  `json:"urgency"`
	Confidence            float64 `json:"confidence"`
	RawResponse           string  `json:"rawResponse"`
	Fallback              bool    `json:"fallback"`
}

type ClinicalReasoning struct {
	ReasoningProcess         string  `json:"reasoningProcess"`
	DifferentialDiagnosis    string  `json:"differentialDiagnosis"`
	RiskStratification       string  `json:"riskStratification"`
	TreatmentRecommendations string  `json:"treatmentRecommendations"`
	Monitoring               string  `json:"monitoring"`
	SafetyConsiderations     string  `json:"safetyConsiderations"`
	Confidence               float64 `json:"confidence"`
	RawResponse              string  `json:"rawResponse"`
	Fallback                 bool    `json:"fallback"`
}

type ResearchInsights struct {
	LatestResearch     string `json:"latestResearch"`
	EmergingTreatments string `json:"emergingTreatments"`
	ClinicalTrials     string `json:"clinicalTrials"`
	PrecisionMedicine  string `json:"precisionMedicine"`
	FutureDirections   string `json:"futureDirections"`
	EvidenceQuality    string `json:"evidenceQuality"`
	RawResponse        string `json:"rawResponse"`
	Fallback           bool   `json:"fallback"`
}

type PredictiveAnalytics struct {
	RiskPredictions          string `json:"riskPredictions"`
	DiseaseProgression       string `json:"diseaseProgression"`
	PreventiveInterventions  string `json:"preventiveInterventions"`
	ScreeningRecommendations string `json:"screeningRecommendations"`
	LifestyleImpact          string `json:"lifestyleImpact"`
	ConfidenceIntervals      string `json:"confidenceIntervals"`
	RawResponse              string `json:"rawResponse"`
	Fallback                 bool   `json:"fallback"`
}

type TreatmentOptimization struct {
	OptimizationStrategies string `json:"optimizationStrategies"`
	SideEffectMitigation   string `json:"sideEffectMitigation"`
	AlternativeTreatments  string `json:"alternativeTreatments"`
	PersonalizationFactors string `json:"personalizationFactors"`
	MonitoringAdjustments  string `json:"monitoringAdjustments"`
	PatientCenteredCare    string `json:"patientCenteredCare"`
	RawResponse            string `json:"rawResponse"`
	Fallback               bool   `json:"fallback"`
}

type DecisionSupport struct {
	DecisionAnalysis          string `json:"decisionAnalysis"`
	RiskBenefitAssessment     string `json:"riskBenefitAssessment"`
	RecommendedPathway        string `json:"recommendedPathway"`
	UncertaintyQuantification string `json:"uncertaintyQuantification"`
	ContingencyPlanning       string `json:"contingencyPlanning"`
	SharedDecisionMaking      string `json:"sharedDecisionMaking"`
	RawResponse               string `json:"rawResponse"`
	Fallback                  bool   `json:"fallback"`
}

type PopulationHealth struct {
	RiskAssessment            string `json:"riskAssessment"`
	HealthDisparities         string `json:"healthDisparities"`
	InterventionEffectiveness string `json:"interventionEffectiveness"`
	ResourceAllocation        string `json:"resourceAllocation"`
	PublicHealthStrategy      string `json:"publicHealthStrategy"`
	OutcomeModeling           string `json:"outcomeModeling"`
	RawResponse               string `json:"rawResponse"`
	Fallback                  bool   `json:"fallback"`
}
