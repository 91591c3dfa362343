package services

import "github.com/you/emrsvc/domain"

const fallbackRaw = "Fallback response - Gemini API quota exceeded"

func fallbackImageAnalysis() *domain.ImageAnalysis {
	return &domain.ImageAnalysis{
		Findings:              "Image analysis temporarily unavailable due to API quota limits. Please try again later or contact support for API key assistance.",
		NormalStructures:      "Manual review required",
		AbnormalFindings:      "Please consult radiologist",
		DifferentialDiagnosis: "Clinical correlation needed",
		Recommendations:       "Standard imaging protocols apply",
		Urgency:               "Manual assessment required",
		Confidence:            0.0,
		RawResponse:           fallbackRaw,
		Fallback:              true,
	}
}

func fallbackClinicalReasoning() *domain.ClinicalReasoning {
	return &domain.ClinicalReasoning{
		ReasoningProcess:         "Clinical reasoning analysis temporarily unavailable due to API quota limits. The system will continue to function with standard clinical protocols.",
		DifferentialDiagnosis:    "Standard differential diagnosis protocols should be followed. Consider common conditions first, then rare diagnoses.",
		RiskStratification:       "Manual risk assessment needed. Use established clinical risk calculators and guidelines.",
		TreatmentRecommendations: "Follow evidence-based clinical guidelines and institutional protocols.",
		Monitoring:               "Standard monitoring protocols apply. Regular follow-up as per clinical guidelines.",
		SafetyConsiderations:     "Review safety protocols manually. Ensure patient safety measures are in place.",
		Confidence:               0.0,
		RawResponse:              fallbackRaw + ". Please check your API key and billing status.",
		Fallback:                 true,
	}
}

func fallbackResearchInsights() *domain.ResearchInsights {
	return &domain.ResearchInsights{
		LatestResearch:     "Research insights temporarily unavailable due to API quota limits. Please consult PubMed and medical databases directly.",
		EmergingTreatments: "Consult medical literature and clinical guidelines for current treatment options.",
		ClinicalTrials:     "Check ClinicalTrials.gov for ongoing studies and trial opportunities.",
		PrecisionMedicine:  "Standard treatment protocols apply. Consider genetic testing if clinically indicated.",
		FutureDirections:   "Follow established clinical guidelines and stay updated with medical literature.",
		EvidenceQuality:    "Manual evidence review required. Use systematic reviews and meta-analyses.",
		RawResponse:        fallbackRaw,
		Fallback:           true,
	}
}

func fallbackPredictiveAnalytics() *domain.PredictiveAnalytics {
	return &domain.PredictiveAnalytics{
		RiskPredictions:          "Predictive analytics temporarily unavailable due to API quota limits. Use established risk calculators and clinical assessment tools.",
		DiseaseProgression:       "Standard progression models apply. Refer to clinical guidelines for disease trajectory.",
		PreventiveInterventions:  "Follow evidence-based prevention guidelines and screening recommendations.",
		ScreeningRecommendations: "Standard screening protocols based on age, risk factors, and guidelines.",
		LifestyleImpact:          "General lifestyle recommendations: healthy diet, regular exercise, smoking cessation.",
		ConfidenceIntervals:      "Statistical analysis required. Use appropriate clinical decision tools.",
		RawResponse:              fallbackRaw,
		Fallback:                 true,
	}
}

func fallbackTreatmentOptimization() *domain.TreatmentOptimization {
	return &domain.TreatmentOptimization{
		OptimizationStrategies: "Treatment optimization temporarily unavailable due to API quota limits. Follow clinical guidelines and consider patient-specific factors.",
		SideEffectMitigation:   "Standard mitigation protocols apply. Monitor for adverse effects and adjust as needed.",
		AlternativeTreatments:  "Consult treatment guidelines and consider alternative therapeutic options.",
		PersonalizationFactors: "Individual assessment needed. Consider patient preferences, comorbidities, and contraindications.",
		MonitoringAdjustments:  "Standard monitoring protocols apply. Regular assessment and dose adjustments as clinically indicated.",
		PatientCenteredCare:    "Patient preference assessment required. Engage in shared decision-making.",
		RawResponse:            fallbackRaw,
		Fallback:               true,
	}
}

func fallbackDecisionSupport() *domain.DecisionSupport {
	return &domain.DecisionSupport{
		DecisionAnalysis:          "Clinical decision support temporarily unavailable due to API quota limits. Use clinical judgment and established decision-making frameworks.",
		RiskBenefitAssessment:     "Standard risk-benefit evaluation required. Consider all relevant factors and patient preferences.",
		RecommendedPathway:        "Follow clinical guidelines and institutional protocols for decision-making.",
		UncertaintyQuantification: "Clinical judgment required. Acknowledge uncertainty and consider multiple scenarios.",
		ContingencyPlanning:       "Standard contingency protocols apply. Plan for various outcomes and complications.",
		SharedDecisionMaking:      "Patient discussion recommended. Involve patient in treatment decisions.",
		RawResponse:               fallbackRaw,
		Fallback:                  true,
	}
}

func fallbackPopulationHealth() *domain.PopulationHealth {
	return &domain.PopulationHealth{
		RiskAssessment:            "Population health analysis temporarily unavailable due to API quota limits. Use epidemiological data and public health resources.",
		HealthDisparities:         "Manual disparity analysis required. Consider social determinants of health.",
		InterventionEffectiveness: "Standard evaluation methods apply. Use evidence-based public health interventions.",
		ResourceAllocation:        "Manual resource planning needed. Consider population needs and available resources.",
		PublicHealthStrategy:      "Follow public health guidelines and evidence-based interventions.",
		OutcomeModeling:           "Statistical modeling required. Use appropriate epidemiological methods.",
		RawResponse:               fallbackRaw,
		Fallback:                  true,
	}
}
